package order

import "fmt"

// Order — заказ на мебель: единица синхронизации между клиентом и
// сервером. Финансовые и контактные поля для подсистемы синхронизации
// непрозрачны и должны проходить через нее без изменений.
type Order struct {
	ID      ID  `json:"id"`
	Version int `json:"version,omitempty"`

	Name      string `json:"name"`
	Customer  string `json:"customer,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Messenger string `json:"messenger,omitempty"`
	Status    string `json:"status,omitempty"`

	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Duration  int    `json:"duration,omitempty"`

	Price         float64 `json:"price"`
	Cost          float64 `json:"cost"`
	Profit        float64 `json:"profit"`
	ProfitPercent float64 `json:"profitPercent"`
	Prepayment    float64 `json:"prepayment"`
	Balance       float64 `json:"balance"`

	Expenses []Expense `json:"expenses"`
	Photos   []Photo   `json:"photos"`

	Notes string `json:"notes,omitempty"`
}

// Expense — статья расходов по заказу.
type Expense struct {
	ID   int     `json:"id,omitempty"`
	Name string  `json:"name"`
	Cost float64 `json:"cost"`
	Link string  `json:"link,omitempty"`
}

// Photo — фотография, привязанная к заказу.
type Photo struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
}

// StatusPending — статус по умолчанию для нового заказа.
const StatusPending = "Ожидает"

// Validate проверяет обязательные поля заказа. Нарушения терминальны:
// такой заказ нельзя ни сохранить, ни поставить в очередь повтора.
func (o *Order) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("%w: поле name обязательно", ErrValidation)
	}
	if o.Price < 0 {
		return fmt.Errorf("%w: price не может быть отрицательной", ErrValidation)
	}
	if o.Expenses == nil {
		return fmt.Errorf("%w: expenses должен быть массивом", ErrValidation)
	}
	if o.Photos == nil {
		return fmt.Errorf("%w: photos должен быть массивом", ErrValidation)
	}
	return nil
}
