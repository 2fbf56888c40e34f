// cmd/client/cmd/orders/get.go
package orders

import (
	"encoding/json"
	"fmt"
	"os"

	"furnitrack/internal/domain/order"

	"github.com/spf13/cobra"
)

var getFormat string

var GetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Просмотреть заказ",
	Long: `Просмотр заказа по ID. Принимается и серверный числовой id,
и временный локальный вида temp-<...>.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		id, err := parseOrderID(args[0])
		if err != nil {
			return err
		}

		o, err := app.GetOrder(id)
		if err != nil {
			return fmt.Errorf("ошибка получения заказа: %w", err)
		}

		if getFormat == "json" {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(o)
		}
		return printOrderHuman(o)
	},
}

func printOrderHuman(o *order.Order) error {
	fmt.Printf("ID:          %s\n", o.ID.String())
	fmt.Printf("Название:    %s\n", o.Name)
	fmt.Printf("Статус:      %s\n", o.Status)
	fmt.Printf("Заказчик:    %s\n", o.Customer)
	if o.Phone != "" {
		fmt.Printf("Телефон:     %s\n", o.Phone)
	}
	if o.StartDate != "" {
		fmt.Printf("Начало:      %s\n", o.StartDate)
	}
	if o.EndDate != "" {
		fmt.Printf("Окончание:   %s\n", o.EndDate)
	}
	fmt.Printf("Цена:        %.2f\n", o.Price)
	fmt.Printf("Предоплата:  %.2f\n", o.Prepayment)
	fmt.Printf("Остаток:     %.2f\n", o.Balance)
	fmt.Printf("Версия:      %d\n", o.Version)

	if len(o.Expenses) > 0 {
		fmt.Println()
		fmt.Println("=== Расходы ===")
		var total float64
		for _, e := range o.Expenses {
			fmt.Printf("  • %s: %.2f\n", e.Name, e.Cost)
			total += e.Cost
		}
		fmt.Printf("Итого расходов: %.2f\n", total)
	}

	if len(o.Photos) > 0 {
		fmt.Println()
		fmt.Printf("Фотографий: %d\n", len(o.Photos))
	}

	if o.Notes != "" {
		fmt.Println()
		fmt.Println("=== Заметки ===")
		fmt.Println(o.Notes)
	}

	if o.ID.IsLocal() {
		fmt.Println()
		fmt.Println("⌛ Заказ еще не синхронизирован с сервером")
	}

	return nil
}

func init() {
	GetCmd.Flags().StringVarP(&getFormat, "output", "o", "text", "формат вывода (text, json)")
}
