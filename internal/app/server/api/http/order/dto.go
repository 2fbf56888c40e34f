package order

import "furnitrack/internal/domain/order"

type listOutput struct {
	Body []order.Order
}

type findInput struct {
	ID int64 `path:"id" example:"1" doc:"ID заказа"`
}

type orderOutput struct {
	Body order.Order
}

type createInput struct {
	Body order.Order
}

type updateInput struct {
	ID   int64 `path:"id" example:"1" doc:"ID заказа"`
	Body order.Order
}

type deleteOutput struct{}

type syncInput struct {
	Body order.SyncRequest
}

// syncOutput — полный сверенный набор заказов, новый источник истины
// для клиента.
type syncOutput struct {
	Body []order.Order
}
