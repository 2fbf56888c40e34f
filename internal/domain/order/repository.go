package order

import "context"

// Repository — контракт серверного хранилища заказов.
type Repository interface {
	List(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id int64) (*Order, error)
	Create(ctx context.Context, o *Order) (int64, error)
	Update(ctx context.Context, id int64, o *Order) error
	Delete(ctx context.Context, id int64) error

	// ListIDs возвращает множество известных серверу id — снимок
	// для разделения batch-а на создаваемые и обновляемые.
	ListIDs(ctx context.Context) ([]int64, error)
	BulkCreate(ctx context.Context, orders []Order) error
}
