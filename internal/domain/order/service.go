package order

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"
)

// Servicer — интерфейс серверного сервиса заказов.
type Servicer interface {
	List(ctx context.Context) ([]Order, error)
	Find(ctx context.Context, id int64) (*Order, error)
	Create(ctx context.Context, o *Order) (*Order, error)
	Update(ctx context.Context, id int64, o *Order) (*Order, error)
	Delete(ctx context.Context, id int64) error

	// Reconcile принимает пакет клиентских заказов и возвращает
	// полный актуальный список с сервера.
	Reconcile(ctx context.Context, orders []Order) ([]Order, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "order_service"),
	}
}

func (s *Service) List(ctx context.Context) ([]Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *Service) Find(ctx context.Context, id int64) (*Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) Create(ctx context.Context, o *Order) (*Order, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if o.Status == "" {
		o.Status = StatusPending
	}

	id, err := s.repo.Create(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	o.ID = SyncedID(id)
	return o, nil
}

func (s *Service) Update(ctx context.Context, id int64, o *Order) (*Order, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, o); err != nil {
		return nil, err
	}
	o.ID = SyncedID(id)
	return o, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Reconcile — слияние last-write-wins. Разделение на создаваемые и
// обновляемые — снимок на момент вызова: от гонки двух устройств по
// одному id эндпоинт не защищает.
func (s *Service) Reconcile(ctx context.Context, orders []Order) ([]Order, error) {
	// Валидация всего пакета до какой-либо записи: невалидный заказ
	// не должен частично примениться.
	for i := range orders {
		if err := orders[i].Validate(); err != nil {
			return nil, fmt.Errorf("заказ %s: %w", orders[i].ID, err)
		}
	}

	ids, err := s.repo.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}
	known := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}

	var toCreate []Order
	var toUpdate []Order
	for _, o := range orders {
		serverID, ok := o.ID.ServerID()
		if !ok {
			// Временный или отсутствующий id: сервер заказа не видел.
			o.ID = ID{}
			toCreate = append(toCreate, o)
			continue
		}
		if _, exists := known[serverID]; exists {
			toUpdate = append(toUpdate, o)
		} else {
			toCreate = append(toCreate, o)
		}
	}

	s.log.Info("reconcile batch",
		"received", len(orders),
		"to_create", len(toCreate),
		"to_update", len(toUpdate),
	)

	if len(toCreate) > 0 {
		if err := s.repo.BulkCreate(ctx, toCreate); err != nil {
			return nil, fmt.Errorf("bulk create: %w", err)
		}
	}

	// Полная перезапись по id, без сравнения отдельных полей.
	for _, o := range toUpdate {
		serverID, _ := o.ID.ServerID()
		if err := s.repo.Update(ctx, serverID, &o); err != nil {
			return nil, fmt.Errorf("update order %d: %w", serverID, err)
		}
	}

	// Клиент считает ответ новым источником истины, поэтому
	// возвращаем весь набор, а не только пришедший пакет.
	merged, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list after reconcile: %w", err)
	}
	return merged, nil
}
