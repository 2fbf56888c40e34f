package client

import (
	"encoding/json"
	"fmt"
	"sync"

	"furnitrack/internal/domain/order"

	"golang.org/x/exp/slog"
)

const ordersKey = "furniture_orders"

// OrderStore — локальное хранилище заказов. Единственный слой, в
// который UI может писать и из которого читать всегда, независимо от
// состояния сети. После успешной сверки с сервером содержимое меняется
// только через ReplaceAll.
type OrderStore struct {
	kv  KV
	log *slog.Logger
	mu  sync.RWMutex
}

func NewOrderStore(kv KV, log *slog.Logger) *OrderStore {
	return &OrderStore{
		kv:  kv,
		log: log.With("component", "order_store"),
	}
}

func (s *OrderStore) List() ([]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

func (s *OrderStore) GetByID(id order.ID) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID.Equal(id) {
			return &orders[i], nil
		}
	}
	return nil, order.ErrNotFound
}

// Put добавляет заказ или перезаписывает существующий с тем же id.
func (s *OrderStore) Put(o order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.load()
	if err != nil {
		return err
	}

	replaced := false
	for i := range orders {
		if orders[i].ID.Equal(o.ID) {
			orders[i] = o
			replaced = true
			break
		}
	}
	if !replaced {
		orders = append(orders, o)
	}

	return s.save(orders)
}

// ReplaceAll перезаписывает весь список ответом сервера: локальное
// представление сходится к серверному после каждой успешной сверки.
func (s *OrderStore) ReplaceAll(orders []order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(orders)
}

func (s *OrderStore) Remove(id order.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.load()
	if err != nil {
		return err
	}

	filtered := orders[:0]
	for _, o := range orders {
		if !o.ID.Equal(id) {
			filtered = append(filtered, o)
		}
	}

	return s.save(filtered)
}

func (s *OrderStore) load() ([]order.Order, error) {
	data, ok, err := s.kv.Get(ordersKey)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения заказов: %w", err)
	}
	if !ok {
		return []order.Order{}, nil
	}

	var orders []order.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("ошибка парсинга заказов: %w", err)
	}
	return orders, nil
}

func (s *OrderStore) save(orders []order.Order) error {
	if orders == nil {
		orders = []order.Order{}
	}
	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("ошибка сериализации заказов: %w", err)
	}
	return s.kv.Put(ordersKey, data)
}
