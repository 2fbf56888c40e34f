// Package client реализует офлайн-способную клиентскую часть трекера
// заказов: локальное хранилище, durable очередь мутаций, монитор сети
// и движок синхронизации с сервером.
package client

import (
	"context"
	"fmt"
	"time"

	"furnitrack/internal/app/client/config"
	"furnitrack/internal/domain/order"

	"golang.org/x/exp/slog"
)

const probeInterval = 30 * time.Second

// App собирает клиентские компоненты и отдает им общий жизненный
// цикл. Команды CLI работают через него.
type App struct {
	cfg     *config.Config
	log     *slog.Logger
	kv      KV
	store   *OrderStore
	queue   *Queue
	monitor *Monitor
	prober  *Prober
	api     *HTTPClient
	engine  *Engine
	clock   Clock
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	log = log.With("component", "client_app")

	var kv KV
	kv, err := NewSQLiteKV(cfg.DataPath)
	if err != nil {
		// Без файла на диске: работаем, но данные живут только
		// до выхода из процесса.
		log.Warn("локальная база недоступна, хранение только в памяти",
			"path", cfg.DataPath,
			"error", err,
		)
		kv = NewMemoryKV()
	}

	clock := NewSystemClock()
	store := NewOrderStore(kv, log)
	queue := NewQueue(kv, log)
	api := NewHTTPClient(cfg, clock, log)

	// Стартуем пессимистично: первый удачный probe переведет в
	// online и запустит прогон накопленной очереди.
	monitor := NewMonitor(false, log)
	prober := NewProber(monitor, api, probeInterval, log)

	engine := NewEngine(store, queue, api, monitor, clock,
		time.Duration(cfg.DrainInterval)*time.Minute, log)

	return &App{
		cfg:     cfg,
		log:     log,
		kv:      kv,
		store:   store,
		queue:   queue,
		monitor: monitor,
		prober:  prober,
		api:     api,
		engine:  engine,
		clock:   clock,
	}, nil
}

// Start запускает фоновые компоненты: probe сети и движок
// синхронизации. Первая проверка выполняется сразу, чтобы не ждать
// первого тика.
func (a *App) Start(ctx context.Context) {
	a.engine.Start(ctx)
	go a.prober.Run(ctx)
}

// Close останавливает движок и закрывает локальную базу.
func (a *App) Close() error {
	a.engine.Stop()
	return a.kv.Close()
}

// ListOrders возвращает локальный список заказов. Если сеть есть и
// локальных несинхронизированных изменений нет, список сначала
// освежается с сервера.
func (a *App) ListOrders(ctx context.Context) ([]order.Order, error) {
	if a.monitor.IsOnline() {
		if n, err := a.queue.Len(); err == nil && n == 0 {
			orders, err := a.api.GetOrders(ctx)
			if err == nil {
				if sErr := a.store.ReplaceAll(orders); sErr != nil {
					return nil, sErr
				}
				return orders, nil
			}
			a.log.Warn("не удалось освежить список с сервера, отдаем локальный", "error", err)
			if IsTransient(err) {
				a.monitor.SetOffline()
			}
		}
	}
	return a.store.List()
}

// GetOrder возвращает заказ из локального хранилища.
func (a *App) GetOrder(id order.ID) (*order.Order, error) {
	return a.store.GetByID(id)
}

// SaveOrder сохраняет заказ локально и запускает синхронизацию.
// Новому заказу выдается временный id; сервер заменит его настоящим
// при первой удачной доставке.
func (a *App) SaveOrder(ctx context.Context, o order.Order) (*order.Order, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	if o.ID.IsZero() {
		o.ID = order.NewTempID(a.clock.Now())
		o.Version = 1
	} else {
		o.Version++
	}

	if err := a.store.Put(o); err != nil {
		return nil, fmt.Errorf("ошибка локального сохранения: %w", err)
	}

	// Движок возвращает каноническую копию: после удачной доставки
	// временный id в ней уже заменен серверным.
	saved, err := a.engine.SyncOnSave(ctx, o)
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// DeleteOrder удаляет заказ локально и доставляет удаление на сервер.
func (a *App) DeleteOrder(ctx context.Context, id order.ID) error {
	if err := a.store.Remove(id); err != nil {
		return err
	}
	return a.engine.SyncOnDelete(ctx, id)
}

// SyncNow вручную запускает прогон очереди.
func (a *App) SyncNow(ctx context.Context) error {
	if !a.monitor.IsOnline() {
		// Ручной запуск как повод перепроверить сеть.
		if err := a.api.HealthCheck(ctx); err != nil {
			return fmt.Errorf("сервер недоступен: %w", err)
		}
		a.monitor.SetOnline()
		// SetOnline уже запустил прогон через подписку движка.
		return nil
	}
	return a.engine.DrainQueue(ctx)
}

// Status возвращает снимок состояния синхронизации.
func (a *App) Status() SyncStatus {
	return a.engine.Status()
}

// Online сообщает текущее состояние сети.
func (a *App) Online() bool {
	return a.monitor.IsOnline()
}

// Pending возвращает число отложенных мутаций.
func (a *App) Pending() (int, error) {
	return a.queue.Len()
}

// DeadLetter возвращает мутации, исчерпавшие попытки доставки.
func (a *App) DeadLetter() ([]DeadEntry, error) {
	return a.queue.DeadEntries()
}

// RequeueDead возвращает dead-letter записи в очередь на повторную
// доставку.
func (a *App) RequeueDead() (int, error) {
	return a.queue.RequeueDead()
}

// SubscribeStatus подписывает получателя на изменения статуса.
func (a *App) SubscribeStatus(fn func(SyncStatus)) {
	a.engine.Subscribe(fn)
}
