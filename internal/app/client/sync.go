package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"furnitrack/internal/domain/order"

	"golang.org/x/exp/slog"
)

// SyncState — состояние движка синхронизации, транслируемое
// подписчикам (UI показывает его как индикатор).
type SyncState string

const (
	StateIdle    SyncState = "idle"
	StateSyncing SyncState = "syncing"
	StateSuccess SyncState = "success"
	StateError   SyncState = "error"
)

// SyncStatus — снимок состояния для подписчиков.
type SyncStatus struct {
	State   SyncState
	Pending int
	Err     error
}

// API — серверные вызовы, нужные движку синхронизации.
type API interface {
	CreateOrder(ctx context.Context, o order.Order) (*order.Order, error)
	UpdateOrder(ctx context.Context, id int64, o order.Order) (*order.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
	SyncBatch(ctx context.Context, orders []order.Order) ([]order.Order, error)
}

// maxEntryAttempts — сколько прогонов подряд запись может срывать
// транзиентной ошибкой, прежде чем уйдет в dead-letter. Прогон
// запускается только после удачного health-probe, поэтому запись,
// стабильно падающая при живом сервере, считается ядовитой и не
// должна вечно держать хвост очереди.
const maxEntryAttempts = 5

// Engine координирует доставку локальных мутаций на сервер. В каждый
// момент времени открыт не более чем один исходящий обмен: и прогон
// очереди, и немедленная отправка сохранения держат общий флаг, а
// конкурирующие триггеры (второе сохранение, восстановление сети,
// таймер, ручной запуск) складываются в очередь, а не во второй обмен.
type Engine struct {
	store   *OrderStore
	queue   *Queue
	api     API
	monitor *Monitor
	clock   Clock
	log     *slog.Logger

	drainInterval time.Duration

	// inFlight защищает единственность исходящего обмена.
	flightMu sync.Mutex
	inFlight bool

	statusMu sync.Mutex
	status   SyncStatus
	subs     []func(SyncStatus)

	cancel context.CancelFunc
	done   chan struct{}
}

func NewEngine(store *OrderStore, queue *Queue, api API, monitor *Monitor, clock Clock, drainInterval time.Duration, log *slog.Logger) *Engine {
	return &Engine{
		store:         store,
		queue:         queue,
		api:           api,
		monitor:       monitor,
		clock:         clock,
		log:           log.With("component", "sync_engine"),
		drainInterval: drainInterval,
		status:        SyncStatus{State: StateIdle},
	}
}

// Subscribe регистрирует получателя изменений статуса. Вызывается
// синхронно при каждом переходе.
func (e *Engine) Subscribe(fn func(SyncStatus)) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.subs = append(e.subs, fn)
}

// Status возвращает текущий снимок.
func (e *Engine) Status() SyncStatus {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	return e.status
}

func (e *Engine) setStatus(state SyncState, err error) {
	pending, _ := e.queue.Len()

	e.statusMu.Lock()
	e.status = SyncStatus{State: state, Pending: pending, Err: err}
	status := e.status
	subs := make([]func(SyncStatus), len(e.subs))
	copy(subs, e.subs)
	e.statusMu.Unlock()

	for _, fn := range subs {
		fn(status)
	}
}

// Start запускает фоновые реакции движка: прогон очереди при
// восстановлении сети и периодический прогон по таймеру.
func (e *Engine) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)
	e.done = make(chan struct{})

	e.monitor.Subscribe(func(online bool) {
		if online {
			e.log.Info("сеть восстановлена, прогон очереди")
			if err := e.DrainQueue(ctx); err != nil {
				e.log.Error("ошибка прогона очереди после восстановления сети", "error", err)
			}
			return
		}
		e.log.Info("сеть потеряна, очередь сохранена")
		if err := e.queue.Persist(); err != nil {
			e.log.Error("ошибка сохранения очереди", "error", err)
		}
	})

	go func() {
		defer close(e.done)
		ticker := time.NewTicker(e.drainInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !e.monitor.IsOnline() {
					continue
				}
				n, err := e.queue.Len()
				if err != nil || n == 0 {
					continue
				}
				if err := e.DrainQueue(ctx); err != nil {
					e.log.Error("ошибка периодического прогона очереди", "error", err)
				}
			}
		}
	}()
}

// Stop останавливает фоновые горутины движка.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	if e.done != nil {
		<-e.done
	}
}

// SyncOnSave доставляет сохраненный заказ на сервер и возвращает его
// каноническую копию: после удачной доставки временный id заменен
// серверным. Локальная копия уже записана в хранилище; офлайн, занятый
// канал и транзиентные сбои уводят мутацию в очередь (возвращается
// локальная копия), терминальный отказ сервера возвращается
// вызывающему и в очередь не попадает.
func (e *Engine) SyncOnSave(ctx context.Context, o order.Order) (*order.Order, error) {
	if !e.monitor.IsOnline() {
		e.log.Debug("офлайн, заказ поставлен в очередь", "id", o.ID.String())
		if err := e.enqueue(QueueEntry{
			Type:      EntrySave,
			Order:     &o,
			Timestamp: e.clock.Now(),
		}); err != nil {
			return nil, err
		}
		return &o, nil
	}

	if !e.beginFlight() {
		// Другой обмен уже в полете: добавляем в хвост, чтобы не
		// открывать второй разговор с сервером и не нарушать
		// порядок доставки относительно записей в очереди.
		e.log.Debug("обмен с сервером уже идет, заказ поставлен в хвост", "id", o.ID.String())
		if err := e.enqueue(QueueEntry{
			Type:      EntrySave,
			Order:     &o,
			Timestamp: e.clock.Now(),
		}); err != nil {
			return nil, err
		}
		return &o, nil
	}
	defer e.endFlight()

	e.setStatus(StateSyncing, nil)

	// Снимок id до сверки: по нему находится свежесозданный заказ
	// в ответе сервера.
	prev, err := e.store.List()
	if err != nil {
		e.setStatus(StateError, err)
		return nil, fmt.Errorf("ошибка чтения локального хранилища: %w", err)
	}

	merged, err := e.api.SyncBatch(ctx, []order.Order{o})
	if err != nil {
		if !IsTransient(err) {
			e.setStatus(StateError, err)
			return nil, fmt.Errorf("сервер отклонил заказ: %w", err)
		}
		e.log.Warn("сервер недоступен, заказ поставлен в очередь", "id", o.ID.String(), "error", err)
		e.monitor.SetOffline()
		if qErr := e.enqueue(QueueEntry{
			Type:      EntrySave,
			Order:     &o,
			Timestamp: e.clock.Now(),
		}); qErr != nil {
			return nil, qErr
		}
		e.setStatus(StateError, err)
		return &o, nil
	}

	// Сервер вернул сверенный список: временные id заменены
	// серверными, локальное хранилище перезаписывается целиком.
	if err := e.store.ReplaceAll(merged); err != nil {
		return nil, fmt.Errorf("ошибка обновления локального хранилища: %w", err)
	}
	e.setStatus(StateSuccess, nil)
	return resolveSaved(prev, merged, o), nil
}

// resolveSaved находит в сверенном списке каноническую копию только
// что отправленного заказа: по серверному id, а для нового заказа по
// id, которого не было в локальном списке до сверки.
func resolveSaved(prev, merged []order.Order, sent order.Order) *order.Order {
	if serverID, ok := sent.ID.ServerID(); ok {
		for i := range merged {
			if id, ok := merged[i].ID.ServerID(); ok && id == serverID {
				return &merged[i]
			}
		}
		return &sent
	}

	known := make(map[int64]struct{}, len(prev))
	for _, o := range prev {
		if id, ok := o.ID.ServerID(); ok {
			known[id] = struct{}{}
		}
	}

	var fresh []*order.Order
	for i := range merged {
		id, ok := merged[i].ID.ServerID()
		if !ok {
			continue
		}
		if _, exists := known[id]; !exists {
			fresh = append(fresh, &merged[i])
		}
	}
	if len(fresh) == 1 {
		return fresh[0]
	}
	// Несколько новых id (второе устройство успело что-то создать):
	// сужаем по имени.
	for _, c := range fresh {
		if c.Name == sent.Name {
			return c
		}
	}
	return &sent
}

// SyncOnDelete доставляет удаление заказа. Локальная копия уже
// удалена; заказ, никогда не попадавший на сервер, удалять на сервере
// не нужно.
func (e *Engine) SyncOnDelete(ctx context.Context, id order.ID) error {
	serverID, ok := id.ServerID()
	if !ok {
		e.log.Debug("заказ не был синхронизирован, удаление только локальное", "id", id.String())
		return nil
	}

	if !e.monitor.IsOnline() || !e.beginFlight() {
		return e.enqueue(QueueEntry{
			Type:      EntryDelete,
			OrderID:   id,
			Timestamp: e.clock.Now(),
		})
	}
	defer e.endFlight()

	e.setStatus(StateSyncing, nil)

	if err := e.api.DeleteOrder(ctx, serverID); err != nil {
		if !IsTransient(err) {
			e.setStatus(StateError, err)
			return fmt.Errorf("сервер отклонил удаление: %w", err)
		}
		e.log.Warn("сервер недоступен, удаление поставлено в очередь", "id", id.String(), "error", err)
		e.monitor.SetOffline()
		if qErr := e.enqueue(QueueEntry{
			Type:      EntryDelete,
			OrderID:   id,
			Timestamp: e.clock.Now(),
		}); qErr != nil {
			return qErr
		}
		e.setStatus(StateError, err)
		return nil
	}

	e.setStatus(StateSuccess, nil)
	return nil
}

// DrainQueue прогоняет очередь строго в порядке FIFO. Запись покидает
// очередь только после подтверждения; укороченная очередь сохраняется
// после каждого подтверждения, так что обрыв посреди прогона не
// теряет и не дублирует мутации. Транзиентный сбой останавливает
// прогон, но не навсегда: счетчик попыток записи растет с каждым
// сорванным прогоном, и после maxEntryAttempts запись уходит в
// dead-letter, освобождая хвост. Терминальный отказ уводит запись в
// dead-letter сразу.
func (e *Engine) DrainQueue(ctx context.Context) error {
	if !e.beginFlight() {
		e.log.Debug("обмен с сервером уже идет")
		return nil
	}
	defer e.endFlight()

	entries, err := e.queue.Entries()
	if err != nil {
		return fmt.Errorf("ошибка чтения очереди: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	e.log.Info("прогон очереди", "pending", len(entries))
	e.setStatus(StateSyncing, nil)

	for len(entries) > 0 {
		if ctx.Err() != nil {
			e.setStatus(StateError, ctx.Err())
			return ctx.Err()
		}

		entry := entries[0]

		err := e.deliver(ctx, entry)
		switch {
		case err == nil:
			// Подтверждено: запись покидает очередь.
		case !IsTransient(err):
			e.log.Error("сервер отклонил отложенную мутацию, перенос в dead-letter",
				"type", entry.Type,
				"error", err,
			)
			if dErr := e.queue.AppendDead(entry, err.Error(), e.clock.Now()); dErr != nil {
				e.setStatus(StateError, dErr)
				return fmt.Errorf("ошибка переноса в dead-letter: %w", dErr)
			}
		default:
			entry.Attempts++
			if entry.Attempts < maxEntryAttempts {
				// Сервер снова недоступен: остаток очереди ждет
				// следующего триггера, счетчик попыток сохранен.
				entries[0] = entry
				if qErr := e.queue.ReplaceAll(entries); qErr != nil {
					e.setStatus(StateError, qErr)
					return fmt.Errorf("ошибка сохранения очереди: %w", qErr)
				}
				e.log.Warn("сервер недоступен, прогон остановлен",
					"remaining", len(entries),
					"attempts", entry.Attempts,
					"error", err,
				)
				e.monitor.SetOffline()
				e.setStatus(StateError, err)
				return nil
			}
			// Запись срывает прогон который раз подряд при живом
			// health-чеке: ядовитая, не держим за ней очередь.
			e.log.Error("запись не доставлена за отведенные прогоны, перенос в dead-letter",
				"type", entry.Type,
				"attempts", entry.Attempts,
				"error", err,
			)
			if dErr := e.queue.AppendDead(entry, err.Error(), e.clock.Now()); dErr != nil {
				e.setStatus(StateError, dErr)
				return fmt.Errorf("ошибка переноса в dead-letter: %w", dErr)
			}
		}

		entries = entries[1:]
		if err := e.queue.ReplaceAll(entries); err != nil {
			e.setStatus(StateError, err)
			return fmt.Errorf("ошибка сохранения очереди: %w", err)
		}
	}

	e.setStatus(StateSuccess, nil)
	return nil
}

// deliver выполняет одну отложенную мутацию.
func (e *Engine) deliver(ctx context.Context, entry QueueEntry) error {
	switch entry.Type {
	case EntrySave:
		if entry.Order == nil {
			return errors.New("запись save без заказа")
		}
		merged, err := e.api.SyncBatch(ctx, []order.Order{*entry.Order})
		if err != nil {
			return err
		}
		return e.store.ReplaceAll(merged)
	case EntryDelete:
		serverID, ok := entry.OrderID.ServerID()
		if !ok {
			return nil
		}
		return e.api.DeleteOrder(ctx, serverID)
	default:
		return fmt.Errorf("неизвестный тип записи очереди: %s", entry.Type)
	}
}

func (e *Engine) enqueue(entry QueueEntry) error {
	if err := e.queue.Append(entry); err != nil {
		return fmt.Errorf("ошибка добавления в очередь: %w", err)
	}
	e.setStatus(StateIdle, nil)
	return nil
}

// beginFlight захватывает право на единственный исходящий обмен.
// Возвращает false, если обмен уже идет; конкурент в таком случае
// ставит свою мутацию в очередь, а не открывает второй разговор.
func (e *Engine) beginFlight() bool {
	e.flightMu.Lock()
	defer e.flightMu.Unlock()
	if e.inFlight {
		return false
	}
	e.inFlight = true
	return true
}

func (e *Engine) endFlight() {
	e.flightMu.Lock()
	e.inFlight = false
	e.flightMu.Unlock()
}

func (e *Engine) busy() bool {
	e.flightMu.Lock()
	defer e.flightMu.Unlock()
	return e.inFlight
}
