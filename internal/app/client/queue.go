package client

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"furnitrack/internal/domain/order"

	"golang.org/x/exp/slog"
)

const (
	queueKey      = "sync_queue"
	deadLetterKey = "sync_dead_letter"
)

type EntryType string

const (
	EntrySave   EntryType = "save"
	EntryDelete EntryType = "delete"
)

// QueueEntry — отложенная мутация, ожидающая подтверждения сервером.
type QueueEntry struct {
	Type      EntryType    `json:"type"`
	Order     *order.Order `json:"order,omitempty"`
	OrderID   order.ID     `json:"orderId,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
	// Attempts — сколько прогонов подряд запись сорвала транзиентной
	// ошибкой. Сбрасывается при возврате из dead-letter.
	Attempts int `json:"attempts,omitempty"`
}

// DeadEntry — мутация, исчерпавшая все попытки доставки. Не теряется
// молча: список виден пользователю и может быть поставлен в очередь
// заново.
type DeadEntry struct {
	QueueEntry
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failedAt"`
}

// Queue — durable FIFO очередь офлайн-мутаций. Записи обрабатываются
// строго в порядке добавления; запись покидает очередь только после
// подтверждения сервером либо уходит в dead-letter после исчерпания
// попыток.
type Queue struct {
	kv  KV
	log *slog.Logger
	mu  sync.Mutex
}

func NewQueue(kv KV, log *slog.Logger) *Queue {
	return &Queue{
		kv:  kv,
		log: log.With("component", "sync_queue"),
	}
}

func (q *Queue) Append(entry QueueEntry) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries, err := q.load(queueKey)
	if err != nil {
		return err
	}
	entries = append(entries, entry)

	if err := q.saveEntries(queueKey, entries); err != nil {
		return err
	}

	q.log.Debug("мутация поставлена в очередь",
		"type", entry.Type,
		"queue_len", len(entries),
	)
	return nil
}

func (q *Queue) Entries() ([]QueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load(queueKey)
}

// ReplaceAll перезаписывает очередь целиком. Вызывается после каждой
// подтвержденной записи, чтобы сбой посреди прогона терял не более
// одной мутации, находившейся в полете.
func (q *Queue) ReplaceAll(entries []QueueEntry) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.saveEntries(queueKey, entries)
}

func (q *Queue) Len() (int, error) {
	entries, err := q.Entries()
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Persist принудительно сбрасывает текущее содержимое очереди на диск.
// Вызывается на переходе в офлайн.
func (q *Queue) Persist() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries, err := q.load(queueKey)
	if err != nil {
		return err
	}
	return q.saveEntries(queueKey, entries)
}

// AppendDead переносит запись в dead-letter список.
func (q *Queue) AppendDead(entry QueueEntry, reason string, now time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	dead, err := q.loadDead()
	if err != nil {
		return err
	}
	dead = append(dead, DeadEntry{
		QueueEntry: entry,
		Reason:     reason,
		FailedAt:   now,
	})

	data, err := json.Marshal(dead)
	if err != nil {
		return fmt.Errorf("ошибка сериализации dead-letter: %w", err)
	}
	return q.kv.Put(deadLetterKey, data)
}

func (q *Queue) DeadEntries() ([]DeadEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.loadDead()
}

// RequeueDead возвращает все dead-letter записи в хвост очереди.
func (q *Queue) RequeueDead() (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	dead, err := q.loadDead()
	if err != nil {
		return 0, err
	}
	if len(dead) == 0 {
		return 0, nil
	}

	entries, err := q.load(queueKey)
	if err != nil {
		return 0, err
	}
	for _, d := range dead {
		entry := d.QueueEntry
		entry.Attempts = 0
		entries = append(entries, entry)
	}

	if err := q.saveEntries(queueKey, entries); err != nil {
		return 0, err
	}
	if err := q.kv.Delete(deadLetterKey); err != nil {
		return 0, err
	}

	q.log.Info("dead-letter записи возвращены в очередь", "count", len(dead))
	return len(dead), nil
}

func (q *Queue) load(key string) ([]QueueEntry, error) {
	data, ok, err := q.kv.Get(key)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения очереди: %w", err)
	}
	if !ok {
		return []QueueEntry{}, nil
	}

	var entries []QueueEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("ошибка парсинга очереди: %w", err)
	}
	return entries, nil
}

func (q *Queue) saveEntries(key string, entries []QueueEntry) error {
	if entries == nil {
		entries = []QueueEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("ошибка сериализации очереди: %w", err)
	}
	return q.kv.Put(key, data)
}

func (q *Queue) loadDead() ([]DeadEntry, error) {
	data, ok, err := q.kv.Get(deadLetterKey)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения dead-letter: %w", err)
	}
	if !ok {
		return []DeadEntry{}, nil
	}

	var dead []DeadEntry
	if err := json.Unmarshal(data, &dead); err != nil {
		return nil, fmt.Errorf("ошибка парсинга dead-letter: %w", err)
	}
	return dead, nil
}
