package order

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind различает локальные (ещё не подтверждённые сервером) и серверные id.
type Kind int

const (
	// KindNone — заказ без идентификатора (тело POST /orders).
	KindNone Kind = iota
	// KindLocal — временный клиентский id, сервер о заказе не знает.
	KindLocal
	// KindSynced — постоянный id, выданный сервером.
	KindSynced
)

// ID — идентификатор заказа как явное tagged union вместо
// угадывания по строковому префиксу. На проводе серверный id — число,
// временный — строка вида "temp-<unixms>-<random>".
type ID struct {
	kind     Kind
	serverID int64
	tempID   string
}

// SyncedID создает серверный идентификатор.
func SyncedID(id int64) ID {
	return ID{kind: KindSynced, serverID: id}
}

// LocalID оборачивает уже существующий временный идентификатор.
func LocalID(tempID string) ID {
	return ID{kind: KindLocal, tempID: tempID}
}

// NewTempID выдает новый временный идентификатор для заказа,
// созданного офлайн.
func NewTempID(now time.Time) ID {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return ID{
		kind:   KindLocal,
		tempID: fmt.Sprintf("temp-%d-%s", now.UnixMilli(), suffix),
	}
}

func (id ID) Kind() Kind { return id.kind }

// IsLocal сообщает, что сервер этот заказ ещё не видел.
func (id ID) IsLocal() bool { return id.kind == KindLocal }

func (id ID) IsZero() bool { return id.kind == KindNone }

// ServerID возвращает серверный id, если он есть.
func (id ID) ServerID() (int64, bool) {
	if id.kind != KindSynced {
		return 0, false
	}
	return id.serverID, true
}

func (id ID) String() string {
	switch id.kind {
	case KindSynced:
		return fmt.Sprintf("%d", id.serverID)
	case KindLocal:
		return id.tempID
	default:
		return ""
	}
}

// Equal сравнивает идентификаторы с учетом их вида.
func (id ID) Equal(other ID) bool {
	if id.kind != other.kind {
		return false
	}
	switch id.kind {
	case KindSynced:
		return id.serverID == other.serverID
	case KindLocal:
		return id.tempID == other.tempID
	default:
		return true
	}
}

func (id ID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case KindSynced:
		return json.Marshal(id.serverID)
	case KindLocal:
		return json.Marshal(id.tempID)
	default:
		return []byte("null"), nil
	}
}

func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*id = ID{}
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*id = SyncedID(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("неподдерживаемый формат id: %s", trimmed)
	}
	if s == "" {
		*id = ID{}
		return nil
	}
	*id = LocalID(s)
	return nil
}
