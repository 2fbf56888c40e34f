package client

import (
	"io"
	"testing"
	"time"

	"furnitrack/internal/domain/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func testNow() time.Time {
	return time.Date(2024, 11, 15, 12, 0, 0, 0, time.UTC)
}

func testOrder(id order.ID, name string) order.Order {
	return order.Order{
		ID:       id,
		Version:  1,
		Name:     name,
		Status:   order.StatusPending,
		Price:    1000,
		Expenses: []order.Expense{},
		Photos:   []order.Photo{},
	}
}

func TestOrderStore_PutAndList(t *testing.T) {
	store := NewOrderStore(NewMemoryKV(), testLogger())

	orders, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, orders)

	first := testOrder(order.SyncedID(1), "Шкаф")
	second := testOrder(order.SyncedID(2), "Стол")

	require.NoError(t, store.Put(first))
	require.NoError(t, store.Put(second))

	orders, err = store.List()
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "Шкаф", orders[0].Name)
	assert.Equal(t, "Стол", orders[1].Name)
}

func TestOrderStore_PutReplacesByID(t *testing.T) {
	store := NewOrderStore(NewMemoryKV(), testLogger())

	o := testOrder(order.SyncedID(1), "Шкаф")
	require.NoError(t, store.Put(o))

	o.Name = "Шкаф-купе"
	o.Version = 2
	require.NoError(t, store.Put(o))

	orders, err := store.List()
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Шкаф-купе", orders[0].Name)
	assert.Equal(t, 2, orders[0].Version)
}

func TestOrderStore_GetByID(t *testing.T) {
	store := NewOrderStore(NewMemoryKV(), testLogger())

	temp := order.LocalID("temp-1700000000000-abcd1234")
	require.NoError(t, store.Put(testOrder(temp, "Комод")))

	found, err := store.GetByID(temp)
	require.NoError(t, err)
	assert.Equal(t, "Комод", found.Name)

	_, err = store.GetByID(order.SyncedID(99))
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestOrderStore_ReplaceAll(t *testing.T) {
	store := NewOrderStore(NewMemoryKV(), testLogger())

	temp := order.NewTempID(testNow())
	require.NoError(t, store.Put(testOrder(temp, "Шкаф")))

	// Ответ сервера: тот же заказ под серверным id.
	merged := []order.Order{testOrder(order.SyncedID(42), "Шкаф")}
	require.NoError(t, store.ReplaceAll(merged))

	orders, err := store.List()
	require.NoError(t, err)
	require.Len(t, orders, 1)

	serverID, ok := orders[0].ID.ServerID()
	require.True(t, ok)
	assert.Equal(t, int64(42), serverID)

	_, err = store.GetByID(temp)
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestOrderStore_Remove(t *testing.T) {
	store := NewOrderStore(NewMemoryKV(), testLogger())

	require.NoError(t, store.Put(testOrder(order.SyncedID(1), "Шкаф")))
	require.NoError(t, store.Put(testOrder(order.SyncedID(2), "Стол")))

	require.NoError(t, store.Remove(order.SyncedID(1)))

	orders, err := store.List()
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Стол", orders[0].Name)

	// Повторное удаление не ошибка.
	require.NoError(t, store.Remove(order.SyncedID(1)))
}

func TestOrderStore_SurvivesReopen(t *testing.T) {
	kv := NewMemoryKV()

	store := NewOrderStore(kv, testLogger())
	require.NoError(t, store.Put(testOrder(order.SyncedID(7), "Тумба")))

	// Новый экземпляр поверх того же KV видит записанное.
	reopened := NewOrderStore(kv, testLogger())
	orders, err := reopened.List()
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Тумба", orders[0].Name)
}

func TestSQLiteKV_RoundTrip(t *testing.T) {
	path := t.TempDir() + "/data.db"

	kv, err := NewSQLiteKV(path)
	require.NoError(t, err)
	defer kv.Close()

	_, ok, err := kv.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Put("k", []byte(`{"v":1}`)))
	require.NoError(t, kv.Put("k", []byte(`{"v":2}`)))

	value, ok, err := kv.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"v":2}`, string(value))

	require.NoError(t, kv.Delete("k"))
	_, ok, err = kv.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}
