package order

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_JSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		id   ID
		want string
	}{
		{
			name: "серверный id сериализуется числом",
			id:   SyncedID(42),
			want: "42",
		},
		{
			name: "временный id сериализуется строкой",
			id:   LocalID("temp-1700000000-abc"),
			want: `"temp-1700000000-abc"`,
		},
		{
			name: "пустой id сериализуется как null",
			id:   ID{},
			want: "null",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))

			var back ID
			require.NoError(t, json.Unmarshal(data, &back))
			assert.True(t, tt.id.Equal(back))
		})
	}
}

func TestNewTempID(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	id := NewTempID(now)

	assert.True(t, id.IsLocal())
	assert.True(t, strings.HasPrefix(id.String(), "temp-1700000000000-"))

	// Два вызова не должны совпадать.
	other := NewTempID(now)
	assert.False(t, id.Equal(other))
}

func TestID_ServerID(t *testing.T) {
	id := SyncedID(7)
	serverID, ok := id.ServerID()
	assert.True(t, ok)
	assert.Equal(t, int64(7), serverID)

	_, ok = LocalID("temp-1-a").ServerID()
	assert.False(t, ok)

	_, ok = (ID{}).ServerID()
	assert.False(t, ok)
}

func TestID_Schema(t *testing.T) {
	s := ID{}.Schema(nil)
	require.NotNil(t, s)
	require.Len(t, s.OneOf, 3)

	types := make([]string, len(s.OneOf))
	for i, alt := range s.OneOf {
		types[i] = alt.Type
	}
	assert.Equal(t, []string{"integer", "string", "null"}, types)
}

func TestID_UnmarshalOrderPayload(t *testing.T) {
	// Заказ из сценария: временный id в смешанном пакете.
	raw := `{"id":"temp-1700000000-abc","name":"Шкаф","price":1000,"expenses":[],"photos":[]}`

	var o Order
	require.NoError(t, json.Unmarshal([]byte(raw), &o))
	assert.True(t, o.ID.IsLocal())
	assert.Equal(t, "Шкаф", o.Name)

	raw = `{"id":42,"name":"Шкаф","price":1000,"version":1,"expenses":[],"photos":[]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &o))
	serverID, ok := o.ID.ServerID()
	require.True(t, ok)
	assert.Equal(t, int64(42), serverID)
}
