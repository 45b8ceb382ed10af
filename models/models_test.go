package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueKey(t *testing.T) {
	assert.Equal(t, "queue:dsa:easy", QueueKey("dsa", "easy"))
	assert.Equal(t, "queue:frontend", QueueKey("frontend", ""))
}

func TestParseQueueKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		domain   string
		roomType string
		ok       bool
	}{
		{"domain and room type", "queue:dsa:easy", "dsa", "easy", true},
		{"domain only", "queue:frontend", "frontend", "", true},
		{"missing prefix", "dsa:easy", "", "", false},
		{"empty domain", "queue:", "", "", false},
		{"bare prefix with separator", "queue::easy", "", "", false},
		{"empty key", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			domain, roomType, ok := ParseQueueKey(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.domain, domain)
			assert.Equal(t, tt.roomType, roomType)
		})
	}
}

func TestQueueKeyRoundTrip(t *testing.T) {
	for _, pair := range [][2]string{
		{"dsa", "easy"},
		{"frontend", ""},
		{"system-design", "hard"},
	} {
		key := QueueKey(pair[0], pair[1])
		domain, roomType, ok := ParseQueueKey(key)
		require.True(t, ok, key)
		assert.Equal(t, pair[0], domain)
		assert.Equal(t, pair[1], roomType)
	}
}

func TestWaitingUserEncoding(t *testing.T) {
	data, err := json.Marshal(WaitingUser{UserID: "u1", Domain: "dsa", RoomType: "easy"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":"u1","domain":"dsa","room_type":"easy"}`, string(data))

	// A domain-only entry omits the room type entirely.
	data, err = json.Marshal(WaitingUser{UserID: "u1", Domain: "frontend"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":"u1","domain":"frontend"}`, string(data))
}

func TestRoomHasUser(t *testing.T) {
	room := &Room{
		RoomID: "r1",
		Users: []RoomUser{
			{UserID: "a"},
			{UserID: "b"},
		},
	}

	assert.True(t, room.HasUser("a"))
	assert.True(t, room.HasUser("b"))
	assert.False(t, room.HasUser("c"))
	assert.False(t, (&Room{}).HasUser("a"))
}
