package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub() *Hub {
	return NewHub(zap.NewNop().Sugar(), nil)
}

func drain(t *testing.T, s *Session) []map[string]interface{} {
	t.Helper()
	var got []map[string]interface{}
	for {
		select {
		case data := <-s.send:
			var msg map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &msg))
			got = append(got, msg)
		default:
			return got
		}
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	hub := newTestHub()
	session := newSession("s1", "user-1", nil, 8)

	hub.Join(session, "survey:abc")
	hub.Join(session, "survey:abc")

	assert.Equal(t, 1, hub.GroupSize("survey:abc"))

	delivered := hub.Broadcast("survey:abc", map[string]string{"type": "survey_updated"})
	assert.Equal(t, 1, delivered)
	assert.Len(t, drain(t, session), 1)
}

func TestBroadcastReachesOnlyGroupMembers(t *testing.T) {
	hub := newTestHub()
	member := newSession("s1", "user-1", nil, 8)
	other := newSession("s2", "user-2", nil, 8)

	hub.Join(member, "survey:abc")
	hub.Join(other, "survey:xyz")

	delivered := hub.Broadcast("survey:abc", map[string]string{"type": "survey_updated"})

	assert.Equal(t, 1, delivered)
	assert.Len(t, drain(t, member), 1)
	assert.Empty(t, drain(t, other))
}

func TestBroadcastToEmptyGroup(t *testing.T) {
	hub := newTestHub()
	assert.Equal(t, 0, hub.Broadcast("survey:nobody", map[string]string{"type": "noop"}))
}

func TestDetachStopsDelivery(t *testing.T) {
	hub := newTestHub()
	session := newSession("s1", "user-1", nil, 8)

	hub.Join(session, "survey:abc")
	hub.Join(session, "survey:def")
	hub.Detach(session)

	// Detach is synchronous; no event may arrive afterwards.
	assert.Equal(t, 0, hub.Broadcast("survey:abc", map[string]string{"type": "survey_updated"}))
	assert.Equal(t, 0, hub.Broadcast("survey:def", map[string]string{"type": "survey_updated"}))
	assert.Empty(t, drain(t, session))
	assert.Equal(t, 0, hub.SessionCount())
}

func TestLeaveRemovesEmptyGroup(t *testing.T) {
	hub := newTestHub()
	session := newSession("s1", "user-1", nil, 8)

	hub.Join(session, "survey:abc")
	hub.Leave(session, "survey:abc")

	assert.Equal(t, 0, hub.GroupSize("survey:abc"))
	hub.mu.RLock()
	_, exists := hub.groups["survey:abc"]
	hub.mu.RUnlock()
	assert.False(t, exists)
}

func TestBroadcastSkipsFullBuffers(t *testing.T) {
	hub := newTestHub()
	slow := newSession("s1", "user-1", nil, 1)
	fast := newSession("s2", "user-2", nil, 8)

	hub.Join(slow, "survey:abc")
	hub.Join(fast, "survey:abc")

	hub.Broadcast("survey:abc", map[string]string{"type": "first"})
	delivered := hub.Broadcast("survey:abc", map[string]string{"type": "second"})

	// The slow session's single-slot buffer still holds the first event.
	assert.Equal(t, 1, delivered)
	assert.Len(t, drain(t, slow), 1)
	assert.Len(t, drain(t, fast), 2)
}

func TestPublishImplementsEventPublisher(t *testing.T) {
	hub := newTestHub()
	session := newSession("s1", "user-1", nil, 8)
	hub.Join(session, "survey:abc")

	hub.Publish("survey:abc", map[string]string{"type": "survey_created"})

	msgs := drain(t, session)
	require.Len(t, msgs, 1)
	assert.Equal(t, "survey_created", msgs[0]["type"])
}
