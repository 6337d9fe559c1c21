package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Hub owns subscriber-group membership. Groups and the reverse index are
// guarded by a single RWMutex local to the hub; delivery happens over each
// session's buffered send channel, never under the lock holder's
// goroutine's control of the peer.
//
// Detach is synchronous: once it returns, no later Broadcast can observe
// the session as a member.
type Hub struct {
	mu      sync.RWMutex
	groups  map[string]map[*Session]struct{}
	members map[*Session]map[string]struct{}
	logger  *zap.SugaredLogger
	metrics Metrics
}

// NewHub builds a hub. metrics may be nil.
func NewHub(logger *zap.SugaredLogger, metrics Metrics) *Hub {
	return &Hub{
		groups:  make(map[string]map[*Session]struct{}),
		members: make(map[*Session]map[string]struct{}),
		logger:  logger,
		metrics: metrics,
	}
}

// Join adds the session to a group, creating the group on first join.
// Joining twice is a no-op, so a session never receives a broadcast more
// than once per call.
func (h *Hub) Join(s *Session, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.groups[group]; !ok {
		h.groups[group] = make(map[*Session]struct{})
	}
	h.groups[group][s] = struct{}{}

	if _, ok := h.members[s]; !ok {
		h.members[s] = make(map[string]struct{})
	}
	h.members[s][group] = struct{}{}
}

// Leave removes the session from a group. Empty groups are deleted to keep
// the table bounded.
func (h *Hub) Leave(s *Session, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(s, group)
}

func (h *Hub) leaveLocked(s *Session, group string) {
	if members, ok := h.groups[group]; ok {
		delete(members, s)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
	if groups, ok := h.members[s]; ok {
		delete(groups, group)
		if len(groups) == 0 {
			delete(h.members, s)
		}
	}
}

// Detach removes the session from every group it belongs to. Called on
// disconnect, before the connection's resources are released.
func (h *Hub) Detach(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for group := range h.members[s] {
		if members, ok := h.groups[group]; ok {
			delete(members, s)
			if len(members) == 0 {
				delete(h.groups, group)
			}
		}
	}
	delete(h.members, s)
}

// Broadcast delivers event to a snapshot of the group's current members and
// returns how many sessions it was enqueued to. A session whose send buffer
// is full misses the event rather than blocking the broadcaster.
func (h *Hub) Broadcast(group string, event interface{}) int {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Errorw("broadcast marshal failed", "group", group, "error", err)
		return 0
	}

	h.mu.RLock()
	snapshot := make([]*Session, 0, len(h.groups[group]))
	for s := range h.groups[group] {
		snapshot = append(snapshot, s)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, s := range snapshot {
		if s.enqueue(data) {
			delivered++
		} else {
			h.logger.Warnw("dropping event for slow subscriber",
				"group", group,
				"session_id", s.id,
			)
		}
	}
	if h.metrics != nil {
		h.metrics.RealtimeEventBroadcast(delivered)
	}
	return delivered
}

// Publish implements ports.EventPublisher.
func (h *Hub) Publish(group string, event interface{}) {
	h.Broadcast(group, event)
}

// GroupSize reports the current member count of a group.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// SessionCount reports how many sessions currently belong to at least one
// group.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.members)
}
