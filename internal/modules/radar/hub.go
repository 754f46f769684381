// README: Hub tracks live sessions and fans out change signals and area readings.
package radar

import (
	"sync"

	"crowdradar/internal/metrics"
	"crowdradar/internal/modules/area"
	"crowdradar/internal/types"
)

type Hub struct {
	mu       sync.RWMutex
	sessions map[types.ID]*Session
	lastArea *area.Status
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[types.ID]*Session)}
}

// Register adds s and sends it the latest area reading, if any.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	h.sessions[s.ID] = s
	last := h.lastArea
	h.mu.Unlock()
	metrics.ActiveSessions.Set(float64(h.Len()))
	if last != nil {
		s.PushArea(*last)
	}
}

func (h *Hub) Unregister(id types.ID) {
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
	metrics.ActiveSessions.Set(float64(h.Len()))
}

// NotifyChanged tells every session that venue data changed.
func (h *Hub) NotifyChanged() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.sessions {
		s.NotifyChanged()
	}
}

func (h *Hub) BroadcastArea(st area.Status) {
	h.mu.Lock()
	h.lastArea = &st
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()
	for _, s := range sessions {
		s.PushArea(st)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
