// Package hub fans assistant messages out to everyone listening on an
// interview session.
package hub

import (
	"sync"

	"go.uber.org/zap"
)

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 32

// GroupName is the broadcast group for an interview session.
func GroupName(interviewID string) string {
	return "interview_" + interviewID
}

// Hub is a set of named broadcast groups. The zero value is not usable; use New.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[*Subscription]struct{}
	buffer int
	logger *zap.Logger
}

// New creates a hub. buffer <= 0 selects DefaultBuffer.
func New(buffer int, logger *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		groups: make(map[string]map[*Subscription]struct{}),
		buffer: buffer,
		logger: logger,
	}
}

// Subscription is one listener's membership in a group.
type Subscription struct {
	hub   *Hub
	group string
	ch    chan string
	once  sync.Once
}

// C delivers published messages. It is closed by Close.
func (s *Subscription) C() <-chan string { return s.ch }

// Group returns the group name.
func (s *Subscription) Group() string { return s.group }

// Close leaves the group. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		if subs, ok := s.hub.groups[s.group]; ok {
			delete(subs, s)
			if len(subs) == 0 {
				delete(s.hub.groups, s.group)
			}
		}
		close(s.ch)
		s.hub.mu.Unlock()
	})
}

// Subscribe joins group.
func (h *Hub) Subscribe(group string) *Subscription {
	sub := &Subscription{hub: h, group: group, ch: make(chan string, h.buffer)}
	h.mu.Lock()
	subs, ok := h.groups[group]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.groups[group] = subs
	}
	subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Publish delivers msg to every subscriber of group without blocking. A
// subscriber whose queue is full loses its oldest message; the failure is
// logged and delivery to the rest of the group continues.
func (h *Hub) Publish(group, msg string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.groups[group] {
		select {
		case sub.ch <- msg:
			continue
		default:
		}
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- msg:
			h.logger.Warn("subscriber queue full, dropped oldest message", zap.String("group", group))
		default:
			h.logger.Warn("failed to deliver message to subscriber", zap.String("group", group))
		}
	}
}

// Size returns how many subscribers group has.
func (h *Hub) Size(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// SessionEmitter publishes engine output to the session's group.
type SessionEmitter struct {
	Hub *Hub
}

// Publish implements interview.Emitter.
func (e SessionEmitter) Publish(sessionID, message string) {
	e.Hub.Publish(GroupName(sessionID), message)
}
