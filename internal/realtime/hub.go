package realtime

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

const subscriberBuffer = 32

// Hub receives events from a Broker and fans them out to subscribers of the
// event's household. Slow subscribers lose events rather than blocking the hub.
type Hub struct {
	broker Broker
	log    *zap.Logger

	mu   sync.RWMutex
	subs map[int64]map[*Subscription]struct{}
}

func NewHub(b Broker, log *zap.Logger) *Hub {
	return &Hub{broker: b, log: log, subs: make(map[int64]map[*Subscription]struct{})}
}

// Publish sends ev through the broker.
func (h *Hub) Publish(ctx context.Context, ev Event) error {
	return h.broker.Publish(ctx, ev)
}

// Run pumps broker events to subscribers until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	return h.broker.Run(ctx, h.dispatch)
}

func (h *Hub) dispatch(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[ev.HouseholdID] {
		select {
		case s.ch <- ev:
		default:
			h.log.Warn("realtime: subscriber too slow, dropping event",
				zap.Int64("household_id", ev.HouseholdID), zap.String("table", ev.Table))
		}
	}
}

// Subscription receives the events of one household on C until Close.
type Subscription struct {
	C <-chan Event

	ch          chan Event
	hub         *Hub
	householdID int64
	once        sync.Once
}

func (h *Hub) Subscribe(householdID int64) *Subscription {
	ch := make(chan Event, subscriberBuffer)
	s := &Subscription{C: ch, ch: ch, hub: h, householdID: householdID}
	h.mu.Lock()
	if h.subs[householdID] == nil {
		h.subs[householdID] = make(map[*Subscription]struct{})
	}
	h.subs[householdID][s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Close unsubscribes and closes C. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		delete(h.subs[s.householdID], s)
		if len(h.subs[s.householdID]) == 0 {
			delete(h.subs, s.householdID)
		}
		close(s.ch)
		h.mu.Unlock()
	})
}

// Subscribers returns the number of open subscriptions for a household.
func (h *Hub) Subscribers(householdID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[householdID])
}
