package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/waitline/waitline/pkg/id"
	logpkg "github.com/waitline/waitline/pkg/log"
)

// Snapshot is the unit broadcast to subscribers: the full ordered waiting
// list of one venue at one instant, never a delta. Revision is monotonic per
// process so receivers can discard stale frames that arrive out of order.
type Snapshot struct {
	VenueID  string   `json:"venue_id"`
	Queue    []string `json:"queue"`
	Revision id.Rev   `json:"revision"`
}

// Sink is implemented by transports to receive published snapshots. Send
// must not block indefinitely; delivery stops when Context ends.
type Sink interface {
	Send(Snapshot) error
	Context() context.Context
}

// subscriberBuffer bounds how many undelivered snapshots a slow subscriber
// may hold before publishes skip it.
const subscriberBuffer = 8

// Hub maintains per-venue subscription membership and fans queue snapshots
// out to every current subscriber of a venue, best-effort: no retry, no
// persistence of undelivered frames, slow subscribers are skipped.
type Hub struct {
	logger logpkg.Logger

	mu     sync.RWMutex
	venues map[string]map[string]*Subscription
}

// NewHub creates an empty hub.
func NewHub(logger logpkg.Logger) *Hub {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	return &Hub{
		logger: logger.With(logpkg.Component("notify")),
		venues: make(map[string]map[string]*Subscription),
	}
}

// Subscription is one sink's membership in one venue channel.
type Subscription struct {
	ID    string
	Venue string

	hub  *Hub
	sink Sink
	ch   chan Snapshot
	stop chan struct{}
	once sync.Once
}

// Subscribe joins the sink to the venue's channel and starts delivery. The
// subscription ends when Close is called or the sink's context is done.
func (h *Hub) Subscribe(venue string, sink Sink) *Subscription {
	sub := &Subscription{
		ID:    uuid.NewString(),
		Venue: venue,
		hub:   h,
		sink:  sink,
		ch:    make(chan Snapshot, subscriberBuffer),
		stop:  make(chan struct{}),
	}
	h.mu.Lock()
	subs := h.venues[venue]
	if subs == nil {
		subs = make(map[string]*Subscription)
		h.venues[venue] = subs
	}
	subs[sub.ID] = sub
	h.mu.Unlock()

	h.logger.Debug("subscriber joined", logpkg.Str("venue", venue), logpkg.Str("sub", sub.ID))
	go sub.pump()
	return sub
}

// Close removes the subscription from its channel. Idempotent.
func (s *Subscription) Close() {
	s.once.Do(func() {
		close(s.stop)
		s.hub.remove(s)
	})
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	if subs, ok := h.venues[sub.Venue]; ok {
		delete(subs, sub.ID)
		if len(subs) == 0 {
			delete(h.venues, sub.Venue)
		}
	}
	h.mu.Unlock()
	h.logger.Debug("subscriber left", logpkg.Str("venue", sub.Venue), logpkg.Str("sub", sub.ID))
}

func (s *Subscription) pump() {
	defer s.Close()
	ctx := s.sink.Context()
	for {
		select {
		case snap := <-s.ch:
			if err := s.sink.Send(snap); err != nil {
				return
			}
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		}
	}
}

// Publish delivers the snapshot to every currently subscribed sink on the
// venue's channel. Subscribers whose buffers are full are skipped.
func (h *Hub) Publish(venue string, snap Snapshot) {
	h.mu.RLock()
	subs := make([]*Subscription, 0, len(h.venues[venue]))
	for _, sub := range h.venues[venue] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.ch <- snap:
		default:
			h.logger.Warn("subscriber lagging, snapshot dropped",
				logpkg.Str("venue", venue), logpkg.Str("sub", sub.ID))
		}
	}
}

// Subscribers reports the current membership size of a venue channel.
func (h *Hub) Subscribers(venue string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.venues[venue])
}
