// Package events provides the typed notification bus connecting the core
// loop to its collaborators (commentary, persistence, rendering).
// Delivery is synchronous and strictly in registration order, so
// downstream side effects like momentum updates stay deterministic.
package events

import "sync"

// Kind names a notification event.
type Kind string

const (
	KindWaveStarted     Kind = "wave-start"
	KindSectionResolved Kind = "section-resolved"
	KindWaveSucceeded   Kind = "wave-success"
	KindWaveFailed      Kind = "wave-failure"
	KindUltimateFired   Kind = "ultimate-fired"
	KindRewardCaught    Kind = "reward-caught"
	KindClusterDecay    Kind = "cluster-decay"
)

// Event is the structured payload delivered to subscribers.
type Event struct {
	Kind    Kind    `json:"kind"`
	Tick    uint64  `json:"tick"`
	WaveID  string  `json:"wave_id,omitempty"`
	Section string  `json:"section,omitempty"`
	Score   int     `json:"score,omitempty"`
	Rate    float64 `json:"rate,omitempty"`
	Detail  string  `json:"detail,omitempty"`
}

// Handler receives published events.
type Handler func(Event)

// SubID identifies a subscription for later removal.
type SubID uint64

// Bus is the observer registry.
type Bus struct {
	mu     sync.Mutex
	nextID SubID
	subs   []subscription
}

type subscription struct {
	id SubID
	fn Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler and returns its subscription ID.
// Handlers are invoked in registration order.
func (b *Bus) Subscribe(fn Handler) SubID {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs = append(b.subs, subscription{id: b.nextID, fn: fn})
	return b.nextID
}

// Unsubscribe removes a handler. Unknown IDs are ignored.
func (b *Bus) Unsubscribe(id SubID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers an event to every subscriber synchronously, in the
// order they subscribed.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(ev)
	}
}
