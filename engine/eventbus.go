package engine

import (
	"sync"
	"time"
)

type EventType int

type Event struct {
	Type      EventType
	Timestamp time.Time
	Payload   any
}

type subscriber struct {
	id    int
	types map[EventType]bool // nil means all types
	fn    func(Event)
}

// EventBus fans events out to subscribers synchronously, in subscription order.
type EventBus struct {
	mu     sync.RWMutex
	subs   []subscriber
	nextID int
}

func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers fn for every event type and returns an id for Unsubscribe.
func (b *EventBus) Subscribe(fn func(Event)) int {
	return b.SubscribeTypes(fn)
}

// SubscribeTypes registers fn for the given types only.
func (b *EventBus) SubscribeTypes(fn func(Event), types ...EventType) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	s := subscriber{id: b.nextID, fn: fn}
	if len(types) > 0 {
		s.types = make(map[EventType]bool, len(types))
		for _, t := range types {
			s.types[t] = true
		}
	}
	b.subs = append(b.subs, s)
	return s.id
}

func (b *EventBus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

func (b *EventBus) Emit(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	b.mu.RLock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()
	for _, s := range subs {
		if s.types == nil || s.types[evt.Type] {
			s.fn(evt)
		}
	}
}
