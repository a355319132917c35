package identity

import (
	"log/slog"
	"sync"

	"github.com/arturoeanton/controle-estoque/internal/domain"
)

// EventBus fans auth-state-change events out to subscribers. Each subscriber
// gets its own buffered channel drained by one goroutine, so a slow listener
// never blocks Publish; when its buffer is full the event is dropped and
// logged.
type EventBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan domain.AuthEvent
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[int]chan domain.AuthEvent)}
}

// Subscribe registers fn and returns the disposer that detaches it. Calling
// the disposer more than once is safe.
func (b *EventBus) Subscribe(fn func(domain.AuthEvent)) func() {
	ch := make(chan domain.AuthEvent, 32)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		for ev := range ch {
			fn(ev)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish sends ev to every subscriber without blocking.
func (b *EventBus) Publish(ev domain.AuthEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			slog.Warn("auth event dropped, subscriber is slow", "subscriber", id, "type", ev.Type)
		}
	}
}

// subscribers returns the number of attached listeners.
func (b *EventBus) subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
