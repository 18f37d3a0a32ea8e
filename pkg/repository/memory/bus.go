package memory

import (
	"context"
	"sync"

	"github.com/actio-dev/actio/pkg/domain/model"
)

// eventBus fans change events out to Watch subscribers. Publishing never
// blocks a writer: a subscriber that falls behind loses events, which is
// acceptable because consumers reload the affected row on every event.
type eventBus struct {
	mu     sync.Mutex
	subs   map[string][]chan model.ChangeEvent
	closed bool
}

func newEventBus() *eventBus {
	return &eventBus{
		subs: make(map[string][]chan model.ChangeEvent),
	}
}

func (b *eventBus) subscribe(ctx context.Context, collection string) <-chan model.ChangeEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan model.ChangeEvent, 32)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[collection] = append(b.subs[collection], ch)

	go func() {
		<-ctx.Done()
		b.unsubscribe(collection, ch)
	}()

	return ch
}

func (b *eventBus) unsubscribe(collection string, ch chan model.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	chans := b.subs[collection]
	for i, c := range chans {
		if c == ch {
			b.subs[collection] = append(chans[:i], chans[i+1:]...)
			close(c)
			return
		}
	}
}

func (b *eventBus) publish(event model.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs[event.Collection] {
		select {
		case ch <- event:
		default:
		}
	}
}

func (b *eventBus) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, chans := range b.subs {
		for _, ch := range chans {
			close(ch)
		}
	}
	b.subs = nil
}
