package dashboard

import (
	"context"
	"sync"
)

const subscriberBuffer = 8

// BroadcastHook fans out widget events to in-process subscribers. Slow
// subscribers drop events rather than block the publisher.
type BroadcastHook struct {
	mu     sync.RWMutex
	subs   map[int]chan WidgetEvent
	next   int
	closed bool
}

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{
		subs: make(map[int]chan WidgetEvent),
	}
}

// WidgetUpdated satisfies the RefreshHook interface and broadcasts events.
func (h *BroadcastHook) WidgetUpdated(_ context.Context, event WidgetEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of widget events and a cancel func. The
// channel is closed on cancel or Close.
func (h *BroadcastHook) Subscribe() (<-chan WidgetEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan WidgetEvent, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.next
	h.next++
	h.subs[id] = ch
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Subscribers reports the number of active subscriptions.
func (h *BroadcastHook) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends every subscription; later subscriptions are closed immediately.
func (h *BroadcastHook) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// MultiRefreshHook forwards events to every hook, stopping at the first error.
type MultiRefreshHook []RefreshHook

// WidgetUpdated implements RefreshHook.
func (m MultiRefreshHook) WidgetUpdated(ctx context.Context, event WidgetEvent) error {
	for _, hook := range m {
		if hook == nil {
			continue
		}
		if err := hook.WidgetUpdated(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
