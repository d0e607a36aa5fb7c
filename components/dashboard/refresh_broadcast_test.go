package dashboard

import (
	"context"
	"errors"
	"testing"
)

func TestBroadcastHookSubscribe(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	defer cancel()
	event := WidgetEvent{AreaCode: AreaMain}
	if err := hook.WidgetUpdated(context.Background(), event); err != nil {
		t.Fatalf("WidgetUpdated returned error: %v", err)
	}
	select {
	case e := <-ch:
		if e.AreaCode != event.AreaCode {
			t.Fatalf("expected area %s, got %s", event.AreaCode, e.AreaCode)
		}
	default:
		t.Fatalf("expected event to be delivered")
	}
}

func TestBroadcastHookDropsWhenSubscriberIsFull(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	defer cancel()
	for i := 0; i < subscriberBuffer+4; i++ {
		if err := hook.WidgetUpdated(context.Background(), WidgetEvent{Reason: "burst"}); err != nil {
			t.Fatalf("WidgetUpdated returned error: %v", err)
		}
	}
	if len(ch) != subscriberBuffer {
		t.Fatalf("expected buffered events capped at %d, got %d", subscriberBuffer, len(ch))
	}
}

func TestBroadcastHookCancelAndClose(t *testing.T) {
	hook := NewBroadcastHook()
	first, cancelFirst := hook.Subscribe()
	second, _ := hook.Subscribe()
	if hook.Subscribers() != 2 {
		t.Fatalf("expected 2 subscribers, got %d", hook.Subscribers())
	}

	cancelFirst()
	cancelFirst()
	if _, open := <-first; open {
		t.Fatalf("expected cancelled channel closed")
	}
	if hook.Subscribers() != 1 {
		t.Fatalf("expected 1 subscriber after cancel, got %d", hook.Subscribers())
	}

	hook.Close()
	if _, open := <-second; open {
		t.Fatalf("expected channel closed by Close")
	}
	late, _ := hook.Subscribe()
	if _, open := <-late; open {
		t.Fatalf("expected subscriptions after Close to be closed")
	}
}

func TestMultiRefreshHookStopsAtFirstError(t *testing.T) {
	first := &collectingHook{}
	last := &collectingHook{}
	boom := errors.New("boom")
	hooks := MultiRefreshHook{first, nil, failingHook{err: boom}, last}

	err := hooks.WidgetUpdated(context.Background(), WidgetEvent{Reason: "add"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if first.events != 1 || last.events != 0 {
		t.Fatalf("expected fan-out to stop at failure, got first=%d last=%d", first.events, last.events)
	}
}

type failingHook struct {
	err error
}

func (f failingHook) WidgetUpdated(context.Context, WidgetEvent) error {
	return f.err
}
