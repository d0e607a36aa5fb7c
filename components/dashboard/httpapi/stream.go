package httpapi

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-bizdash/components/dashboard"
)

const keepAliveInterval = 15 * time.Second

// events streams widget refresh events as server-sent events.
func (h *handlers) events(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	hook := h.cfg.Broadcast
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		events, cancel := hook.Subscribe()
		defer cancel()
		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()
		if err := writeComment(w, "connected"); err != nil {
			return
		}
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				if err := writeEvent(w, event); err != nil {
					return
				}
			case <-ticker.C:
				// a failed flush means the client went away
				if err := writeComment(w, "keep-alive"); err != nil {
					return
				}
			}
		}
	})
	return nil
}

func writeEvent(w *bufio.Writer, event dashboard.WidgetEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: widget\ndata: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}

func writeComment(w *bufio.Writer, text string) error {
	if _, err := fmt.Fprintf(w, ": %s\n\n", text); err != nil {
		return err
	}
	return w.Flush()
}

func registerWebSocket(r fiber.Router, hook *dashboard.BroadcastHook, path string) {
	r.Use(path, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	r.Get(path, websocket.New(func(conn *websocket.Conn) {
		events, cancel := hook.Subscribe()
		defer cancel()

		// The read loop only exists to notice the client closing.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					_ = conn.Close()
					return
				}
				if err := conn.WriteJSON(event); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}))
}
