package handler

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/controle-estoque/internal/domain"
	"github.com/arturoeanton/controle-estoque/internal/port"
)

const eventsPingInterval = 15 * time.Second

// EventsHandler streams the caller's auth-state changes over SSE.
type EventsHandler struct {
	source port.AuthEventSource
	ping   time.Duration
}

// NewEventsHandler creates the SSE handler.
func NewEventsHandler(source port.AuthEventSource) *EventsHandler {
	return &EventsHandler{source: source, ping: eventsPingInterval}
}

// Stream sends every auth event of the signed-in user until the client
// disconnects.
func (h *EventsHandler) Stream(c fiber.Ctx) error {
	uc := userContext(c)
	if uc == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "não autenticado"})
	}
	userID := uc.UserID

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	ch := make(chan domain.AuthEvent, 16)
	unsubscribe := h.source.Subscribe(func(ev domain.AuthEvent) {
		if ev.UserID != userID {
			return
		}
		select {
		case ch <- ev:
		default:
			slog.Warn("SSE client too slow, auth event dropped", "user_id", userID, "type", ev.Type)
		}
	})

	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()

		fmt.Fprintf(w, ": connected\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		ticker := time.NewTicker(h.ping)
		defer ticker.Stop()

		for {
			select {
			case ev := <-ch:
				data, _ := json.Marshal(ev)
				fmt.Fprintf(w, "event: auth\ndata: %s\n\n", data)
			case <-ticker.C:
				fmt.Fprintf(w, ": ping\n\n")
			}
			if err := w.Flush(); err != nil {
				// client went away
				return
			}
		}
	})
}
