// Package handler exposes each page of the application as Fiber handlers
// returning JSON page views.
package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/controle-estoque/internal/domain"
	"github.com/arturoeanton/controle-estoque/internal/middleware"
	"github.com/arturoeanton/controle-estoque/internal/page"
	"github.com/arturoeanton/controle-estoque/internal/port"
)

// respondError maps an error to its status code and JSON body. fallback is
// shown when err carries no user-facing message.
func respondError(c fiber.Ctx, err error, fallback string) error {
	var (
		confirm *page.ConfirmationError
		verr    *port.ValidationError
		authErr *port.AuthError
	)
	switch {
	case errors.As(err, &confirm):
		return c.Status(fiber.StatusPreconditionRequired).JSON(fiber.Map{
			"error":   confirm.Prompt,
			"confirm": confirm.Prompt,
		})
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  port.UserMessage(err, fallback),
			"fields": verr.Fields,
		})
	case errors.As(err, &authErr):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": authErr.Error()})
	case errors.Is(err, port.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": port.UserMessage(err, "Registro não encontrado.")})
	case errors.Is(err, port.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": port.UserMessage(err, "Acesso negado.")})
	case errors.Is(err, port.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": port.UserMessage(err, fallback)})
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads this response.
		return c.SendStatus(fiber.StatusRequestTimeout)
	}

	slog.Error("request failed", "path", c.Path(), "method", c.Method(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": port.UserMessage(err, fallback)})
}

var errUnsupported = errors.New("operation not supported on this page")

func badBody(c fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
}

// confirmed reports whether the request carries ?confirm=true.
func confirmed(c fiber.Ctx) bool {
	return c.Query("confirm") == "true"
}

// Flash persists page messages across a redirect so a reload inside the TTL
// still shows them.
type Flash struct {
	store port.FlashStore
}

// NewFlash wraps a flash store. A nil store disables flash messages.
func NewFlash(store port.FlashStore) *Flash {
	return &Flash{store: store}
}

func (f *Flash) key(c fiber.Ctx, pageName string) string {
	uc := userContext(c)
	if uc == nil {
		return "anonymous:" + pageName
	}
	return uc.UserID + ":" + pageName
}

// Set stores msg for pageName. Failures are logged, never surfaced.
func (f *Flash) Set(c fiber.Ctx, pageName, msg string) {
	if f == nil || f.store == nil || msg == "" {
		return
	}
	if err := f.store.SetFlash(c.Context(), f.key(c, pageName), msg); err != nil {
		slog.Warn("failed to store flash message", "page", pageName, "error", err)
	}
}

// Get returns the pending message for pageName.
func (f *Flash) Get(c fiber.Ctx, pageName string) string {
	if f == nil || f.store == nil {
		return ""
	}
	msg, err := f.store.Flash(c.Context(), f.key(c, pageName))
	if err != nil {
		slog.Warn("failed to read flash message", "page", pageName, "error", err)
		return ""
	}
	return msg
}

// Options tune every page handler.
type Options struct {
	// SkipFetch disables the initial list load of list pages.
	SkipFetch bool
	// SecureCookies marks the access-token cookie Secure.
	SecureCookies bool
}

func userContext(c fiber.Ctx) *domain.UserContext {
	return middleware.GetUserContext(c)
}
