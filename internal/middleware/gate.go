package middleware

import (
	"context"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/controle-estoque/internal/domain"
)

// Outcome is what the gate does with a request.
type Outcome int

// Gate outcomes.
const (
	Render Outcome = iota
	RedirectLogin
	RedirectHome
	Pending
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	case Pending:
		return "pending"
	default:
		return "unknown"
	}
}

// LoadingPlaceholder is the body shown while a session is still resolving.
const LoadingPlaceholder = "Carregando..."

// Decide maps a session state to a gate outcome. A session whose profile has
// not loaded is never treated as admin.
func Decide(st domain.SessionState, requireAdmin bool) Outcome {
	if st.Loading {
		return Pending
	}
	if !st.Authenticated() {
		return RedirectLogin
	}
	if !requireAdmin {
		return Render
	}
	if st.Profile == nil || !st.Profile.Perfil.CanAccess(true) {
		return RedirectHome
	}
	return Render
}

// SessionResolver resolves an access token into a session state.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) domain.SessionState
}

// Gate protects a route. requireAdmin restricts it to administrators.
func Gate(sessions SessionResolver, requireAdmin bool) fiber.Handler {
	return func(c fiber.Ctx) error {
		st := resolveInto(c, sessions)

		switch Decide(st, requireAdmin) {
		case Pending:
			c.Set("Retry-After", "1")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"placeholder": LoadingPlaceholder,
			})
		case RedirectLogin:
			from := c.OriginalURL()
			if wantsJSON(c) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error":    "não autenticado",
					"redirect": "/login",
					"from":     from,
				})
			}
			return c.Redirect().Status(fiber.StatusSeeOther).To("/login?from=" + url.QueryEscape(from))
		case RedirectHome:
			if wantsJSON(c) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error":    "acesso restrito a administradores",
					"redirect": "/",
				})
			}
			return c.Redirect().Status(fiber.StatusSeeOther).To("/")
		}
		return c.Next()
	}
}

// Optional resolves the session for public routes without guarding them.
func Optional(sessions SessionResolver) fiber.Handler {
	return func(c fiber.Ctx) error {
		resolveInto(c, sessions)
		return c.Next()
	}
}

func resolveInto(c fiber.Ctx, sessions SessionResolver) domain.SessionState {
	token := ExtractToken(c)
	st := sessions.Resolve(c.Context(), token)

	c.Locals(localsState, st)
	c.Locals(localsToken, token)
	if st.Authenticated() {
		uc := &domain.UserContext{
			UserID:    st.User.UserID,
			SessionID: st.User.ID,
			Email:     st.User.Email,
			Name:      st.DisplayName(),
		}
		if st.Profile != nil {
			uc.Role = st.Profile.Perfil
		}
		c.Locals(localsUser, uc)
	}
	return st
}

func wantsJSON(c fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON) ||
		strings.Contains(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON)
}
