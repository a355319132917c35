package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/controle-estoque/internal/domain"
)

// AccessTokenCookie carries the access token for browser requests.
const AccessTokenCookie = "sb-access-token"

const (
	localsUser  = "user"
	localsState = "session_state"
	localsToken = "access_token"
)

// ExtractToken reads the access token from the Authorization header, the
// session cookie, or the ?token= query parameter (EventSource cannot set
// headers), in that order.
func ExtractToken(c fiber.Ctx) string {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if token := c.Cookies(AccessTokenCookie); token != "" {
		return token
	}
	return c.Query("token")
}

// GetUserContext extracts the UserContext from Fiber locals.
func GetUserContext(c fiber.Ctx) *domain.UserContext {
	u, ok := c.Locals(localsUser).(*domain.UserContext)
	if !ok {
		return nil
	}
	return u
}

// GetSessionState returns the state resolved by the gate, or the
// unauthenticated state when no gate ran.
func GetSessionState(c fiber.Ctx) domain.SessionState {
	st, _ := c.Locals(localsState).(domain.SessionState)
	return st
}

// GetToken returns the access token the gate resolved.
func GetToken(c fiber.Ctx) string {
	t, _ := c.Locals(localsToken).(string)
	return t
}
