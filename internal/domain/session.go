package domain

import "time"

// Session is a live sign-in, persisted by the session store under its ID.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// AuthResult is returned by a successful sign-in.
type AuthResult struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int      `json:"expires_in"`
	Session     *Session `json:"session"`
	Profile     *Profile `json:"profile,omitempty"`
}

// AuthEventType names an auth-state change.
type AuthEventType string

// Auth event constants.
const (
	AuthEventSignedIn    AuthEventType = "SIGNED_IN"
	AuthEventSignedOut   AuthEventType = "SIGNED_OUT"
	AuthEventUserUpdated AuthEventType = "USER_UPDATED"
	AuthEventUserDeleted AuthEventType = "USER_DELETED"
)

// AuthEvent is published by the identity provider on every auth-state change.
type AuthEvent struct {
	Type      AuthEventType `json:"type"`
	SessionID string        `json:"session_id,omitempty"`
	UserID    string        `json:"user_id"`
	At        time.Time     `json:"at"`
}

// SessionState is the session context's view of one session. User is nil when
// no session is active; Profile may lag behind User while Loading is true.
type SessionState struct {
	User    *Session `json:"user"`
	Profile *Profile `json:"profile"`
	Loading bool     `json:"loading"`
}

// Authenticated reports whether a session is present.
func (s SessionState) Authenticated() bool {
	return s.User != nil
}

// IsAdmin is false until a profile has been resolved.
func (s SessionState) IsAdmin() bool {
	return s.Profile != nil && s.Profile.Perfil == RoleAdministrador
}

// IsFuncionario is false until a profile has been resolved.
func (s SessionState) IsFuncionario() bool {
	return s.Profile != nil && s.Profile.Perfil == RoleFuncionario
}

// DisplayName prefers the profile name and falls back to the session email.
func (s SessionState) DisplayName() string {
	if s.Profile != nil && s.Profile.Nome != "" {
		return s.Profile.Nome
	}
	if s.User != nil {
		return s.User.Email
	}
	return ""
}
