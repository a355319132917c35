package port

import (
	"context"
	"time"

	"github.com/arturoeanton/controle-estoque/internal/domain"
)

// IdentityProvider abstracts the managed auth backend: credential checks,
// session issuance and the auth-state-change stream.
type IdentityProvider interface {
	AuthEventSource

	// SignIn verifies credentials and opens a session.
	SignIn(ctx context.Context, email, password string) (*domain.AuthResult, error)

	// SignUp creates the identity and its profile in one unit of work.
	SignUp(ctx context.Context, in domain.SignUpInput) (*domain.Profile, error)

	// SignOut closes the session the token belongs to.
	SignOut(ctx context.Context, token string) error

	// GetSession returns the live session for an access token.
	GetSession(ctx context.Context, token string) (*domain.Session, error)

	// NotifyUserUpdated publishes a USER_UPDATED event for userID.
	NotifyUserUpdated(userID string)

	// RevokeUser closes every session of userID and publishes USER_DELETED.
	RevokeUser(ctx context.Context, userID string) error
}

// AuthEventSource is an observable stream of auth-state changes. Subscribe
// returns the disposer that detaches the listener.
type AuthEventSource interface {
	Subscribe(fn func(domain.AuthEvent)) (unsubscribe func())
}

// SessionStore persists live sessions.
type SessionStore interface {
	Save(ctx context.Context, sess *domain.Session, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}

// FlashStore keeps transient page messages that expire on their own.
type FlashStore interface {
	SetFlash(ctx context.Context, key, message string) error
	Flash(ctx context.Context, key string) (string, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}
