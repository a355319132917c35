// Package identity is the in-process managed auth backend: credentials,
// sessions, access tokens and the auth-state-change stream.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arturoeanton/controle-estoque/internal/domain"
	"github.com/arturoeanton/controle-estoque/internal/port"
)

// Provider implements port.IdentityProvider.
type Provider struct {
	identities port.IdentityRepository
	sessions   port.SessionStore
	hasher     port.PasswordHasher
	tokens     *TokenManager
	bus        *EventBus
	ttl        time.Duration
	now        func() time.Time
}

// NewProvider wires the auth backend. ttl is the lifetime of a session.
func NewProvider(
	identities port.IdentityRepository,
	sessions port.SessionStore,
	hasher port.PasswordHasher,
	tokens *TokenManager,
	bus *EventBus,
	ttl time.Duration,
) *Provider {
	return &Provider{
		identities: identities,
		sessions:   sessions,
		hasher:     hasher,
		tokens:     tokens,
		bus:        bus,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Subscribe attaches fn to the auth-state-change stream.
func (p *Provider) Subscribe(fn func(domain.AuthEvent)) func() {
	return p.bus.Subscribe(fn)
}

// SignIn verifies credentials, opens a session and returns its access token.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	ident, err := p.identities.GetIdentityByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return nil, port.NewAuthError(port.ErrInvalidCredentials)
		}
		return nil, port.NewRemoteError("sign in", "Falha ao entrar. Tente novamente.", err)
	}

	ok, err := p.hasher.Verify(password, ident.PasswordHash)
	if err != nil {
		slog.Error("stored password hash is unreadable", "user_id", ident.ID, "error", err)
		return nil, port.NewAuthError(port.ErrInvalidCredentials)
	}
	if !ok {
		return nil, port.NewAuthError(port.ErrInvalidCredentials)
	}

	now := p.now()
	sess := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    ident.ID,
		Email:     ident.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(p.ttl),
	}
	if err := p.sessions.Save(ctx, sess, p.ttl); err != nil {
		return nil, port.NewRemoteError("sign in", "Falha ao criar sessão.", err)
	}

	token, err := p.tokens.Issue(sess)
	if err != nil {
		_ = p.sessions.Delete(ctx, sess.ID)
		return nil, fmt.Errorf("sign in: %w", err)
	}

	p.publish(domain.AuthEventSignedIn, sess.ID, sess.UserID)
	return &domain.AuthResult{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(p.ttl.Seconds()),
		Session:     sess,
	}, nil
}

// SignUp creates the identity and its profile in one transaction. The input
// must already be validated; SignUp only normalizes it.
func (p *Provider) SignUp(ctx context.Context, in domain.SignUpInput) (*domain.Profile, error) {
	role, err := domain.ParseRole(in.Perfil)
	if err != nil {
		v := port.NewValidationError()
		v.Add("perfil", "Perfil inválido")
		return nil, v
	}

	hash, err := p.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("sign up: hash password: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	ident := &domain.Identity{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	}
	profile := &domain.Profile{
		Nome:         strings.TrimSpace(in.Nome),
		Email:        email,
		Perfil:       role,
		Telefone:     in.Telefone,
		Cargo:        in.Cargo,
		Departamento: in.Departamento,
	}

	created, err := p.identities.CreateIdentityWithProfile(ctx, ident, profile)
	if err != nil {
		if errors.Is(err, port.ErrConflict) {
			return nil, port.NewRemoteError("sign up", "Este email já está cadastrado.", err)
		}
		var verr *port.ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
		return nil, port.NewRemoteError("sign up", "Erro ao criar conta.", err)
	}
	return created, nil
}

// SignOut closes the session behind token. An unreadable or already expired
// token has nothing left to close and is not an error.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	claims, err := p.tokens.Parse(token)
	if err != nil {
		return nil
	}
	if err := p.sessions.Delete(ctx, claims.SID); err != nil {
		return port.NewRemoteError("sign out", "Falha ao sair.", err)
	}
	p.publish(domain.AuthEventSignedOut, claims.SID, claims.UID)
	return nil
}

// GetSession returns the live session for token.
func (p *Provider) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := p.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	sess, err := p.sessions.Get(ctx, claims.SID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != claims.UID {
		return nil, port.ErrTokenInvalid
	}
	return sess, nil
}

// NotifyUserUpdated publishes USER_UPDATED so cached profiles get reloaded.
func (p *Provider) NotifyUserUpdated(userID string) {
	p.publish(domain.AuthEventUserUpdated, "", userID)
}

// RevokeUser closes every session of userID.
func (p *Provider) RevokeUser(ctx context.Context, userID string) error {
	if err := p.sessions.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke user sessions: %w", err)
	}
	p.publish(domain.AuthEventUserDeleted, "", userID)
	return nil
}

func (p *Provider) publish(t domain.AuthEventType, sessionID, userID string) {
	p.bus.Publish(domain.AuthEvent{
		Type:      t,
		SessionID: sessionID,
		UserID:    userID,
		At:        p.now(),
	})
}
