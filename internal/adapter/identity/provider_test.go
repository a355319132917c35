package identity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	qt "github.com/frankban/quicktest"
	"github.com/redis/go-redis/v9"

	"github.com/arturoeanton/controle-estoque/internal/adapter/cache"
	"github.com/arturoeanton/controle-estoque/internal/domain"
	"github.com/arturoeanton/controle-estoque/internal/port"
)

type memIdentities struct {
	mu       sync.Mutex
	byEmail  map[string]*domain.Identity
	profiles map[string]*domain.Profile
	fail     error
}

func newMemIdentities() *memIdentities {
	return &memIdentities{byEmail: map[string]*domain.Identity{}, profiles: map[string]*domain.Profile{}}
}

func (m *memIdentities) CreateIdentityWithProfile(_ context.Context, id *domain.Identity, p *domain.Profile) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	if _, ok := m.byEmail[id.Email]; ok {
		return nil, port.ErrConflict
	}
	m.byEmail[id.Email] = id
	created := *p
	created.ID = id.ID
	m.profiles[id.ID] = &created
	return &created, nil
}

func (m *memIdentities) GetIdentityByEmail(_ context.Context, email string) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, port.ErrNotFound
	}
	return id, nil
}

type providerFixture struct {
	provider   *Provider
	identities *memIdentities
	sessions   *cache.SessionStore
	events     chan domain.AuthEvent
}

func newProviderFixture(c *qt.C) *providerFixture {
	mr, err := miniredis.Run()
	c.Assert(err, qt.IsNil)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})

	tokens, err := NewTokenManager("s3cret", "controle-estoque")
	c.Assert(err, qt.IsNil)

	f := &providerFixture{
		identities: newMemIdentities(),
		sessions:   cache.NewSessionStore(rdb, "test"),
		events:     make(chan domain.AuthEvent, 16),
	}
	bus := NewEventBus()
	f.provider = NewProvider(f.identities, f.sessions, newTestHasher(c), tokens, bus, time.Hour)
	dispose := f.provider.Subscribe(func(ev domain.AuthEvent) { f.events <- ev })
	c.Cleanup(dispose)
	return f
}

func (f *providerFixture) nextEvent(c *qt.C) domain.AuthEvent {
	select {
	case ev := <-f.events:
		return ev
	case <-time.After(time.Second):
		c.Fatal("no auth event published")
		return domain.AuthEvent{}
	}
}

func signUpInput() domain.SignUpInput {
	return domain.SignUpInput{
		Nome:            "Ana Souza",
		Email:           "Ana@Example.com",
		Password:        "segredo123",
		ConfirmPassword: "segredo123",
		Telefone:        "(11) 98765-4321",
		Perfil:          "funcionario",
		Cargo:           "Estoquista",
		Departamento:    "Logística",
	}
}

func TestProvider_SignUpSignInSignOut(t *testing.T) {
	c := qt.New(t)
	f := newProviderFixture(c)
	ctx := context.Background()

	profile, err := f.provider.SignUp(ctx, signUpInput())
	c.Assert(err, qt.IsNil)
	c.Assert(profile.Email, qt.Equals, "ana@example.com")
	c.Assert(profile.Perfil, qt.Equals, domain.RoleFuncionario)
	c.Assert(profile.ID, qt.Not(qt.Equals), "")

	res, err := f.provider.SignIn(ctx, "ana@example.com", "segredo123")
	c.Assert(err, qt.IsNil)
	c.Assert(res.TokenType, qt.Equals, "bearer")
	c.Assert(res.ExpiresIn, qt.Equals, 3600)
	c.Assert(res.Session.UserID, qt.Equals, profile.ID)
	c.Assert(f.nextEvent(c).Type, qt.Equals, domain.AuthEventSignedIn)

	sess, err := f.provider.GetSession(ctx, res.AccessToken)
	c.Assert(err, qt.IsNil)
	c.Assert(sess.ID, qt.Equals, res.Session.ID)

	c.Assert(f.provider.SignOut(ctx, res.AccessToken), qt.IsNil)
	ev := f.nextEvent(c)
	c.Assert(ev.Type, qt.Equals, domain.AuthEventSignedOut)
	c.Assert(ev.SessionID, qt.Equals, res.Session.ID)

	_, err = f.provider.GetSession(ctx, res.AccessToken)
	c.Assert(err, qt.ErrorIs, port.ErrSessionNotFound)
}

func TestProvider_SignInInvalidCredentials(t *testing.T) {
	c := qt.New(t)
	f := newProviderFixture(c)
	ctx := context.Background()

	_, err := f.provider.SignUp(ctx, signUpInput())
	c.Assert(err, qt.IsNil)

	for _, tc := range []struct{ email, password string }{
		{"ana@example.com", "errada"},
		{"ninguem@example.com", "segredo123"},
	} {
		_, err := f.provider.SignIn(ctx, tc.email, tc.password)
		var authErr *port.AuthError
		c.Assert(errors.As(err, &authErr), qt.IsTrue, qt.Commentf("email %s", tc.email))
		c.Assert(err, qt.ErrorIs, port.ErrInvalidCredentials)
	}
}

func TestProvider_SignUpDuplicateEmail(t *testing.T) {
	c := qt.New(t)
	f := newProviderFixture(c)
	ctx := context.Background()

	_, err := f.provider.SignUp(ctx, signUpInput())
	c.Assert(err, qt.IsNil)
	_, err = f.provider.SignUp(ctx, signUpInput())
	c.Assert(err, qt.ErrorIs, port.ErrConflict)
	c.Assert(port.UserMessage(err, "x"), qt.Equals, "Este email já está cadastrado.")
}

func TestProvider_SignUpBackendFailureLeavesNothing(t *testing.T) {
	c := qt.New(t)
	f := newProviderFixture(c)
	f.identities.fail = errors.New("connection reset")

	_, err := f.provider.SignUp(context.Background(), signUpInput())
	var remote *port.RemoteError
	c.Assert(errors.As(err, &remote), qt.IsTrue)
	c.Assert(f.identities.byEmail, qt.HasLen, 0)
}

func TestProvider_SignOutWithGarbageToken(t *testing.T) {
	c := qt.New(t)
	f := newProviderFixture(c)
	c.Assert(f.provider.SignOut(context.Background(), "garbage"), qt.IsNil)
}

func TestProvider_RevokeUser(t *testing.T) {
	c := qt.New(t)
	f := newProviderFixture(c)
	ctx := context.Background()

	profile, err := f.provider.SignUp(ctx, signUpInput())
	c.Assert(err, qt.IsNil)
	res, err := f.provider.SignIn(ctx, "ana@example.com", "segredo123")
	c.Assert(err, qt.IsNil)
	f.nextEvent(c)

	c.Assert(f.provider.RevokeUser(ctx, profile.ID), qt.IsNil)
	ev := f.nextEvent(c)
	c.Assert(ev.Type, qt.Equals, domain.AuthEventUserDeleted)
	c.Assert(ev.UserID, qt.Equals, profile.ID)

	_, err = f.provider.GetSession(ctx, res.AccessToken)
	c.Assert(err, qt.ErrorIs, port.ErrSessionNotFound)
}
