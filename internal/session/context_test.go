package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/arturoeanton/controle-estoque/internal/domain"
	"github.com/arturoeanton/controle-estoque/internal/port"
)

// fakeIdentity maps tokens straight to sessions and delivers events
// synchronously.
type fakeIdentity struct {
	mu        sync.Mutex
	sessions  map[string]*domain.Session // by token
	listeners map[int]func(domain.AuthEvent)
	nextID    int
	disposed  int
	signUps   int
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{sessions: map[string]*domain.Session{}, listeners: map[int]func(domain.AuthEvent){}}
}

func (f *fakeIdentity) addSession(token, sessionID, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[token] = &domain.Session{ID: sessionID, UserID: userID, Email: userID + "@example.com", ExpiresAt: time.Now().Add(time.Hour)}
}

func (f *fakeIdentity) Subscribe(fn func(domain.AuthEvent)) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, id)
		f.disposed++
	}
}

func (f *fakeIdentity) emit(ev domain.AuthEvent) {
	f.mu.Lock()
	fns := make([]func(domain.AuthEvent), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (f *fakeIdentity) SignIn(_ context.Context, email, password string) (*domain.AuthResult, error) {
	if password != "segredo" {
		return nil, port.NewAuthError(port.ErrInvalidCredentials)
	}
	f.addSession("tok-"+email, "sid-"+email, email)
	f.mu.Lock()
	sess := f.sessions["tok-"+email]
	f.mu.Unlock()
	return &domain.AuthResult{AccessToken: "tok-" + email, TokenType: "bearer", Session: sess}, nil
}

func (f *fakeIdentity) SignUp(_ context.Context, in domain.SignUpInput) (*domain.Profile, error) {
	f.mu.Lock()
	f.signUps++
	f.mu.Unlock()
	return &domain.Profile{ID: "new", Nome: in.Nome, Email: in.Email, Perfil: domain.Role(in.Perfil)}, nil
}

func (f *fakeIdentity) SignOut(_ context.Context, token string) error {
	f.mu.Lock()
	delete(f.sessions, token)
	f.mu.Unlock()
	return nil
}

func (f *fakeIdentity) GetSession(_ context.Context, token string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[token]
	if !ok {
		return nil, port.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeIdentity) NotifyUserUpdated(userID string) {
	f.emit(domain.AuthEvent{Type: domain.AuthEventUserUpdated, UserID: userID})
}

func (f *fakeIdentity) RevokeUser(context.Context, string) error { return nil }

type fakeProfiles struct {
	port.ProfileRepository

	mu       sync.Mutex
	profiles map[string]*domain.Profile
	calls    int
	fail     error
	gate     chan struct{} // when set, GetProfile blocks until closed
	entered  chan struct{}
}

func newFakeProfiles(ps ...*domain.Profile) *fakeProfiles {
	f := &fakeProfiles{profiles: map[string]*domain.Profile{}}
	for _, p := range ps {
		f.profiles[p.ID] = p
	}
	return f
}

func (f *fakeProfiles) GetProfile(_ context.Context, id string) (*domain.Profile, error) {
	f.mu.Lock()
	f.calls++
	gate, entered, fail := f.gate, f.entered, f.fail
	f.mu.Unlock()

	if gate != nil {
		entered <- struct{}{}
		<-gate
	}
	if fail != nil {
		return nil, fail
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) UpdateProfile(_ context.Context, id string, u domain.ProfileUpdate) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.profiles[id]
	if u.Nome != nil {
		p.Nome = *u.Nome
	}
	if u.Perfil != nil {
		p.Perfil = *u.Perfil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) setNome(id, nome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[id].Nome = nome
}

func adminProfile() *domain.Profile {
	return &domain.Profile{ID: "admin", Nome: "Admin", Perfil: domain.RoleAdministrador}
}

func staffProfile() *domain.Profile {
	return &domain.Profile{ID: "ana", Nome: "Ana", Perfil: domain.RoleFuncionario, Cargo: "Estoquista", Departamento: "Logística"}
}

func newStarted(c *qt.C, ident *fakeIdentity, profiles *fakeProfiles) *Context {
	sc := New(ident, profiles)
	c.Assert(sc.Start(context.Background()), qt.IsNil)
	c.Cleanup(sc.Stop)
	return sc
}

func eventually(c *qt.C, cond func() bool) {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	c.Fatal("condition not met in time")
}

func TestResolve_NoToken(t *testing.T) {
	c := qt.New(t)
	sc := newStarted(c, newFakeIdentity(), newFakeProfiles())

	st := sc.Resolve(context.Background(), "")
	c.Assert(st.Authenticated(), qt.IsFalse)
	c.Assert(st.IsAdmin(), qt.IsFalse)

	st = sc.Resolve(context.Background(), "unknown")
	c.Assert(st.Authenticated(), qt.IsFalse)
}

func TestResolve_LoadsProfileOnce(t *testing.T) {
	c := qt.New(t)
	ident := newFakeIdentity()
	ident.addSession("t1", "s1", "admin")
	profiles := newFakeProfiles(adminProfile())
	sc := newStarted(c, ident, profiles)

	for range 3 {
		st := sc.Resolve(context.Background(), "t1")
		c.Assert(st.Authenticated(), qt.IsTrue)
		c.Assert(st.Loading, qt.IsFalse)
		c.Assert(st.IsAdmin(), qt.IsTrue)
		c.Assert(st.DisplayName(), qt.Equals, "Admin")
	}
	c.Assert(profiles.calls, qt.Equals, 1)
}

func TestResolve_ProfileFailureIsNotAdmin(t *testing.T) {
	c := qt.New(t)
	ident := newFakeIdentity()
	ident.addSession("t1", "s1", "admin")
	profiles := newFakeProfiles(adminProfile())
	profiles.fail = errors.New("db down")
	sc := newStarted(c, ident, profiles)

	st := sc.Resolve(context.Background(), "t1")
	c.Assert(st.Authenticated(), qt.IsTrue)
	c.Assert(st.Profile, qt.IsNil)
	c.Assert(st.IsAdmin(), qt.IsFalse)
	c.Assert(st.DisplayName(), qt.Equals, "admin@example.com")

	// The next resolve retries the load.
	profiles.mu.Lock()
	profiles.fail = nil
	profiles.mu.Unlock()
	st = sc.Resolve(context.Background(), "t1")
	c.Assert(st.IsAdmin(), qt.IsTrue)
}

func TestResolve_ConcurrentCallerSeesLoading(t *testing.T) {
	c := qt.New(t)
	ident := newFakeIdentity()
	ident.addSession("t1", "s1", "ana")
	profiles := newFakeProfiles(staffProfile())
	profiles.gate = make(chan struct{})
	profiles.entered = make(chan struct{}, 1)
	sc := newStarted(c, ident, profiles)

	done := make(chan domain.SessionState)
	go func() { done <- sc.Resolve(context.Background(), "t1") }()
	<-profiles.entered

	st := sc.Resolve(context.Background(), "t1")
	c.Assert(st.Loading, qt.IsTrue)
	c.Assert(st.Authenticated(), qt.IsTrue)
	c.Assert(st.Profile, qt.IsNil)

	close(profiles.gate)
	first := <-done
	c.Assert(first.Loading, qt.IsFalse)
	c.Assert(first.IsFuncionario(), qt.IsTrue)
}

func TestSignIn_ResolvesProfile(t *testing.T) {
	c := qt.New(t)
	ident := newFakeIdentity()
	sc := newStarted(c, ident, newFakeProfiles(staffProfile()))

	res, err := sc.SignIn(context.Background(), "ana", "segredo")
	c.Assert(err, qt.IsNil)
	c.Assert(res.Profile, qt.Not(qt.IsNil))
	c.Assert(res.Profile.Nome, qt.Equals, "Ana")

	st := sc.Resolve(context.Background(), res.AccessToken)
	c.Assert(st.IsFuncionario(), qt.IsTrue)

	_, err = sc.SignIn(context.Background(), "ana", "errada")
	var authErr *port.AuthError
	c.Assert(errors.As(err, &authErr), qt.IsTrue)
}

func TestSignOut_ForgetsSession(t *testing.T) {
	c := qt.New(t)
	ident := newFakeIdentity()
	sc := newStarted(c, ident, newFakeProfiles(staffProfile()))

	res, err := sc.SignIn(context.Background(), "ana", "segredo")
	c.Assert(err, qt.IsNil)
	c.Assert(sc.Len(), qt.Equals, 1)

	c.Assert(sc.SignOut(context.Background(), res.AccessToken), qt.IsNil)
	c.Assert(sc.Len(), qt.Equals, 0)
	c.Assert(sc.Resolve(context.Background(), res.AccessToken).Authenticated(), qt.IsFalse)
}

func TestEvents_UserUpdatedReloadsProfile(t *testing.T) {
	c := qt.New(t)
	ident := newFakeIdentity()
	ident.addSession("t1", "s1", "ana")
	profiles := newFakeProfiles(staffProfile())
	sc := newStarted(c, ident, profiles)

	c.Assert(sc.Resolve(context.Background(), "t1").DisplayName(), qt.Equals, "Ana")

	profiles.setNome("ana", "Ana Souza")
	ident.emit(domain.AuthEvent{Type: domain.AuthEventUserUpdated, UserID: "ana"})

	eventually(c, func() bool {
		st := sc.Resolve(context.Background(), "t1")
		return !st.Loading && st.DisplayName() == "Ana Souza"
	})
}

func TestEvents_SignedOutAndUserDeleted(t *testing.T) {
	c := qt.New(t)
	ident := newFakeIdentity()
	ident.addSession("t1", "s1", "ana")
	ident.addSession("t2", "s2", "ana")
	ident.addSession("t3", "s3", "admin")
	sc := newStarted(c, ident, newFakeProfiles(staffProfile(), adminProfile()))

	for _, tok := range []string{"t1", "t2", "t3"} {
		sc.Resolve(context.Background(), tok)
	}
	c.Assert(sc.Len(), qt.Equals, 3)

	ident.emit(domain.AuthEvent{Type: domain.AuthEventSignedOut, SessionID: "s3", UserID: "admin"})
	c.Assert(sc.Len(), qt.Equals, 2)

	ident.emit(domain.AuthEvent{Type: domain.AuthEventUserDeleted, UserID: "ana"})
	c.Assert(sc.Len(), qt.Equals, 0)
}

func TestStartStop_DisposerRunsOnce(t *testing.T) {
	c := qt.New(t)
	ident := newFakeIdentity()
	sc := New(ident, newFakeProfiles())

	c.Assert(sc.Start(context.Background()), qt.IsNil)
	c.Assert(sc.Start(context.Background()), qt.ErrorIs, ErrAlreadyStarted)

	sc.Stop()
	sc.Stop()
	c.Assert(ident.disposed, qt.Equals, 1)
	c.Assert(ident.listeners, qt.HasLen, 0)
}

func TestUpdateProfile(t *testing.T) {
	c := qt.New(t)
	ident := newFakeIdentity()
	ident.addSession("t1", "s1", "ana")
	profiles := newFakeProfiles(staffProfile())
	sc := newStarted(c, ident, profiles)
	ctx := context.Background()

	nome := "Ana Souza"
	_, err := sc.UpdateProfile(ctx, "", domain.ProfileUpdate{Nome: &nome})
	c.Assert(err, qt.ErrorIs, port.ErrNotAuthenticated)

	admin := domain.RoleAdministrador
	_, err = sc.UpdateProfile(ctx, "t1", domain.ProfileUpdate{Perfil: &admin})
	var verr *port.ValidationError
	c.Assert(errors.As(err, &verr), qt.IsTrue)
	c.Assert(verr.Fields["perfil"], qt.Equals, "Apenas administradores podem alterar o perfil")

	updated, err := sc.UpdateProfile(ctx, "t1", domain.ProfileUpdate{Nome: &nome})
	c.Assert(err, qt.IsNil)
	c.Assert(updated.Nome, qt.Equals, "Ana Souza")
}

func TestSignUp_ValidatesBeforeBackend(t *testing.T) {
	c := qt.New(t)
	ident := newFakeIdentity()
	sc := newStarted(c, ident, newFakeProfiles())

	_, err := sc.SignUp(context.Background(), domain.SessionState{}, domain.SignUpInput{Nome: "Ana"})
	var verr *port.ValidationError
	c.Assert(errors.As(err, &verr), qt.IsTrue)
	c.Assert(ident.signUps, qt.Equals, 0)

	p, err := sc.SignUp(context.Background(), domain.SessionState{}, domain.SignUpInput{
		Nome: "Ana", Email: "ana@example.com", Password: "segredo", ConfirmPassword: "segredo",
		Telefone: "11987654321", Perfil: "funcionario", Cargo: "Estoquista", Departamento: "Logística",
	})
	c.Assert(err, qt.IsNil)
	c.Assert(p.Perfil, qt.Equals, domain.RoleFuncionario)
	c.Assert(ident.signUps, qt.Equals, 1)
}

func TestSignUp_AdministratorNeedsAdminActor(t *testing.T) {
	c := qt.New(t)
	ident := newFakeIdentity()
	sc := newStarted(c, ident, newFakeProfiles())
	in := domain.SignUpInput{
		Nome: "Bia", Email: "bia@example.com", Password: "segredo", ConfirmPassword: "segredo",
		Telefone: "11987654321", Perfil: "administrador",
	}

	staff := domain.SessionState{User: &domain.Session{ID: "s", UserID: "ana"}, Profile: staffProfile()}
	for _, actor := range []domain.SessionState{{}, staff} {
		_, err := sc.SignUp(context.Background(), actor, in)
		var verr *port.ValidationError
		c.Assert(errors.As(err, &verr), qt.IsTrue)
		c.Assert(verr.Fields["perfil"], qt.Equals, "Apenas administradores podem cadastrar administradores")
	}
	c.Assert(ident.signUps, qt.Equals, 0)

	admin := domain.SessionState{User: &domain.Session{ID: "s", UserID: "admin"}, Profile: adminProfile()}
	p, err := sc.SignUp(context.Background(), admin, in)
	c.Assert(err, qt.IsNil)
	c.Assert(p.Perfil, qt.Equals, domain.RoleAdministrador)
	c.Assert(ident.signUps, qt.Equals, 1)
}

func TestResolve_ForgetsSessionGoneFromBackend(t *testing.T) {
	c := qt.New(t)
	ident := newFakeIdentity()
	sc := newStarted(c, ident, newFakeProfiles(staffProfile()))
	ctx := context.Background()

	for i := range 50 {
		tok := fmt.Sprintf("tok-%d", i)
		ident.addSession(tok, fmt.Sprintf("sid-%d", i), "ana")
		c.Assert(sc.Resolve(ctx, tok).Authenticated(), qt.IsTrue)
	}
	c.Assert(sc.Len(), qt.Equals, 50)

	// Sessions vanish from the backend without an event reaching the context.
	for i := range 50 {
		tok := fmt.Sprintf("tok-%d", i)
		ident.mu.Lock()
		delete(ident.sessions, tok)
		ident.mu.Unlock()
		c.Assert(sc.Resolve(ctx, tok).Authenticated(), qt.IsFalse)
	}
	c.Assert(sc.Len(), qt.Equals, 0)
	c.Assert(sc.byToken, qt.HasLen, 0)
}

func TestSweep_DropsExpiredSessions(t *testing.T) {
	c := qt.New(t)
	ident := newFakeIdentity()
	sc := newStarted(c, ident, newFakeProfiles(staffProfile()))
	ctx := context.Background()

	ident.addSession("tok-1", "sid-1", "ana")
	ident.addSession("tok-2", "sid-2", "ana")
	c.Assert(sc.Resolve(ctx, "tok-1").Authenticated(), qt.IsTrue)
	c.Assert(sc.Resolve(ctx, "tok-2").Authenticated(), qt.IsTrue)

	// Both sessions carry a one-hour expiry.
	c.Assert(sc.sweep(), qt.Equals, 0)
	sc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	c.Assert(sc.sweep(), qt.Equals, 2)
	c.Assert(sc.Len(), qt.Equals, 0)
	c.Assert(sc.byToken, qt.HasLen, 0)
}
