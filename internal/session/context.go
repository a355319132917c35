// Package session holds the application-scoped auth context: who is signed in
// on each live session and which profile they carry.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/arturoeanton/controle-estoque/internal/domain"
	"github.com/arturoeanton/controle-estoque/internal/port"
	"github.com/arturoeanton/controle-estoque/internal/service"
)

const (
	profileLoadTimeout = 5 * time.Second
	sweepInterval      = time.Minute
)

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("session context already started")

type entry struct {
	session *domain.Session
	profile *domain.Profile
	loading bool
	gen     uint64
	tokens  map[string]struct{}
}

func (e *entry) state() domain.SessionState {
	return domain.SessionState{User: e.session, Profile: e.profile, Loading: e.loading}
}

// Context tracks every live session seen by the server. It is created once in
// main, started with the server and stopped on shutdown; the gate and the
// handlers share the same instance.
type Context struct {
	identity port.IdentityProvider
	profiles port.ProfileRepository

	mu      sync.Mutex
	entries map[string]*entry
	byToken map[string]string // token -> session ID
	now     func() time.Time

	baseCtx  context.Context
	cancel   context.CancelFunc
	dispose  func()
	started  bool
	stopOnce sync.Once
}

// New creates a stopped Context.
func New(identity port.IdentityProvider, profiles port.ProfileRepository) *Context {
	return &Context{
		identity: identity,
		profiles: profiles,
		entries:  make(map[string]*entry),
		byToken:  make(map[string]string),
		now:      time.Now,
	}
}

// Start subscribes to the auth-state-change stream and starts sweeping
// expired sessions. Nothing is loaded eagerly; sessions are resolved on first
// use.
func (c *Context) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return ErrAlreadyStarted
	}
	c.started = true
	c.baseCtx, c.cancel = context.WithCancel(ctx)
	c.dispose = c.identity.Subscribe(c.handleEvent)
	go c.sweepLoop(c.baseCtx, sweepInterval)
	slog.Info("session context started")
	return nil
}

func (c *Context) sweepLoop(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.sweep(); n > 0 {
				slog.Debug("expired sessions swept", "count", n)
			}
		}
	}
}

// sweep forgets every session past its expiry and returns how many went.
func (c *Context) sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for id, e := range c.entries {
		if e.session.Expired(now) {
			c.dropLocked(id)
			n++
		}
	}
	return n
}

// Stop detaches from the auth stream and abandons in-flight profile loads.
// Only the first call has any effect.
func (c *Context) Stop() {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		dispose, cancel := c.dispose, c.cancel
		c.mu.Unlock()
		if dispose != nil {
			dispose()
		}
		if cancel != nil {
			cancel()
		}
		slog.Info("session context stopped")
	})
}

// Resolve returns the state of the session behind token. An empty, invalid or
// expired token yields the unauthenticated state. The first caller for a
// session loads its profile; callers arriving while that load runs observe
// Loading=true.
func (c *Context) Resolve(ctx context.Context, token string) domain.SessionState {
	if token == "" {
		return domain.SessionState{}
	}
	sess, err := c.identity.GetSession(ctx, token)
	if err != nil {
		if isTokenError(err) {
			// Expired or revoked without an event reaching us.
			c.forgetToken(token)
		} else {
			slog.Warn("session lookup failed", "error", err)
		}
		return domain.SessionState{}
	}

	c.mu.Lock()
	e, ok := c.entries[sess.ID]
	if ok {
		e.tokens[token] = struct{}{}
	}
	c.byToken[token] = sess.ID
	switch {
	case !ok:
		e = &entry{session: sess, tokens: map[string]struct{}{token: {}}}
		c.entries[sess.ID] = e
	case e.loading || e.profile != nil:
		e.session = sess
		st := e.state()
		c.mu.Unlock()
		return st
	}
	// New session, or a previous load came back empty: load now.
	e.gen++
	e.loading = true
	gen := e.gen
	c.mu.Unlock()

	c.loadProfile(ctx, sess.ID, sess.UserID, gen)

	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.entries[sess.ID]; ok {
		return cur.state()
	}
	// Signed out while loading.
	return domain.SessionState{}
}

// SignIn verifies credentials and resolves the new session's profile.
func (c *Context) SignIn(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	res, err := c.identity.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[res.Session.ID] = &entry{
		session: res.Session,
		loading: true,
		gen:     1,
		tokens:  map[string]struct{}{res.AccessToken: {}},
	}
	c.byToken[res.AccessToken] = res.Session.ID
	c.mu.Unlock()

	c.loadProfile(ctx, res.Session.ID, res.Session.UserID, 1)

	c.mu.Lock()
	if e, ok := c.entries[res.Session.ID]; ok {
		res.Profile = e.profile
	}
	c.mu.Unlock()

	slog.Info("user signed in", "user_id", res.Session.UserID, "session_id", res.Session.ID)
	return res, nil
}

// SignUp validates the registration form and creates the account. It does not
// sign the user in. Only an administrator (actor) may register another
// administrator; the first one is promoted from the command line.
func (c *Context) SignUp(ctx context.Context, actor domain.SessionState, in domain.SignUpInput) (*domain.Profile, error) {
	if err := service.ValidateSignUp(&in); err != nil {
		return nil, err
	}
	if domain.Role(in.Perfil) == domain.RoleAdministrador && !actor.IsAdmin() {
		v := port.NewValidationError()
		v.Add("perfil", "Apenas administradores podem cadastrar administradores")
		return nil, v
	}
	p, err := c.identity.SignUp(ctx, in)
	if err != nil {
		return nil, err
	}
	slog.Info("user signed up", "user_id", p.ID, "perfil", p.Perfil)
	return p, nil
}

// SignOut closes the session behind token and forgets it.
func (c *Context) SignOut(ctx context.Context, token string) error {
	if sess, err := c.identity.GetSession(ctx, token); err == nil {
		c.forget(sess.ID)
	} else {
		c.forgetToken(token)
	}
	return c.identity.SignOut(ctx, token)
}

// UpdateProfile applies a partial update to the caller's own profile. Only
// administrators may change the perfil field.
func (c *Context) UpdateProfile(ctx context.Context, token string, u domain.ProfileUpdate) (*domain.Profile, error) {
	st := c.Resolve(ctx, token)
	if !st.Authenticated() {
		return nil, port.NewAuthError(port.ErrNotAuthenticated)
	}
	if st.Profile == nil {
		return nil, port.NewRemoteError("update profile", "Perfil ainda não carregado. Tente novamente.", port.ErrNotFound)
	}
	if u.Perfil != nil && *u.Perfil != st.Profile.Perfil && !st.IsAdmin() {
		v := port.NewValidationError()
		v.Add("perfil", "Apenas administradores podem alterar o perfil")
		return nil, v
	}
	if err := service.ValidateProfileUpdate(&u, st.Profile.Perfil); err != nil {
		return nil, err
	}

	updated, err := c.profiles.UpdateProfile(ctx, st.User.UserID, u)
	if err != nil {
		return nil, port.NewRemoteError("update profile", "Erro ao atualizar perfil.", err)
	}

	c.mu.Lock()
	if e, ok := c.entries[st.User.ID]; ok {
		e.profile = updated
	}
	c.mu.Unlock()

	c.identity.NotifyUserUpdated(updated.ID)
	return updated, nil
}

// Len reports how many sessions are tracked.
func (c *Context) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Context) handleEvent(ev domain.AuthEvent) {
	switch ev.Type {
	case domain.AuthEventSignedOut:
		c.forget(ev.SessionID)
	case domain.AuthEventUserDeleted:
		c.forgetUser(ev.UserID)
	case domain.AuthEventSignedIn:
		c.reloadUser(ev.UserID, ev.SessionID)
	case domain.AuthEventUserUpdated:
		c.reloadUser(ev.UserID, "")
	}
}

// reloadUser moves every session of userID except skip back to loading and
// re-resolves its profile in the background.
func (c *Context) reloadUser(userID, skip string) {
	type job struct {
		sessionID string
		gen       uint64
	}
	var jobs []job

	c.mu.Lock()
	base := c.baseCtx
	for id, e := range c.entries {
		if e.session.UserID != userID || id == skip {
			continue
		}
		e.gen++
		e.loading = true
		jobs = append(jobs, job{sessionID: id, gen: e.gen})
	}
	c.mu.Unlock()

	if base == nil {
		base = context.Background()
	}
	for _, j := range jobs {
		go func() {
			ctx, cancel := context.WithTimeout(base, profileLoadTimeout)
			defer cancel()
			c.loadProfile(ctx, j.sessionID, userID, j.gen)
		}()
	}
}

// loadProfile fetches the profile and stores it unless the entry was removed
// or a newer load started in the meantime. A failed load leaves the profile
// nil, which every role check treats as non-admin.
func (c *Context) loadProfile(ctx context.Context, sessionID, userID string, gen uint64) {
	profile, err := c.profiles.GetProfile(ctx, userID)
	if err != nil {
		slog.Error("failed to load profile", "user_id", userID, "error", err)
		profile = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[sessionID]
	if !ok || e.gen != gen {
		return
	}
	if ctx.Err() != nil && profile == nil {
		// Abandoned load: keep whatever was there and let the next resolve retry.
		e.loading = false
		return
	}
	e.profile = profile
	e.loading = false
}

func (c *Context) forget(sessionID string) {
	c.mu.Lock()
	c.dropLocked(sessionID)
	c.mu.Unlock()
}

func (c *Context) forgetToken(token string) {
	c.mu.Lock()
	if id, ok := c.byToken[token]; ok {
		c.dropLocked(id)
	}
	c.mu.Unlock()
}

func (c *Context) forgetUser(userID string) {
	c.mu.Lock()
	for id, e := range c.entries {
		if e.session.UserID == userID {
			c.dropLocked(id)
		}
	}
	c.mu.Unlock()
}

// dropLocked removes a session and its token index. c.mu must be held.
func (c *Context) dropLocked(sessionID string) {
	if e, ok := c.entries[sessionID]; ok {
		for t := range e.tokens {
			delete(c.byToken, t)
		}
		delete(c.entries, sessionID)
	}
}

func isTokenError(err error) bool {
	return errors.Is(err, port.ErrTokenExpired) ||
		errors.Is(err, port.ErrTokenInvalid) ||
		errors.Is(err, port.ErrSessionNotFound)
}
