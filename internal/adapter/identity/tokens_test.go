package identity

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/arturoeanton/controle-estoque/internal/domain"
	"github.com/arturoeanton/controle-estoque/internal/port"
)

func testSessionFor(userID string, ttl time.Duration) *domain.Session {
	now := time.Now()
	return &domain.Session{ID: "sid-1", UserID: userID, Email: "ana@example.com", CreatedAt: now, ExpiresAt: now.Add(ttl)}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	c := qt.New(t)
	m, err := NewTokenManager("s3cret", "controle-estoque")
	c.Assert(err, qt.IsNil)

	token, err := m.Issue(testSessionFor("u-1", time.Hour))
	c.Assert(err, qt.IsNil)

	claims, err := m.Parse(token)
	c.Assert(err, qt.IsNil)
	c.Assert(claims.UID, qt.Equals, "u-1")
	c.Assert(claims.SID, qt.Equals, "sid-1")
	c.Assert(claims.Email, qt.Equals, "ana@example.com")
	c.Assert(claims.Issuer, qt.Equals, "controle-estoque")
}

func TestTokenManager_Rejects(t *testing.T) {
	c := qt.New(t)
	m, err := NewTokenManager("s3cret", "controle-estoque")
	c.Assert(err, qt.IsNil)
	token, err := m.Issue(testSessionFor("u-1", time.Hour))
	c.Assert(err, qt.IsNil)

	other, err := NewTokenManager("other", "controle-estoque")
	c.Assert(err, qt.IsNil)
	_, err = other.Parse(token)
	c.Assert(err, qt.ErrorIs, port.ErrTokenInvalid)

	wrongIssuer, err := NewTokenManager("s3cret", "someone-else")
	c.Assert(err, qt.IsNil)
	_, err = wrongIssuer.Parse(token)
	c.Assert(err, qt.ErrorIs, port.ErrTokenInvalid)

	_, err = m.Parse("not.a.token")
	c.Assert(err, qt.ErrorIs, port.ErrTokenInvalid)
}

func TestTokenManager_Expired(t *testing.T) {
	c := qt.New(t)
	m, err := NewTokenManager("s3cret", "controle-estoque")
	c.Assert(err, qt.IsNil)
	token, err := m.Issue(testSessionFor("u-1", time.Minute))
	c.Assert(err, qt.IsNil)

	m.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = m.Parse(token)
	c.Assert(err, qt.ErrorIs, port.ErrTokenExpired)
}

func TestNewTokenManager_EmptySecret(t *testing.T) {
	c := qt.New(t)
	_, err := NewTokenManager("", "x")
	c.Assert(err, qt.ErrorMatches, "jwt secret is empty")
}
