package identity

import (
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

var testParams = Argon2Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func newTestHasher(c *qt.C) *Argon2Hasher {
	h, err := NewArgon2Hasher(testParams)
	c.Assert(err, qt.IsNil)
	return h
}

func TestArgon2Hasher_HashAndVerify(t *testing.T) {
	c := qt.New(t)
	h := newTestHasher(c)

	encoded, err := h.Hash("segredo123")
	c.Assert(err, qt.IsNil)
	c.Assert(strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$"), qt.IsTrue, qt.Commentf("got %s", encoded))

	ok, err := h.Verify("segredo123", encoded)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)

	ok, err = h.Verify("outra-senha", encoded)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
}

func TestArgon2Hasher_SaltIsRandom(t *testing.T) {
	c := qt.New(t)
	h := newTestHasher(c)

	a, err := h.Hash("segredo123")
	c.Assert(err, qt.IsNil)
	b, err := h.Hash("segredo123")
	c.Assert(err, qt.IsNil)
	c.Assert(a, qt.Not(qt.Equals), b)
}

func TestArgon2Hasher_VerifyRejectsMalformed(t *testing.T) {
	c := qt.New(t)
	h := newTestHasher(c)

	for _, encoded := range []string{
		"",
		"plain",
		"$bcrypt$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$***$aGFzaA",
	} {
		_, err := h.Verify("x", encoded)
		c.Assert(err, qt.Not(qt.IsNil), qt.Commentf("encoded %q", encoded))
	}
}

func TestNewArgon2Hasher_RejectsWeakParams(t *testing.T) {
	c := qt.New(t)
	_, err := NewArgon2Hasher(Argon2Params{Memory: 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	c.Assert(err, qt.ErrorMatches, "argon2 parameters below minimum")
}
