package service

import (
	"errors"

	"github.com/arturoeanton/controle-estoque/internal/port"
)

// remote wraps a backend failure for the page layer. Errors that already
// carry a user-facing message pass through; anything else becomes a
// RemoteError showing fallback.
func remote(op, fallback string, err error) error {
	if err == nil {
		return nil
	}
	var (
		verr   *port.ValidationError
		remErr *port.RemoteError
		auth   *port.AuthError
	)
	if errors.As(err, &verr) || errors.As(err, &remErr) || errors.As(err, &auth) {
		return err
	}
	return port.NewRemoteError(op, fallback, err)
}
