// Package page holds the headless page controllers behind each CRUD screen.
// A controller owns one page instance's list, its loading flag and its
// transient messages.
package page

import (
	"context"
	"errors"
	"log/slog"

	"github.com/arturoeanton/controle-estoque/internal/port"
)

// Service is the data service a list page talks to.
type Service[T, In any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, in In) (*T, error)
	Update(ctx context.Context, id string, in In) (*T, error)
	Delete(ctx context.Context, id string) error
}

// Messages are the texts a page shows after each operation.
type Messages struct {
	Created      string
	Updated      string
	Deleted      string
	LoadFailed   string
	SaveFailed   string
	DeleteFailed string
}

// Options configure a ListController.
type Options[T any] struct {
	// SkipFetch disables the initial load, for test environments.
	SkipFetch bool
	IDOf      func(T) string
	NameOf    func(T) string
	Messages  Messages
}

// View is the JSON shape of a list page.
type View[T any] struct {
	Items   []T    `json:"items"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ConfirmationError asks the user to confirm a destructive action.
type ConfirmationError struct {
	Prompt string
}

func (e *ConfirmationError) Error() string { return e.Prompt }

func (e *ConfirmationError) Unwrap() error { return port.ErrConfirmationRequired }

// ListController drives a list page: initial fetch, create, edit and
// confirmed delete. Results that arrive after the request context is done are
// discarded.
type ListController[T, In any] struct {
	svc  Service[T, In]
	opts Options[T]

	items   []T
	loading bool
	err     string
	message string
}

// NewListController creates a controller for one page instance.
func NewListController[T, In any](svc Service[T, In], opts Options[T]) *ListController[T, In] {
	return &ListController[T, In]{svc: svc, opts: opts}
}

// Mount performs the initial fetch. A failed fetch sets the page error and is
// not retried.
func (p *ListController[T, In]) Mount(ctx context.Context) error {
	if p.opts.SkipFetch {
		return nil
	}
	p.loading = true
	items, err := p.svc.List(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	p.loading = false
	if err != nil {
		p.err = port.UserMessage(err, p.opts.Messages.LoadFailed)
		slog.Error("page fetch failed", "error", err)
		return err
	}
	p.items = items
	return nil
}

// Create stores in and prepends the record returned by the service.
func (p *ListController[T, In]) Create(ctx context.Context, in In) (*T, error) {
	created, err := p.svc.Create(ctx, in)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		p.fail(err, p.opts.Messages.SaveFailed)
		return nil, err
	}
	p.items = append([]T{*created}, p.items...)
	p.succeed(p.opts.Messages.Created)
	return created, nil
}

// Update saves in and replaces the matching item with the stored record.
func (p *ListController[T, In]) Update(ctx context.Context, id string, in In) (*T, error) {
	updated, err := p.svc.Update(ctx, id, in)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		p.fail(err, p.opts.Messages.SaveFailed)
		return nil, err
	}
	for i := range p.items {
		if p.opts.IDOf(p.items[i]) == id {
			p.items[i] = *updated
			break
		}
	}
	p.succeed(p.opts.Messages.Updated)
	return updated, nil
}

// Delete removes the item with id once confirmed is true. Without
// confirmation it returns a *ConfirmationError carrying the prompt. On failure
// the list is left untouched.
func (p *ListController[T, In]) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return &ConfirmationError{Prompt: "Confirma excluir " + p.nameOf(id) + "?"}
	}

	err := p.svc.Delete(ctx, id)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		p.fail(err, p.opts.Messages.DeleteFailed)
		return err
	}

	kept := p.items[:0:0]
	for _, it := range p.items {
		if p.opts.IDOf(it) != id {
			kept = append(kept, it)
		}
	}
	p.items = kept
	p.succeed(p.opts.Messages.Deleted)
	return nil
}

// Seed replaces the list with items loaded elsewhere, such as the single
// record a delete prompt names.
func (p *ListController[T, In]) Seed(items ...T) {
	p.items = items
}

// Items returns the current list.
func (p *ListController[T, In]) Items() []T { return p.items }

// View snapshots the page state.
func (p *ListController[T, In]) View() View[T] {
	items := p.items
	if items == nil {
		items = []T{}
	}
	return View[T]{Items: items, Loading: p.loading, Error: p.err, Message: p.message}
}

// SetMessage shows a message carried over from a previous request.
func (p *ListController[T, In]) SetMessage(msg string) {
	if msg != "" {
		p.message = msg
	}
}

// Message returns the current success message.
func (p *ListController[T, In]) Message() string { return p.message }

// Error returns the current error message.
func (p *ListController[T, In]) Error() string { return p.err }

func (p *ListController[T, In]) nameOf(id string) string {
	if p.opts.NameOf != nil {
		for _, it := range p.items {
			if p.opts.IDOf(it) == id {
				return p.opts.NameOf(it)
			}
		}
	}
	return id
}

func (p *ListController[T, In]) fail(err error, fallback string) {
	p.message = ""
	p.err = port.UserMessage(err, fallback)
	var verr *port.ValidationError
	if !errors.As(err, &verr) {
		slog.Error("page operation failed", "error", err)
	}
}

func (p *ListController[T, In]) succeed(msg string) {
	p.err = ""
	p.message = msg
}
