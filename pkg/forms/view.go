package forms

import (
	"context"
	"errors"
	"sync"

	"account-forms/pkg/models"
)

// ErrSubmitInFlight is returned by Submit while an earlier Submit on the
// same view is still waiting for the authenticator.
var ErrSubmitInFlight = errors.New("forms: submission already in flight")

// Authenticator is the remote side of both views
type Authenticator interface {
	Authenticate(ctx context.Context, creds models.Credentials) (models.Session, error)
	Register(ctx context.Context, profile models.Profile) (models.Session, error)
}

type submitFunc[F any] func(ctx context.Context, form F) (models.Session, error)

// View is one instance of a form screen. It is safe for concurrent use.
type View[F Form[F]] struct {
	mu       sync.Mutex
	state    State[F]
	submit   submitFunc[F]
	redirect string
}

// NewLoginView returns a sign-in view starting from form
func NewLoginView(a Authenticator, form LoginForm, redirect string) *View[LoginForm] {
	return newView(form, redirect, func(ctx context.Context, f LoginForm) (models.Session, error) {
		return a.Authenticate(ctx, f.Credentials())
	})
}

// NewRegisterView returns a registration view starting from form
func NewRegisterView(a Authenticator, form RegisterForm, redirect string) *View[RegisterForm] {
	return newView(form, redirect, func(ctx context.Context, f RegisterForm) (models.Session, error) {
		return a.Register(ctx, f.Profile())
	})
}

func newView[F Form[F]](form F, redirect string, submit submitFunc[F]) *View[F] {
	return &View[F]{
		state:    State[F]{Form: form, Errors: Errors{}},
		submit:   submit,
		redirect: redirect,
	}
}

// State returns the current state
func (v *View[F]) State() State[F] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Change merges a single field update into the form
func (v *View[F]) Change(field, value string) {
	v.dispatch(FieldChanged{Field: field, Value: value})
}

func (v *View[F]) dispatch(ev Event) State[F] {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state, _ = Reduce(v.state, ev)
	return v.state
}

// Submit validates the form and, when it is valid, calls the authenticator.
// Loading is false again by the time Submit returns. If ctx ends first the
// view goes back to Idle without an api error and ctx.Err() is returned.
func (v *View[F]) Submit(ctx context.Context) (State[F], error) {
	v.mu.Lock()
	if v.state.Phase == Submitting {
		st := v.state
		v.mu.Unlock()
		return st, ErrSubmitInFlight
	}
	v.state, _ = Reduce(v.state, SubmitRequested{})
	st := v.state
	v.mu.Unlock()

	if st.Phase != Submitting {
		return st, nil
	}

	session, err := v.submit(ctx, st.Form)

	switch {
	case ctx.Err() != nil:
		return v.dispatch(SubmitCancelled{}), ctx.Err()
	case err != nil:
		return v.dispatch(SubmitFailed{Err: err}), nil
	default:
		return v.dispatch(SubmitSucceeded{Session: session, Redirect: v.redirect}), nil
	}
}
