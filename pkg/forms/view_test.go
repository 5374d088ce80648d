package forms

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"account-forms/pkg/models"
)

// fakeAuth answers immediately with session/err, or blocks on gate when set.
type fakeAuth struct {
	mu       sync.Mutex
	session  models.Session
	err      error
	gate     chan struct{}
	entered  chan struct{}
	calls    int
	lastCred models.Credentials
	lastProf models.Profile
}

func (f *fakeAuth) wait(ctx context.Context) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate == nil {
		return nil
	}
	select {
	case <-f.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeAuth) Authenticate(ctx context.Context, creds models.Credentials) (models.Session, error) {
	f.lastCred = creds
	if err := f.wait(ctx); err != nil {
		return models.Session{}, err
	}
	return f.session, f.err
}

func (f *fakeAuth) Register(ctx context.Context, profile models.Profile) (models.Session, error) {
	f.lastProf = profile
	if err := f.wait(ctx); err != nil {
		return models.Session{}, err
	}
	return f.session, f.err
}

func TestReduceFieldChanged(t *testing.T) {
	s := State[RegisterForm]{Errors: Errors{FieldName: "Имя обязательно"}}
	next, errs := Reduce(s, FieldChanged{Field: FieldName, Value: "Иван"})

	require.Equal(t, "Иван", next.Form.Name)
	require.Empty(t, s.Form.Name)
	require.Equal(t, s.Errors, errs, "errors persist until the next submit")
}

func TestReduceSubmitInvalid(t *testing.T) {
	s := State[LoginForm]{Errors: Errors{FieldAPI: "old"}}
	next, errs := Reduce(s, SubmitRequested{})

	require.Equal(t, Idle, next.Phase)
	require.False(t, next.Loading)
	require.False(t, errs.Has(FieldAPI), "errors are rebuilt from scratch")
	require.True(t, errs.Has(FieldEmail))
	require.Equal(t, "old", s.Errors.Get(FieldAPI), "input state is untouched")
}

func TestReduceSubmitLifecycle(t *testing.T) {
	s := State[LoginForm]{Form: LoginForm{Email: "a@b.com", Password: "secret1"}}

	s, errs := Reduce(s, SubmitRequested{})
	require.True(t, errs.Empty())
	require.Equal(t, Submitting, s.Phase)
	require.True(t, s.Loading)

	again, _ := Reduce(s, SubmitRequested{})
	require.Equal(t, s, again, "submit is ignored while submitting")

	done, _ := Reduce(s, SubmitSucceeded{Session: models.Session{Subject: "a@b.com"}, Redirect: "/dashboard"})
	require.Equal(t, Navigated, done.Phase)
	require.False(t, done.Loading)
	require.Equal(t, "/dashboard", done.Redirect)
	require.Equal(t, "a@b.com", done.Session.Subject)

	failed, errs := Reduce(s, SubmitFailed{Err: errors.New("boom")})
	require.Equal(t, Idle, failed.Phase)
	require.False(t, failed.Loading)
	require.Equal(t, Errors{FieldAPI: "Неверный email или пароль"}, errs)

	cancelled, errs := Reduce(s, SubmitCancelled{})
	require.Equal(t, Idle, cancelled.Phase)
	require.False(t, cancelled.Loading)
	require.True(t, errs.Empty())
}

func TestReduceIgnoresOutcomeWhenNotSubmitting(t *testing.T) {
	s := State[LoginForm]{Errors: Errors{}}
	next, _ := Reduce(s, SubmitSucceeded{Redirect: "/dashboard"})
	require.Equal(t, s, next)

	next, _ = Reduce(s, SubmitFailed{Err: errors.New("x")})
	require.Equal(t, s, next)
}

func TestLoginViewSuccess(t *testing.T) {
	auth := &fakeAuth{session: models.Session{Subject: "a@b.com", Token: "tok"}}
	v := NewLoginView(auth, LoginForm{}, "/dashboard")
	v.Change(FieldEmail, "a@b.com")
	v.Change(FieldPassword, "secret1")

	st, err := v.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, Navigated, st.Phase)
	require.False(t, st.Loading)
	require.Equal(t, "/dashboard", st.Redirect)
	require.Equal(t, "tok", st.Session.Token)
	require.Equal(t, models.Credentials{Email: "a@b.com", Password: "secret1"}, auth.lastCred)
}

func TestLoginViewInvalidNeverCallsAuthenticator(t *testing.T) {
	auth := &fakeAuth{}
	v := NewLoginView(auth, LoginForm{}, "/dashboard")

	st, err := v.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, Idle, st.Phase)
	require.False(t, st.Loading)
	require.Empty(t, st.Redirect)
	require.Equal(t, Errors{
		FieldEmail:    "Email обязателен",
		FieldPassword: "Пароль обязателен",
	}, st.Errors)
	require.Zero(t, auth.calls)
}

func TestRegisterViewFailure(t *testing.T) {
	auth := &fakeAuth{err: errors.New("email already registered")}
	v := NewRegisterView(auth, RegisterForm{
		Name:            "Иван",
		Email:           "ivan@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}, "/dashboard")

	st, err := v.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, Idle, st.Phase)
	require.False(t, st.Loading)
	require.Equal(t, Errors{FieldAPI: "email already registered"}, st.Errors)
	require.Equal(t, models.Profile{Name: "Иван", Email: "ivan@example.com", Password: "secret1"}, auth.lastProf)

	auth.err = nil
	st, err = v.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, Navigated, st.Phase, "resubmitting recovers from an api error")
	require.True(t, st.Errors.Empty())
}

func TestViewLoadingDuringSubmit(t *testing.T) {
	auth := &fakeAuth{gate: make(chan struct{}), entered: make(chan struct{})}
	v := NewLoginView(auth, LoginForm{Email: "a@b.com", Password: "secret1"}, "/dashboard")

	done := make(chan State[LoginForm])
	go func() {
		st, _ := v.Submit(context.Background())
		done <- st
	}()

	<-auth.entered
	require.True(t, v.State().Loading)
	require.Equal(t, Submitting, v.State().Phase)

	_, err := v.Submit(context.Background())
	require.ErrorIs(t, err, ErrSubmitInFlight)

	close(auth.gate)
	st := <-done
	require.False(t, st.Loading)
	require.Equal(t, Navigated, st.Phase)
	require.Equal(t, 1, auth.calls)
}

func TestViewCancelledSubmit(t *testing.T) {
	auth := &fakeAuth{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	v := NewLoginView(auth, LoginForm{Email: "a@b.com", Password: "secret1"}, "/dashboard")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-auth.entered
		cancel()
	}()

	st, err := v.Submit(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, st.Loading)
	require.Equal(t, Idle, st.Phase)
	require.True(t, st.Errors.Empty(), "a torn down view gets no api error")
}

func TestViewDeadline(t *testing.T) {
	auth := &fakeAuth{gate: make(chan struct{})}
	v := NewRegisterView(auth, RegisterForm{
		Name: "Al", Email: "a@b.com", Password: "secret1", ConfirmPassword: "secret1",
	}, "/dashboard")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	st, err := v.Submit(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.False(t, v.State().Loading)
	require.Equal(t, Idle, st.Phase)
}

func TestPhaseString(t *testing.T) {
	require.Equal(t, "idle", Idle.String())
	require.Equal(t, "submitting", Submitting.String())
	require.Equal(t, "navigated", Navigated.String())
	require.Equal(t, "unknown", Phase(42).String())
}
