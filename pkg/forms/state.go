package forms

import "account-forms/pkg/models"

// Phase is the position of a view in its submit cycle
type Phase int

const (
	Idle Phase = iota
	Submitting
	Navigated
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Navigated:
		return "navigated"
	}
	return "unknown"
}

// Form is implemented by LoginForm and RegisterForm.
type Form[F any] interface {
	WithField(field, value string) F
	Validate() Errors
	FailureMessage(err error) string
}

// State is the whole of a view. Reduce never modifies the State it is given.
type State[F Form[F]] struct {
	Form     F
	Errors   Errors
	Loading  bool
	Phase    Phase
	Redirect string
	Session  models.Session
}

// Event is something that happened to a view
type Event interface {
	event()
}

// FieldChanged is an input edit
type FieldChanged struct {
	Field string
	Value string
}

// SubmitRequested is a press of the submit control
type SubmitRequested struct{}

// SubmitSucceeded is the authenticator accepting the form
type SubmitSucceeded struct {
	Session  models.Session
	Redirect string
}

// SubmitFailed is the authenticator rejecting the form
type SubmitFailed struct {
	Err error
}

// SubmitCancelled is the view going away while the authenticator ran
type SubmitCancelled struct{}

func (FieldChanged) event()    {}
func (SubmitRequested) event() {}
func (SubmitSucceeded) event() {}
func (SubmitFailed) event()    {}
func (SubmitCancelled) event() {}

// Reduce applies ev to s and returns the next state along with its errors.
func Reduce[F Form[F]](s State[F], ev Event) (State[F], Errors) {
	switch ev := ev.(type) {
	case FieldChanged:
		if s.Phase == Navigated {
			break
		}
		s.Form = s.Form.WithField(ev.Field, ev.Value)

	case SubmitRequested:
		if s.Phase != Idle {
			break
		}
		s.Errors = s.Form.Validate()
		if s.Errors.Empty() {
			s.Phase = Submitting
			s.Loading = true
		}

	case SubmitSucceeded:
		if s.Phase != Submitting {
			break
		}
		s.Loading = false
		s.Phase = Navigated
		s.Redirect = ev.Redirect
		s.Session = ev.Session

	case SubmitFailed:
		if s.Phase != Submitting {
			break
		}
		s.Loading = false
		s.Phase = Idle
		s.Errors = Errors{FieldAPI: s.Form.FailureMessage(ev.Err)}

	case SubmitCancelled:
		if s.Phase != Submitting {
			break
		}
		s.Loading = false
		s.Phase = Idle
	}
	return s, s.Errors
}
