package forms

import "account-forms/pkg/models"

const (
	loginFailedMessage    = "Неверный email или пароль"
	registerFailedMessage = "Ошибка при регистрации"
)

// Errors maps a field name (or FieldAPI) to its message. A missing key
// means the field is valid.
type Errors map[string]string

// Empty reports whether no field has an error
func (e Errors) Empty() bool { return len(e) == 0 }

// Has reports whether field has an error
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Get returns the message for field or ""
func (e Errors) Get(field string) string { return e[field] }

// LoginForm holds the sign-in inputs
type LoginForm struct {
	Email    string `form:"email" json:"email" validate:"required,looseemail"`
	Password string `form:"password" json:"password" validate:"required,utf16min=6"`
}

// LoginFields lists the inputs of the login form in render order
var LoginFields = []string{FieldEmail, FieldPassword}

// WithField returns a copy of f with one field replaced
func (f LoginForm) WithField(field, value string) LoginForm {
	switch field {
	case FieldEmail:
		f.Email = value
	case FieldPassword:
		f.Password = value
	}
	return f
}

// Validate runs the email and password rules
func (f LoginForm) Validate() Errors { return validateStruct(f) }

// FailureMessage hides the cause: every failed login reads the same.
func (f LoginForm) FailureMessage(error) string { return loginFailedMessage }

// Credentials converts the form into the authenticator input
func (f LoginForm) Credentials() models.Credentials {
	return models.Credentials{Email: f.Email, Password: f.Password}
}

// RegisterForm holds the account registration inputs. The consent checkbox
// is rendered but never read.
type RegisterForm struct {
	Name            string `form:"name" json:"name" validate:"notblank,trimmin=2"`
	Email           string `form:"email" json:"email" validate:"required,looseemail"`
	Password        string `form:"password" json:"password" validate:"required,utf16min=6"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword" validate:"eqfield=Password"`
}

// RegisterFields lists the inputs of the register form in render order
var RegisterFields = []string{FieldName, FieldEmail, FieldPassword, FieldConfirmPassword}

// WithField returns a copy of f with one field replaced
func (f RegisterForm) WithField(field, value string) RegisterForm {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldPassword:
		f.Password = value
	case FieldConfirmPassword:
		f.ConfirmPassword = value
	}
	return f
}

// Validate runs the name, email, password and confirmation rules
func (f RegisterForm) Validate() Errors { return validateStruct(f) }

// FailureMessage uses the error text when there is one.
func (f RegisterForm) FailureMessage(err error) string {
	if err == nil || err.Error() == "" {
		return registerFailedMessage
	}
	return err.Error()
}

// Profile converts the form into the authenticator input
func (f RegisterForm) Profile() models.Profile {
	return models.Profile{Name: f.Name, Email: f.Email, Password: f.Password}
}
