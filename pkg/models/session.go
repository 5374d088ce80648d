package models

import "time"

// Credentials is what the login view hands to the authenticator
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Profile is what the register view hands to the authenticator
type Profile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session represents a signed-in user as returned by the authenticator
type Session struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Name      string    `json:"name,omitempty"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SubmitResponse represents a successful login or register API response
type SubmitResponse struct {
	Token    string `json:"token"`
	Redirect string `json:"redirect"`
	Message  string `json:"message"`
}

// ErrorsResponse carries field and api errors back to API clients
type ErrorsResponse struct {
	Errors map[string]string `json:"errors"`
}
