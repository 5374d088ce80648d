package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"account-forms/pkg/config"
	"account-forms/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned for a malformed, foreign or expired session token
	ErrInvalidToken = errors.New("invalid or expired token")
)

// publicPaths are served without a session
var publicPaths = map[string]bool{
	"/":                true,
	"/login":           true,
	"/register":        true,
	"/forgot-password": true,
	"/api/login":       true,
	"/api/register":    true,
}

// Gin context keys set for signed-in requests
const (
	SubjectKey = "subject"
	NameKey    = "name"
)

// Claims represents JWT claims
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Auth stands in for a remote authentication service: after a fixed delay
// it accepts every login and registration and issues a signed session token.
type Auth struct {
	config *config.AuthConfig
	delay  time.Duration
	now    func() time.Time
}

// New creates a new Auth instance
func New(cfg *config.AuthConfig, delay time.Duration) *Auth {
	return &Auth{config: cfg, delay: delay, now: time.Now}
}

// Authenticate signs the user in
func (a *Auth) Authenticate(ctx context.Context, creds models.Credentials) (models.Session, error) {
	if err := a.wait(ctx); err != nil {
		return models.Session{}, err
	}
	return a.session(creds.Email, "")
}

// Register creates the account and signs the user in
func (a *Auth) Register(ctx context.Context, profile models.Profile) (models.Session, error) {
	if err := a.wait(ctx); err != nil {
		return models.Session{}, err
	}
	return a.session(profile.Email, strings.TrimSpace(profile.Name))
}

// wait blocks for the placeholder delay or until ctx is done
func (a *Auth) wait(ctx context.Context) error {
	if a.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(a.delay)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Auth) session(email, name string) (models.Session, error) {
	id := uuid.New().String()
	expires := a.now().Add(a.config.TTL())

	token, err := a.GenerateToken(id, email, name, expires)
	if err != nil {
		return models.Session{}, err
	}
	return models.Session{
		ID:        id,
		Subject:   email,
		Name:      name,
		Token:     token,
		ExpiresAt: expires,
	}, nil
}

// GenerateToken generates a JWT token for the user
func (a *Auth) GenerateToken(id, email, name string, expires time.Time) (string, error) {
	claims := &Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(a.now()),
			Subject:   email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.config.JWTSecret))
}

// ValidateToken validates a JWT token and returns the claims
func (a *Auth) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(a.config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))

	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// CookieName is the name of the session cookie
func (a *Auth) CookieName() string { return a.config.CookieName }

// SetCookie stores the session token in the browser
func (a *Auth) SetCookie(c *gin.Context, session models.Session) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(a.config.CookieName, session.Token, a.config.SessionTTL, "/", "", false, true)
}

// ClearCookie removes the session cookie
func (a *Auth) ClearCookie(c *gin.Context) {
	c.SetCookie(a.config.CookieName, "", -1, "/", "", false, true)
}

// Middleware returns a Gin middleware for authentication
func (a *Auth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip form and static routes
		if publicPaths[c.Request.URL.Path] || strings.HasPrefix(c.Request.URL.Path, "/static/") {
			c.Next()
			return
		}

		// Check for token in cookie first
		tokenString, err := c.Cookie(a.config.CookieName)
		if err != nil {
			// Try Authorization header
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if tokenString == "" {
			a.reject(c, "unauthorized")
			return
		}

		claims, err := a.ValidateToken(tokenString)
		if err != nil {
			a.reject(c, "invalid token")
			return
		}

		c.Set(SubjectKey, claims.Email)
		c.Set(NameKey, claims.Name)
		c.Next()
	}
}

func (a *Auth) reject(c *gin.Context, reason string) {
	// Redirect to login for page requests
	if !strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
		return
	}
	c.JSON(http.StatusUnauthorized, gin.H{"error": reason})
	c.Abort()
}
