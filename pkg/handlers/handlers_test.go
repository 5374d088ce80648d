package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"account-forms/pkg/auth"
	"account-forms/pkg/config"
	"account-forms/pkg/forms"
	"account-forms/pkg/models"
)

type failingAuth struct{ err error }

func (f failingAuth) Authenticate(context.Context, models.Credentials) (models.Session, error) {
	return models.Session{}, f.err
}

func (f failingAuth) Register(context.Context, models.Profile) (models.Session, error) {
	return models.Session{}, f.err
}

// newTestRouter uses the placeholder authenticator without its delay unless
// authenticator is given.
func newTestRouter(t *testing.T, authenticator forms.Authenticator) (*gin.Engine, *auth.Auth) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.DefaultConfig()
	cfg.Forms.SubmitDelayMs = 0
	a := auth.New(&cfg.Auth, cfg.Forms.SubmitDelay())
	if authenticator == nil {
		authenticator = a
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(New(cfg, a, authenticator, logger), a), a
}

func postForm(r http.Handler, path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", name)
	return nil
}

func TestPublicPages(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	for _, path := range []string{"/", "/login", "/register"} {
		w := get(r, path)
		require.Equal(t, http.StatusOK, w.Code, path)
		require.Contains(t, w.Header().Get("Content-Type"), "text/html")
	}

	w := get(r, "/forgot-password")
	require.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestFormPagesDisableSubmitWhileSending(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	for _, path := range []string{"/login", "/register"} {
		body := get(r, path).Body.String()
		require.Contains(t, body, `onsubmit="return lockSubmit(this)"`, path)
		require.Contains(t, body, "button.disabled = true", path)
	}

	// a re-rendered page after a failed submit keeps the guard
	w := postForm(r, "/login", url.Values{"email": {""}, "password": {""}})
	require.Contains(t, w.Body.String(), `onsubmit="return lockSubmit(this)"`)
}

func TestLoginEmptyForm(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := postForm(r, "/login", url.Values{"email": {""}, "password": {""}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), "Email обязателен")
	require.Contains(t, w.Body.String(), "Пароль обязателен")
	require.Empty(t, w.Header().Get("Location"))
	require.Empty(t, w.Result().Cookies())
}

func TestLoginSuccessNavigatesToDashboard(t *testing.T) {
	r, a := newTestRouter(t, nil)

	w := postForm(r, "/login", url.Values{"email": {"a@b.com"}, "password": {"secret1"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/dashboard", w.Header().Get("Location"))

	cookie := sessionCookie(t, w, a.CookieName())
	require.True(t, cookie.HttpOnly)

	w = get(r, "/dashboard", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "a@b.com")
}

func TestLoginAPIError(t *testing.T) {
	r, _ := newTestRouter(t, failingAuth{err: errors.New("backend down")})

	w := postForm(r, "/login", url.Values{"email": {"a@b.com"}, "password": {"secret1"}})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Неверный email или пароль")
	require.NotContains(t, w.Body.String(), "backend down")
	require.Contains(t, w.Body.String(), `value="a@b.com"`)
}

func TestRegisterMismatch(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := postForm(r, "/register", url.Values{
		"name":            {"Иван"},
		"email":           {"ivan@example.com"},
		"password":        {"abcdef"},
		"confirmPassword": {"abcxyz"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), "Пароли не совпадают")
	require.NotContains(t, w.Body.String(), "Пароль обязателен")
}

func TestRegisterWhitespaceName(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := postForm(r, "/register", url.Values{
		"name":            {" "},
		"email":           {"ivan@example.com"},
		"password":        {"abcdef"},
		"confirmPassword": {"abcdef"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), "Имя обязательно")
}

func TestRegisterSuccessIgnoresConsent(t *testing.T) {
	r, a := newTestRouter(t, nil)

	w := postForm(r, "/register", url.Values{
		"name":            {"Иван"},
		"email":           {"ivan@example.com"},
		"password":        {"abcdef"},
		"confirmPassword": {"abcdef"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/dashboard", w.Header().Get("Location"))

	w = get(r, "/dashboard", sessionCookie(t, w, a.CookieName()))
	require.Contains(t, w.Body.String(), "Иван")
}

func TestRegisterAPIErrorMessage(t *testing.T) {
	form := url.Values{
		"name":            {"Иван"},
		"email":           {"ivan@example.com"},
		"password":        {"abcdef"},
		"confirmPassword": {"abcdef"},
	}

	r, _ := newTestRouter(t, failingAuth{err: errors.New("email already registered")})
	w := postForm(r, "/register", form)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "email already registered")

	r, _ = newTestRouter(t, failingAuth{err: errors.New("")})
	w = postForm(r, "/register", form)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Ошибка при регистрации")
}

func TestDashboardRequiresSession(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := get(r, "/dashboard")
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))
}

func TestLogoutClearsCookie(t *testing.T) {
	r, a := newTestRouter(t, nil)

	w := postForm(r, "/login", url.Values{"email": {"a@b.com"}, "password": {"secret1"}})
	cookie := sessionCookie(t, w, a.CookieName())

	w = get(r, "/logout", cookie)
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))
	require.Negative(t, sessionCookie(t, w, a.CookieName()).MaxAge)
}

func TestAPILogin(t *testing.T) {
	r, a := newTestRouter(t, nil)

	w := postJSON(r, "/api/login", `{"email":"","password":"abc"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var errResp models.ErrorsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	require.Equal(t, map[string]string{
		"email":    "Email обязателен",
		"password": "Пароль должен быть не менее 6 символов",
	}, errResp.Errors)

	w = postJSON(r, "/api/login", `{"email":"a@b.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.SubmitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "/dashboard", resp.Redirect)

	claims, err := a.ValidateToken(resp.Token)
	require.NoError(t, err)
	require.Equal(t, "a@b.com", claims.Email)

	w = postJSON(r, "/api/login", `{"email":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPIRegister(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := postJSON(r, "/api/register", `{"name":"Al","email":"a@b.com","password":"secret1","confirmPassword":"secret2"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.JSONEq(t, `{"errors":{"confirmPassword":"Пароли не совпадают"}}`, w.Body.String())

	w = postJSON(r, "/api/register", `{"name":"Al","email":"a@b.com","password":"secret1","confirmPassword":"secret1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	r, _ = newTestRouter(t, failingAuth{err: errors.New("taken")})
	w = postJSON(r, "/api/register", `{"name":"Al","email":"a@b.com","password":"secret1","confirmPassword":"secret1"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.JSONEq(t, `{"errors":{"api":"taken"}}`, w.Body.String())
}

func TestSubmitAbandonedWhenRequestCancelled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.DefaultConfig()
	a := auth.New(&cfg.Auth, cfg.Forms.SubmitDelay())
	r := NewRouter(New(cfg, a, a, slog.New(slog.NewTextHandler(io.Discard, nil))), a)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	values := url.Values{"email": {"a@b.com"}, "password": {"secret1"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(values.Encode())).WithContext(ctx)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Empty(t, w.Header().Get("Location"))
	require.Empty(t, w.Result().Cookies())
	require.NotContains(t, w.Body.String(), "Неверный email или пароль")
}
