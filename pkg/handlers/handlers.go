package handlers

import (
	"log/slog"
	"net/http"

	"account-forms/pkg/auth"
	"account-forms/pkg/config"
	"account-forms/pkg/forms"
	"account-forms/pkg/models"
	"account-forms/templates"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	config        *config.Config
	auth          *auth.Auth
	authenticator forms.Authenticator
	logger        *slog.Logger
}

// New creates a new Handlers instance. Submissions go to authenticator;
// session cookies are managed by a.
func New(cfg *config.Config, a *auth.Auth, authenticator forms.Authenticator, logger *slog.Logger) *Handlers {
	return &Handlers{
		config:        cfg,
		auth:          a,
		authenticator: authenticator,
		logger:        logger,
	}
}

// render renders a templ component
func render(c *gin.Context, status int, template templ.Component) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := template.Render(c.Request.Context(), c.Writer); err != nil {
		c.String(http.StatusInternalServerError, "Template rendering error")
	}
}

// failureStatus picks the response code for a form that did not navigate
func failureStatus(errs forms.Errors, apiStatus int) int {
	if errs.Has(forms.FieldAPI) {
		return apiStatus
	}
	return http.StatusUnprocessableEntity
}

// abandoned handles a submission whose request went away mid-flight
func (h *Handlers) abandoned(c *gin.Context, form string, err error) {
	h.logger.Warn("submission abandoned", "form", form, "error", err)
	c.Abort()
}

// ============== Page Handlers ==============

// Index renders the landing placeholder
func (h *Handlers) Index(c *gin.Context) {
	render(c, http.StatusOK, templates.IndexPage())
}

// LoginPage renders an empty sign-in form
func (h *Handlers) LoginPage(c *gin.Context) {
	view := forms.NewLoginView(h.authenticator, forms.LoginForm{}, h.config.Forms.Redirect)
	render(c, http.StatusOK, templates.LoginPage(view.State()))
}

// Login handles the posted sign-in form
func (h *Handlers) Login(c *gin.Context) {
	view := forms.NewLoginView(h.authenticator, forms.LoginForm{}, h.config.Forms.Redirect)
	for _, field := range forms.LoginFields {
		view.Change(field, c.PostForm(field))
	}

	st, err := view.Submit(c.Request.Context())
	if err != nil {
		h.abandoned(c, "login", err)
		return
	}

	h.logger.Info("login submitted", "phase", st.Phase.String(), "errors", len(st.Errors))
	if st.Phase == forms.Navigated {
		h.auth.SetCookie(c, st.Session)
		c.Redirect(http.StatusSeeOther, st.Redirect)
		return
	}
	render(c, failureStatus(st.Errors, http.StatusUnauthorized), templates.LoginPage(st))
}

// RegisterPage renders an empty registration form
func (h *Handlers) RegisterPage(c *gin.Context) {
	view := forms.NewRegisterView(h.authenticator, forms.RegisterForm{}, h.config.Forms.Redirect)
	render(c, http.StatusOK, templates.RegisterPage(view.State()))
}

// Register handles the posted registration form
func (h *Handlers) Register(c *gin.Context) {
	view := forms.NewRegisterView(h.authenticator, forms.RegisterForm{}, h.config.Forms.Redirect)
	for _, field := range forms.RegisterFields {
		view.Change(field, c.PostForm(field))
	}

	st, err := view.Submit(c.Request.Context())
	if err != nil {
		h.abandoned(c, "register", err)
		return
	}

	h.logger.Info("register submitted", "phase", st.Phase.String(), "errors", len(st.Errors))
	if st.Phase == forms.Navigated {
		h.auth.SetCookie(c, st.Session)
		c.Redirect(http.StatusSeeOther, st.Redirect)
		return
	}
	render(c, failureStatus(st.Errors, http.StatusBadRequest), templates.RegisterPage(st))
}

// Dashboard is the landing stub for a signed-in user
func (h *Handlers) Dashboard(c *gin.Context) {
	render(c, http.StatusOK, templates.DashboardPage(templates.DashboardPageData{
		Email: c.GetString(auth.SubjectKey),
		Name:  c.GetString(auth.NameKey),
	}))
}

// ForgotPassword is a stub for the password reset link
func (h *Handlers) ForgotPassword(c *gin.Context) {
	render(c, http.StatusNotImplemented, templates.ForgotPasswordPage())
}

// Logout handles user logout
func (h *Handlers) Logout(c *gin.Context) {
	h.auth.ClearCookie(c)
	c.Redirect(http.StatusTemporaryRedirect, "/login")
}

// ============== API Handlers ==============

// APILogin handles a JSON sign-in request
func (h *Handlers) APILogin(c *gin.Context) {
	var form forms.LoginForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	st, err := forms.NewLoginView(h.authenticator, form, h.config.Forms.Redirect).Submit(c.Request.Context())
	if err != nil {
		h.abandoned(c, "login", err)
		return
	}
	h.respond(c, st.Phase, st.Errors, st.Session, st.Redirect, http.StatusUnauthorized, "login successful")
}

// APIRegister handles a JSON registration request
func (h *Handlers) APIRegister(c *gin.Context) {
	var form forms.RegisterForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	st, err := forms.NewRegisterView(h.authenticator, form, h.config.Forms.Redirect).Submit(c.Request.Context())
	if err != nil {
		h.abandoned(c, "register", err)
		return
	}
	h.respond(c, st.Phase, st.Errors, st.Session, st.Redirect, http.StatusBadRequest, "registration successful")
}

func (h *Handlers) respond(c *gin.Context, phase forms.Phase, errs forms.Errors, session models.Session, redirect string, apiStatus int, message string) {
	if phase != forms.Navigated {
		c.JSON(failureStatus(errs, apiStatus), models.ErrorsResponse{Errors: errs})
		return
	}

	h.auth.SetCookie(c, session)
	c.JSON(http.StatusOK, models.SubmitResponse{
		Token:    session.Token,
		Redirect: redirect,
		Message:  message,
	})
}
