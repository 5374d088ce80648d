package handlers

import (
	"account-forms/pkg/auth"

	"github.com/gin-gonic/gin"
)

// NewRouter wires every route onto a fresh gin engine
func NewRouter(h *Handlers, a *auth.Auth) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Auth middleware
	r.Use(a.Middleware())

	// Page routes
	r.GET("/", h.Index)
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.GET("/register", h.RegisterPage)
	r.POST("/register", h.Register)
	r.GET("/forgot-password", h.ForgotPassword)
	r.GET("/dashboard", h.Dashboard)
	r.GET("/logout", h.Logout)

	// API routes
	api := r.Group("/api")
	{
		api.POST("/login", h.APILogin)
		api.POST("/register", h.APIRegister)
	}

	return r
}
