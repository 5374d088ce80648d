package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"account-forms/pkg/auth"
	"account-forms/pkg/config"
	"account-forms/pkg/handlers"
	"account-forms/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}

	// Load configuration
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, logCloser, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// The placeholder authenticator also issues the session cookie
	authService := auth.New(&cfg.Auth, cfg.Forms.SubmitDelay())

	h := handlers.New(cfg, authService, authService, logger)

	gin.SetMode(gin.ReleaseMode)
	r := handlers.NewRouter(h, authService)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           logging.Middleware(logger, r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server", "addr", "http://"+addr, "submit_delay", cfg.Forms.SubmitDelay().String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	if cerr := logCloser.Close(); cerr != nil {
		log.Printf("Failed to close log output: %v", cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}
