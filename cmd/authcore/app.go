package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/policynav/authcore/internal/db"
	"github.com/policynav/authcore/internal/handlers"
	"github.com/policynav/authcore/internal/logger"
	"github.com/policynav/authcore/internal/repository/postgres"
	"github.com/policynav/authcore/internal/service/auth"
	"github.com/policynav/authcore/internal/service/auth/tokenmanager"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
	Logger     logger.Logger
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	log := logger.New(c.Environment, c.LogLevel)

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	userRepo := &postgres.UserRepo{DB: pool}

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		SecretKey: c.SecretKey,
		TTL:       c.TokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	authService, err := auth.NewService(
		auth.Config{MinPasswordLen: c.MinPasswordLen, Logger: log},
		tokenManager,
		userRepo,
	)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    handlers.NewRouter(authService, log),
		Logger:     log,
	}, nil
}

func (a *ServerApp) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    a.ListenAddr,
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error("error while shutting down server", "error", err.Error())
		}
	}()

	a.Logger.Info("starting server", "address", a.ListenAddr)
	return srv.ListenAndServe()
}
