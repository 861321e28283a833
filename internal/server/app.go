// Package server initializes and runs the auth service: it validates
// configuration, opens the database pool, applies migrations, constructs the
// authentication service, and serves the HTTP API until shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Rana-Faraz/authbase/internal/auth"
	"github.com/Rana-Faraz/authbase/internal/avatars"
	"github.com/Rana-Faraz/authbase/internal/config"
	"github.com/Rana-Faraz/authbase/internal/database"
	"github.com/Rana-Faraz/authbase/internal/logging"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	store   *database.Store
	auth    *auth.Auth
	avatars *avatars.Service
}

// NewApp wires the application together. Any missing required setting or
// unreachable dependency fails here, before the server starts listening.
func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	store, err := database.Open(database.Config{
		DSN:             c.DatabaseURL,
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: c.DBConnMaxLifetime,
		ConnMaxIdleTime: c.DBConnMaxIdleTime,
		QueryLog:        c.DBQueryLog,
	})
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := store.RunMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	// The service's own URLs are always trusted origins, alongside the
	// configured ones.
	origins := append([]string{c.AuthURL, c.PublicAuthURL}, c.TrustedOrigins...)

	authService, err := auth.New(auth.Options{
		Store:                store,
		Secret:               c.AuthSecret,
		BaseURL:              c.PublicAuthURL,
		TrustedOrigins:       origins,
		SessionValidity:      c.SessionValidityDuration,
		TokenValidity:        c.TokenValidityDuration,
		VerificationValidity: c.VerificationValidityDuration,
		MinPasswordLength:    c.MinPasswordLength,
		Logger:               logger,
	})
	if err != nil {
		return nil, fmt.Errorf("auth init error: %w", err)
	}

	avatarService := avatars.NewService(avatars.Config{
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	}, store.Users())

	return &App{
		config:  c,
		logger:  logger,
		store:   store,
		auth:    authService,
		avatars: avatarService,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := NewHTTPServer(app.config.ListenAddr, app.logger, app.auth, app.avatars, app.store)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until the context is canceled or a termination signal arrives,
// then closes the connection pool.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.ListenAddr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.store.Close(); err != nil {
		app.logger.Error(ctx, "closing database pool", "error", err.Error())
	}
}
