// Package cli implements the operator command line: schema migrations and
// manual user provisioning against the configured database.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Rana-Faraz/authbase/internal/auth"
	"github.com/Rana-Faraz/authbase/internal/config"
	"github.com/Rana-Faraz/authbase/internal/database"
	"github.com/Rana-Faraz/authbase/internal/logging"
)

var ErrUnknownCommand = errors.New("cli: unknown command")

type App struct {
	config *config.Config
	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	if c.DatabaseURL == "" {
		return nil, config.ErrMissingDatabaseURL
	}

	return &App{
		config: c,
		logger: logging.NewJSONLogger(),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) openStore() (*database.Store, error) {
	return database.Open(database.Config{
		DSN:             a.config.DatabaseURL,
		MaxOpenConns:    a.config.DBMaxOpenConns,
		MaxIdleConns:    a.config.DBMaxIdleConns,
		ConnMaxLifetime: a.config.DBConnMaxLifetime,
		ConnMaxIdleTime: a.config.DBConnMaxIdleTime,
		QueryLog:        a.config.DBQueryLog,
	})
}

// Run dispatches a single subcommand and returns when it completes.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return ErrUnknownCommand
	}

	switch args[0] {
	case "migrate":
		return a.migrate(ctx, args[1:])
	case "create-user":
		return a.createUser(ctx)
	default:
		a.usage()
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "Usage:")
	fmt.Fprintln(a.out, "  migrate [up|status]   apply pending migrations or print their status")
	fmt.Fprintln(a.out, "  create-user           interactively register a user")
}

func (a *App) migrate(ctx context.Context, args []string) error {
	sub := "up"
	if len(args) > 0 {
		sub = args[0]
	}

	store, err := a.openStore()
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer store.Close()

	switch sub {
	case "up":
		if err := store.RunMigrations(ctx); err != nil {
			return fmt.Errorf("migration error: %w", err)
		}
		fmt.Fprintln(a.out, "migrations applied")
		return nil
	case "status":
		return store.MigrationStatus(ctx)
	default:
		return fmt.Errorf("%w: migrate %s", ErrUnknownCommand, sub)
	}
}

// createUser prompts for a name, email, and password and registers the user
// through the same path the HTTP sign-up endpoint uses. The session opened by
// registration is revoked immediately.
func (a *App) createUser(ctx context.Context) error {
	name, err := PromptString(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	email, err := PromptString(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := PromptPassword(a.out)
	if err != nil {
		return err
	}
	defer func() {
		for i := range password {
			password[i] = 0
		}
	}()

	store, err := a.openStore()
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer store.Close()

	if err := store.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	authService, err := auth.New(auth.Options{
		Store:             store,
		Secret:            a.config.AuthSecret,
		BaseURL:           a.config.AuthURL,
		MinPasswordLength: a.config.MinPasswordLength,
		Logger:            a.logger,
	})
	if err != nil {
		return err
	}

	user, session, err := authService.SignUpEmail(ctx, auth.SignUpParams{
		Name:     name,
		Email:    email,
		Password: string(password),
	})
	if err != nil {
		return err
	}

	if err := authService.SignOut(ctx, session.Token); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "created user %s (%s)\n", user.ID, user.Email)
	return nil
}
