package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rana-Faraz/authbase/internal/common"
	"github.com/Rana-Faraz/authbase/internal/config"
	"github.com/Rana-Faraz/authbase/internal/database"
	"github.com/Rana-Faraz/authbase/internal/sessions"
)

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabaseURL = "file::memory:?cache=shared"
	cfg.AuthSecret = "test-secret"
	cfg.DBMaxOpenConns = 1
	cfg.DBMaxIdleConns = 1

	app, err := NewApp(cfg)
	require.NoError(t, err)

	var out bytes.Buffer
	app.out = &out
	return app, &out
}

// keepAlive holds a connection to the shared in-memory database so its
// contents survive the CLI closing its own pool.
func keepAlive(t *testing.T) *database.Store {
	t.Helper()

	store, err := database.Open(database.Config{DSN: "file::memory:?cache=shared", MaxOpenConns: 1})
	require.NoError(t, err)
	require.NoError(t, store.Ping(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewApp_RequiresDatabaseURL(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	_, err := NewApp(cfg)
	require.ErrorIs(t, err, config.ErrMissingDatabaseURL)
}

func TestRun_UnknownCommand(t *testing.T) {
	app, out := newTestApp(t)

	err := app.Run(context.Background(), []string{"frobnicate"})
	require.ErrorIs(t, err, ErrUnknownCommand)
	assert.Contains(t, out.String(), "Usage:")

	err = app.Run(context.Background(), nil)
	require.ErrorIs(t, err, ErrUnknownCommand)
}

func TestMigrateUp(t *testing.T) {
	store := keepAlive(t)
	app, out := newTestApp(t)

	err := app.Run(context.Background(), []string{"migrate", "up"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "migrations applied")

	// The schema is in place afterwards: the lookup reaches the table and
	// reports a clean miss rather than a missing-relation error.
	_, err = store.Users().GetByEmail(context.Background(), "nobody@cli.test")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	err = app.Run(context.Background(), []string{"migrate", "status"})
	require.NoError(t, err)

	err = app.Run(context.Background(), []string{"migrate", "sideways"})
	require.ErrorIs(t, err, ErrUnknownCommand)
}

func TestCreateUser(t *testing.T) {
	store := keepAlive(t)
	require.NoError(t, store.RunMigrations(context.Background()))

	app, out := newTestApp(t)
	app.reader = bufio.NewReader(strings.NewReader("Console User\nconsole@cli.test\n"))

	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return []byte("correct-horse"), nil
	}

	err := app.Run(context.Background(), []string{"create-user"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "created user")

	user, err := store.Users().GetByEmail(context.Background(), "console@cli.test")
	require.NoError(t, err)
	assert.Equal(t, "Console User", user.Name)

	// The registration session was revoked.
	var count int
	count, err = store.DB().NewSelect().Model((*sessions.Session)(nil)).
		Where("user_id = ?", user.ID).
		Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateUser_RequiresSecret(t *testing.T) {
	keepAlive(t)

	app, _ := newTestApp(t)
	app.config.AuthSecret = ""
	app.reader = bufio.NewReader(strings.NewReader("X\nx@cli.test\n"))

	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return []byte("correct-horse"), nil
	}

	err := app.Run(context.Background(), []string{"create-user"})
	require.Error(t, err)
}
