package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"

	"github.com/Rana-Faraz/authbase/internal/accounts"
	"github.com/Rana-Faraz/authbase/internal/migrations"
	"github.com/Rana-Faraz/authbase/internal/sessions"
	"github.com/Rana-Faraz/authbase/internal/users"
	"github.com/Rana-Faraz/authbase/internal/verifications"
)

// Store is the query-capable handle the rest of the application uses. It
// binds the connection pool to the auth schema and hands out typed
// repositories.
type Store struct {
	sqlDB   *sql.DB
	db      *bun.DB
	dialect Dialect
}

// Open creates the connection pool for cfg.DSN and returns a Store bound to
// the auth schema. It fails when the connection string is absent or
// malformed; it does not verify reachability — call Ping for that.
func Open(cfg Config) (*Store, error) {
	sqlDB, db, dialect, err := open(cfg)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	db.RegisterModel(
		(*users.User)(nil),
		(*sessions.Session)(nil),
		(*accounts.Account)(nil),
		(*verifications.Verification)(nil),
	)

	return &Store{sqlDB: sqlDB, db: db, dialect: dialect}, nil
}

// DB returns the bun handle for ad-hoc queries.
func (s *Store) DB() *bun.DB { return s.db }

// Conn returns the raw connection pool.
func (s *Store) Conn() *sql.DB { return s.sqlDB }

func (s *Store) Dialect() Dialect { return s.dialect }

// Tables lists the logical table names of the bound schema, in creation
// order. The auth layer checks this list against the tables it requires.
func (s *Store) Tables() []string {
	return []string{users.TableName, sessions.TableName, accounts.TableName, verifications.TableName}
}

func (s *Store) Users() users.Repository {
	return users.NewBunRepository(s.db)
}

func (s *Store) Sessions() sessions.Repository {
	return sessions.NewBunRepository(s.db)
}

func (s *Store) Accounts() accounts.Repository {
	return accounts.NewBunRepository(s.db)
}

func (s *Store) Verifications() verifications.Repository {
	return verifications.NewBunRepository(s.db)
}

// RunInTx runs fn inside a transaction, committing on success and rolling
// back on error. fn receives a handle the repositories accept in place of
// the pool.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.IDB) error) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}

// ErrSchemaNotProvisioned is returned by RunMigrations on a mysql connection
// whose externally managed schema is missing a required table.
var ErrSchemaNotProvisioned = errors.New("db schema is not provisioned")

// RunMigrations applies the embedded schema migrations. The embedded DDL is
// written for postgres and sqlite; mysql schemas are managed externally, so
// on mysql the call verifies the required tables exist instead of applying
// DDL that the dialect would reject.
func (s *Store) RunMigrations(ctx context.Context) error {
	if s.dialect == DialectMySQL {
		return s.verifySchema(ctx)
	}

	mc := migrations.DefaultConfig("", s.dialect.GooseDialect())

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(mc.Dialect); err != nil {
		return fmt.Errorf("setting migration dialect: %w", err)
	}
	goose.SetTableName(mc.VersionTable)

	if err := goose.UpContext(ctx, s.sqlDB, mc.Dir); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// verifySchema probes each required table with a trivial query.
func (s *Store) verifySchema(ctx context.Context) error {
	for _, name := range s.Tables() {
		if _, err := s.db.NewSelect().Table(name).Count(ctx); err != nil {
			return fmt.Errorf("%w: missing table %s: %v", ErrSchemaNotProvisioned, name, err)
		}
	}
	return nil
}

// MigrationStatus prints the applied/pending state of each migration.
func (s *Store) MigrationStatus(ctx context.Context) error {
	mc := migrations.DefaultConfig("", s.dialect.GooseDialect())

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(mc.Dialect); err != nil {
		return fmt.Errorf("setting migration dialect: %w", err)
	}
	goose.SetTableName(mc.VersionTable)

	return goose.StatusContext(ctx, s.sqlDB, mc.Dir)
}

// Ping verifies the pool can reach the database.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
