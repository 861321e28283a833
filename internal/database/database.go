// Package database opens the shared connection pool and binds the typed
// schema to it. The pool is created once at startup and owned by the process
// for its lifetime; no retry or reconnect policy is layered on top of what
// the driver provides.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

// Config describes how to open the connection pool. Zero pool values fall
// back to driver defaults.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	QueryLog        bool
}

// open creates the sql.DB pool and the bun handle for the dialect the DSN
// implies.
func open(cfg Config) (*sql.DB, *bun.DB, Dialect, error) {
	dialect, err := DetectDialect(cfg.DSN)
	if err != nil {
		return nil, nil, "", err
	}

	var sqlDB *sql.DB
	var db *bun.DB

	switch dialect {
	case DialectPostgres:
		sqlDB, err = sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, nil, "", fmt.Errorf("opening postgres pool: %w", err)
		}
		db = bun.NewDB(sqlDB, pgdialect.New())

	case DialectMySQL:
		dsn, derr := mysqlDSN(cfg.DSN)
		if derr != nil {
			return nil, nil, "", derr
		}
		sqlDB, err = sql.Open("mysql", dsn)
		if err != nil {
			return nil, nil, "", fmt.Errorf("opening mysql pool: %w", err)
		}
		db = bun.NewDB(sqlDB, mysqldialect.New())

	case DialectSQLite:
		sqlDB, err = sql.Open(sqliteshim.ShimName, sqliteDSN(cfg.DSN))
		if err != nil {
			return nil, nil, "", fmt.Errorf("opening sqlite: %w", err)
		}
		db = bun.NewDB(sqlDB, sqlitedialect.New())
	}

	configurePool(sqlDB, cfg)

	if cfg.QueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}

	return sqlDB, db, dialect, nil
}

func configurePool(sqlDB *sql.DB, cfg Config) {
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
}
