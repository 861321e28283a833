package database

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Dialect identifies the SQL flavor a connection string points at.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite"
)

var (
	// ErrEmptyDSN is returned when no connection string was provided.
	ErrEmptyDSN = errors.New("empty database connection string")

	// ErrUnsupportedDSN is returned when the connection string names a
	// scheme no supported driver can serve.
	ErrUnsupportedDSN = errors.New("unsupported database connection string")
)

// DetectDialect infers the dialect from the connection string scheme.
// MySQL is recognized both by the mysql:// scheme and by the native
// go-sql-driver "user:pass@tcp(host)/db" form.
func DetectDialect(dsn string) (Dialect, error) {
	switch {
	case dsn == "":
		return "", ErrEmptyDSN
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DialectPostgres, nil
	case strings.HasPrefix(dsn, "mysql://"), strings.Contains(dsn, "@tcp("):
		return DialectMySQL, nil
	case strings.HasPrefix(dsn, "sqlite://"), strings.HasPrefix(dsn, "file:"), dsn == ":memory:":
		return DialectSQLite, nil
	default:
		return "", ErrUnsupportedDSN
	}
}

// GooseDialect maps the dialect to the name goose knows it by.
func (d Dialect) GooseDialect() string {
	switch d {
	case DialectPostgres:
		return "pgx"
	case DialectMySQL:
		return "mysql"
	default:
		return "sqlite3"
	}
}

// mysqlDSN converts a mysql:// URL into the go-sql-driver DSN form. Strings
// already in native form pass through unchanged.
func mysqlDSN(dsn string) (string, error) {
	if !strings.HasPrefix(dsn, "mysql://") {
		return dsn, nil
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parsing mysql url: %w", err)
	}

	host := u.Host
	if u.Port() == "" {
		host += ":3306"
	}

	pass, _ := u.User.Password()
	out := fmt.Sprintf("%s:%s@tcp(%s)/%s", u.User.Username(), pass, host, strings.TrimPrefix(u.Path, "/"))
	if u.RawQuery != "" {
		out += "?" + u.RawQuery
	}
	return out, nil
}

// sqliteDSN strips the optional sqlite:// scheme, leaving a path or file: URI
// the sqlite shim accepts.
func sqliteDSN(dsn string) string {
	return strings.TrimPrefix(dsn, "sqlite://")
}
