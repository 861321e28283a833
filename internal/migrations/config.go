package migrations

// Config declares where migration sources live and how the migrate command
// applies them. It is a static description consumed by the CLI; no migration
// logic lives here.
type Config struct {
	// DSN is the database the migrations run against.
	DSN string

	// Dialect is the goose dialect name ("pgx", "mysql", "sqlite3").
	Dialect string

	// Dir is the directory within the embedded filesystem holding the
	// migration sources.
	Dir string

	// VersionTable is the bookkeeping table goose records applied
	// versions in.
	VersionTable string
}

// DefaultConfig returns the standard migration layout for the given database.
func DefaultConfig(dsn, dialect string) Config {
	return Config{
		DSN:          dsn,
		Dialect:      dialect,
		Dir:          ".",
		VersionTable: "goose_db_version",
	}
}
