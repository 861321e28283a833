// Package migrations embeds the versioned SQL schema sources applied with
// goose. The DDL is written for PostgreSQL and SQLite; MySQL deployments are
// expected to manage the schema externally (see Config).
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
