// Package migrations embeds the SQL schema for the PostgreSQL backend,
// applied with goose by cmd/migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
