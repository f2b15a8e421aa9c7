// Package migrations embeds the schema migrations for the development
// server's SQLite database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
