// Package migrations embeds the goose migrations for the PostgreSQL thumbnail
// backend. Files are named YYYYMMDDHHMMSS_description.sql and applied in order
// by db.Migrate when MONGO_URL points at PostgreSQL.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
