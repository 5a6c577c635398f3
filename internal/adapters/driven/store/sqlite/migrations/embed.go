// Package migrations embeds the SQL migration files.
package migrations

import "embed"

// FS contains the migration files in lexical order.
//
//go:embed *.sql
var FS embed.FS
