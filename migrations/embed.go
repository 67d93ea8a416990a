// Package migrations embeds the SQL migration files so binaries carry their
// own schema.
package migrations

import "embed"

// FS holds every *.up.sql and *.down.sql file of this directory
//
//go:embed *.sql
var FS embed.FS
