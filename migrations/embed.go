// Package migrations embeds the ordered SQL schema migrations.
package migrations

import "embed"

// FS holds every *.up.sql file, applied in lexical order
//
//go:embed *.up.sql
var FS embed.FS
