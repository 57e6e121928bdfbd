// Package migrations embeds the SQL schema files.
package migrations

import "embed"

// Files holds the *.up.sql migrations in lexical (= apply) order
//
//go:embed *.up.sql
var Files embed.FS
