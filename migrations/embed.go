// Package migrations embeds the SQL schema migrations so deploy images
// carry them without a separate filesystem mount.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
