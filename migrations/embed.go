// Package migrations embeds the schema files so the binary can bootstrap its
// database from any working directory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
