// Package migrations embeds the goose SQL migrations for each supported
// dialect.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
