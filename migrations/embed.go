// Package migrations embeds the postgres schema for the registry store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
