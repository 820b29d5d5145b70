// Package migrations holds the embedded SQL schema for the catalog snapshot store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
