// Package migrations embeds the SQL schema for the tour_dates table.
package migrations

import "embed"

// FS holds the numbered up/down migration files.
//
//go:embed *.sql
var FS embed.FS
