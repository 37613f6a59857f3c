// Package root exposes files embedded into the binary, currently only the
// database migrations applied by the migrate subcommand.
package root

import "embed"

// Migrations contains the goose migration files.
//
//go:embed migrations/*.sql
var Migrations embed.FS
