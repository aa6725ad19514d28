// Package migrations содержит SQL миграции базы бота
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
