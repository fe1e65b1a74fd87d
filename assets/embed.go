// Package assets holds data files compiled into the server binary:
// the category table, the default value series and the SQL migrations.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed categories.yaml series.yaml sql/*.sql
var FS embed.FS

// Categories returns the raw category table.
func Categories() ([]byte, error) {
	return FS.ReadFile("categories.yaml")
}

// Series returns the raw default value series.
func Series() ([]byte, error) {
	return FS.ReadFile("series.yaml")
}

// Migrations returns the sql/ directory as a filesystem rooted at sql/.
func Migrations() (fs.FS, error) {
	return fs.Sub(FS, "sql")
}
