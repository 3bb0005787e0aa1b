// Package assets embeds the files the binary ships with: SQL migrations and
// the console help text.
package assets

import (
	"embed"
	"io/fs"
	"strings"
)

//go:embed migrations/*.sql help.txt
var FS embed.FS

// Migrations returns the migration files rooted at their directory.
func Migrations() (fs.FS, error) {
	return fs.Sub(FS, "migrations")
}

// HelpText returns the how-to-play text shown by the console.
func HelpText() string {
	b, err := FS.ReadFile("help.txt")
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(b), "\n")
}
