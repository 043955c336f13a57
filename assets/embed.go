// Package assets embeds the single-page UI and the cache schema migrations.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed index.html sql/*.sql
var FS embed.FS

// Index returns the game page.
func Index() ([]byte, error) {
	return FS.ReadFile("index.html")
}

// Migrations returns the sql/ directory as its own filesystem root.
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "sql")
	if err != nil {
		// unreachable: sql/ is embedded
		panic(err)
	}
	return sub
}
