// Package web embeds the approval workspace and the public approval page so
// the server binary ships self-contained.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFiles embed.FS

// Dist returns the static UI as an http.FileSystem rooted at the asset dir.
func Dist() http.FileSystem {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
