// Package views holds the HTML templates, embedded into the binary.
package views

import (
	"embed"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed *.html
var files embed.FS

// NewEngine returns the template engine used by the fiber app.
func NewEngine() *html.Engine {
	return html.NewFileSystem(http.FS(files), ".html")
}
