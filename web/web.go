// Package web embeds the HTML page shells served by the storefront and the
// admin panel. The pages load their data from the JSON API.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses every page shell. Each page is addressed by its file name.
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}
