// Package web carries the embedded entry pages and the templates used to
// render search results, the user list and outcome messages.
package web

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed static/*.html
var staticFS embed.FS

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded view templates.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// Page returns the raw bytes of an embedded entry page, e.g. "index.html".
func Page(name string) ([]byte, error) {
	data, err := staticFS.ReadFile("static/" + name)
	if err != nil {
		return nil, fmt.Errorf("read page %s: %w", name, err)
	}
	return data, nil
}
