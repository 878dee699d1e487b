// Package web holds the embedded HTML templates for the password recovery
// page served by reelist.
//
// The recovery flow is the one piece of the product that must live on the open
// web: the auth service emails users a link carrying userId and secret query
// parameters, and that link needs a form to land on. Everything else stays in
// the terminal.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFiles embed.FS

// ResetPage is the data rendered into the reset form template.
type ResetPage struct {
	UserID  string
	Secret  string
	Message string
	Success bool
}

// Renderer renders the embedded recovery page templates.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// RenderReset writes the reset form page.
func (r *Renderer) RenderReset(w io.Writer, page ResetPage) error {
	if err := r.tmpl.ExecuteTemplate(w, "reset.html", page); err != nil {
		return fmt.Errorf("failed to render reset page: %w", err)
	}
	return nil
}
