// Package page renders the HTML shell the client-side court scene mounts into.
package page

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path/filepath"

	"go.opentelemetry.io/otel"
)

// TemplateName is the file looked up inside the template directory.
const TemplateName = "index.html"

var tracer = otel.Tracer("courtview/page")

// Data is everything the template may substitute.
type Data struct {
	Title        string
	StaticPrefix string
}

// Renderer holds the parsed page template. It is read-only after New and safe
// for concurrent use.
type Renderer struct {
	tmpl *template.Template
	data Data
}

// New parses <dir>/index.html. A missing or broken template is a configuration
// error and should stop the process.
func New(dir string, data Data) (*Renderer, error) {
	tmpl, err := template.ParseFiles(filepath.Join(dir, TemplateName))
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	return &Renderer{tmpl: tmpl, data: data}, nil
}

// Render executes the template into a buffer, so a failure never leaves a
// partially written page behind.
func (r *Renderer) Render(ctx context.Context) ([]byte, error) {
	_, span := tracer.Start(ctx, "page.render")
	defer span.End()

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, TemplateName, r.data); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}
