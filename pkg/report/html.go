package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// WriteHTML renders the printable statement document (a print-to-PDF
// target) to w.
func WriteHTML(w io.Writer, d Data) error {
	tmpl, err := template.ParseFS(templateFS, "templates/statement.html")
	if err != nil {
		return fmt.Errorf("failed to parse statement template: %w", err)
	}

	if err := tmpl.Execute(w, buildStatement(d)); err != nil {
		return fmt.Errorf("failed to render statement: %w", err)
	}

	return nil
}
