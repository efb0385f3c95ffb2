package hocr

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"text/template"
)

//go:embed templates/hocr.tmpl
var templateFS embed.FS

var hocrTemplate = template.Must(template.New("hocr.tmpl").Funcs(template.FuncMap{
	"esc": html.EscapeString,
	"lineClass": func(class string) string {
		if class == "" {
			return classLine
		}
		return class
	},
}).ParseFS(templateFS, "templates/hocr.tmpl"))

// Generate renders doc as an hOCR HTML document.
// The output parses back into an equivalent Document with Parse.
func Generate(doc *Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("hOCR document is nil")
	}
	var buf bytes.Buffer
	if err := hocrTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("error rendering hOCR template: %w", err)
	}
	return buf.String(), nil
}
