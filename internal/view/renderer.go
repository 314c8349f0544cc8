package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/itchan-dev/aurum/shared/validation"
)

//go:embed templates/*.html
var templateFS embed.FS

const PageTemplate = "page"

type Renderer struct {
	templates   *template.Template
	text        *TextProcessor
	maxUploadMB float64
}

func NewRenderer(maxUploadSize int64) (*Renderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"dict": dict,
		"add":  func(a, b int) int { return a + b },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{
		templates:   tmpl,
		text:        NewTextProcessor(),
		maxUploadMB: validation.FormatSizeMB(maxUploadSize),
	}, nil
}

// Execute renders into a buffer first so a template error never leaves a half-written page.
func (r *Renderer) Execute(w io.Writer, name string, data any) error {
	buf := new(bytes.Buffer)
	if err := r.templates.ExecuteTemplate(buf, name, data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func dict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("invalid dict call: number of arguments must be even")
	}
	m := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings")
		}
		m[key] = values[i+1]
	}
	return m, nil
}
