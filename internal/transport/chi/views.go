package chi

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed views/*.html
var viewFiles embed.FS

// views holds parsed page templates keyed by view name.
type views struct {
	templates map[string]*template.Template
}

func loadViews() (*views, error) {
	v := &views{templates: make(map[string]*template.Template)}
	for _, name := range []string{"home"} {
		tmpl, err := template.New(name).ParseFS(viewFiles, "views/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse view %s: %w", name, err)
		}
		v.templates[name] = tmpl.Lookup(name + ".html")
	}
	return v, nil
}

// render executes the named view into a buffer so a template failure never
// leaves a half-written page.
func (v *views) render(w http.ResponseWriter, name string, data map[string]any) error {
	tmpl, ok := v.templates[name]
	if !ok {
		return fmt.Errorf("unknown view %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("execute view %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
	return nil
}
