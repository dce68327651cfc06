// Package web serves the server-rendered pages: login, dashboard, patient
// detail and the form posts behind them.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/consultorio/consultorio/pkg/clinicaldate"
)

//go:embed templates/*.html
var templateFS embed.FS

// staticFS holds the dashboard search script, served under /static.
//
//go:embed static/*.js
var staticFS embed.FS

const layoutFile = "templates/layout.html"

var funcs = template.FuncMap{
	"longDate":  clinicaldate.LongOrNA,
	"shortDate": clinicaldate.ShortOrEmpty,
	"toForm":    clinicaldate.ToForm,
	"join":      strings.Join,
}

// Renderer implements echo.Renderer. Each page is parsed together with the
// shared layout and executed through it.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, f := range files {
		if f == layoutFile {
			continue
		}
		t, err := template.New("").Funcs(funcs).ParseFS(templateFS, layoutFile, f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		r.pages[strings.TrimPrefix(f, "templates/")] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
