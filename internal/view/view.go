// Package view renders the server-side HTML pages.  Templates are
// embedded in the binary; every page defines a "content" block that is
// wrapped by the shared layout.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinemaflow/internal/model"
)

//go:embed templates
var templatesFS embed.FS

// Page is the data passed to every template.
type Page struct {
	Title   string
	User    *model.User
	Flashes []string
	Data    echo.Map
}

// Renderer implements echo.Renderer.  Each page is parsed into its own
// template set together with the layout so pages can all define
// "content" without clashing.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"fmtTime": func(t time.Time) string { return t.Format(model.ShowTimeLayout) },
	"fmtDate": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02")
	},
}

// NewRenderer parses every embedded page.  Pages are addressed by path
// without extension, e.g. "bookings/seats".
func NewRenderer() (*Renderer, error) {
	layout, err := fs.ReadFile(templatesFS, "templates/layout.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: map[string]*template.Template{}}
	err = fs.WalkDir(templatesFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path == "templates/layout.html" {
			return err
		}
		body, err := fs.ReadFile(templatesFS, path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(strings.TrimPrefix(path, "templates/"), ".html")
		t, err := template.New(name).Funcs(funcs).Parse(string(layout))
		if err != nil {
			return fmt.Errorf("parse layout for %s: %w", name, err)
		}
		if _, err := t.Parse(string(body)); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// MustNewRenderer is NewRenderer for program start-up.
func MustNewRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Render writes the named page wrapped in the layout.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
