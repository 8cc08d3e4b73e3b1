package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/frahmantamala/hrms-portal/internal"
)

//go:embed templates/*.html
var templateFiles embed.FS

//go:embed static
var staticFiles embed.FS

const layoutFile = "templates/layout.html"

// Page is what every full-page template receives.
type Page struct {
	AppName  string
	Title    string
	Active   string
	User     *internal.User
	Notices  []internal.Notice
	Debounce time.Duration
	View     interface{}
}

type Options struct {
	AppName  string
	Debounce time.Duration
}

// Renderer holds one parsed template set per page, each sharing the layout.
type Renderer struct {
	opts  Options
	pages map[string]*template.Template
}

func NewRenderer(opts Options) (*Renderer, error) {
	if opts.AppName == "" {
		opts.AppName = "HRMS"
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}

	entries, err := fs.Glob(templateFiles, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{opts: opts, pages: make(map[string]*template.Template)}
	for _, file := range entries {
		if file == layoutFile || strings.HasPrefix(path.Base(file), "_") {
			continue
		}
		name := strings.TrimSuffix(path.Base(file), ".html")
		tmpl, err := template.New(name).Funcs(funcMap()).ParseFS(templateFiles, layoutFile, "templates/_*.html", file)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

func (r *Renderer) AppName() string {
	return r.opts.AppName
}

// Render writes a full page. Output is buffered so a template error never
// leaves a half-written response.
func (r *Renderer) Render(w io.Writer, name string, page Page) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	if page.AppName == "" {
		page.AppName = r.opts.AppName
	}
	if page.Debounce == 0 {
		page.Debounce = r.opts.Debounce
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// RenderPartial writes one named block of a page, used for htmx swaps.
func (r *Renderer) RenderPartial(w io.Writer, name, block string, page Page) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	if page.Debounce == 0 {
		page.Debounce = r.opts.Debounce
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, block, page); err != nil {
		return fmt.Errorf("render %s/%s: %w", name, block, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

// ErrorView is the body of the generic error page.
type ErrorView struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}
