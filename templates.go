package spindrift

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/a-h/templ"
	"github.com/cockroachdb/errors"
	"github.com/flosch/pongo2/v6"

	"github.com/eringen/spindrift/markup"
)

// Template names looked up in the template directory.
const (
	DropletTemplate = "droplet.html"
	IndexTemplate   = "index.html"
	TagTemplate     = "tag.html"
	AuthorTemplate  = "author.html"
)

// DefaultTemplateDir is the template directory used when none is given.
const DefaultTemplateDir = "templates"

var (
	requiredTemplates = []string{DropletTemplate, IndexTemplate}
	optionalTemplates = []string{TagTemplate, AuthorTemplate}
)

// Engine renders named pongo2 templates from a directory. Rendering is
// serialised: one template executes at a time across the whole build.
type Engine struct {
	mu        sync.Mutex
	dir       string
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

// NewEngine compiles the templates in dir. The droplet and index templates
// must exist; tag and author templates are loaded when present. Any missing
// required template or syntax error yields a *TemplateError.
func NewEngine(dir string, conv *markup.Converter) (*Engine, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, newTemplateError(dir, err)
	}
	if !info.IsDir() {
		return nil, newTemplateError(dir, errors.Newf("%s is not a directory", dir))
	}
	loader, err := pongo2.NewLocalFileSystemLoader(dir)
	if err != nil {
		return nil, newTemplateError(dir, err)
	}

	set := pongo2.NewSet("spindrift", loader)
	if set.Globals == nil {
		set.Globals = pongo2.Context{}
	}
	set.Globals["markup"] = func(raw string) *pongo2.Value {
		return pongo2.AsSafeValue(conv.Convert(raw))
	}

	e := &Engine{dir: dir, set: set, templates: make(map[string]*pongo2.Template)}
	for _, name := range requiredTemplates {
		if err := e.load(name); err != nil {
			return nil, err
		}
	}
	for _, name := range optionalTemplates {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			continue
		}
		if err := e.load(name); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Engine) load(name string) error {
	tpl, err := e.set.FromFile(name)
	if err != nil {
		return newTemplateError(name, err)
	}
	e.templates[name] = tpl
	return nil
}

// Dir returns the template directory.
func (e *Engine) Dir() string {
	return e.dir
}

// Has reports whether the named template was loaded.
func (e *Engine) Has(name string) bool {
	_, ok := e.templates[name]
	return ok
}

// Component returns the named template bound to data as a templ.Component.
func (e *Engine) Component(name string, data pongo2.Context) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		tpl, ok := e.templates[name]
		if !ok {
			return newTemplateError(name, errors.New("template not loaded"))
		}
		e.mu.Lock()
		defer e.mu.Unlock()
		return tpl.ExecuteWriter(data, w)
	})
}

// RenderFile renders the named template into path. Failures of either the
// template or the write are returned as a *RenderError.
func (e *Engine) RenderFile(ctx context.Context, name string, data pongo2.Context, path string) error {
	var buf bytes.Buffer
	if err := e.Component(name, data).Render(ctx, &buf); err != nil {
		return newRenderError(name, path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return newRenderError(name, path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return newRenderError(name, path, err)
	}
	return nil
}
