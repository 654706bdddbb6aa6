// Package spindrift builds a static site from a directory of YAML posts
// ("droplets"). Every droplet is parsed and rendered concurrently through a
// shared template engine, then a single index page lists the droplets that
// rendered successfully.
//
// A droplet that cannot be read, decoded or rendered is logged and counted;
// it never stops the build. Only problems that affect the whole run (an
// unreadable source directory, missing templates) are returned as errors.
package spindrift

import (
	"go.uber.org/zap"

	"github.com/eringen/spindrift/markup"
)

// Site is a configured generator. It is safe to call Build repeatedly, but
// not concurrently.
type Site struct {
	Config SiteConfig

	log         *zap.SugaredLogger
	conv        *markup.Converter
	engine      *Engine
	extensions  map[string]struct{}
	concurrency int
	templateDir string
}

// New creates a Site and loads its templates. A *TemplateError is returned
// when the template directory or a required template cannot be loaded.
func New(cfg SiteConfig, opts ...Option) (*Site, error) {
	s := &Site{
		Config:      cfg,
		log:         zap.NewNop().Sugar(),
		extensions:  normalizeExtensions(DefaultExtensions),
		templateDir: DefaultTemplateDir,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.conv == nil {
		s.conv = markup.New()
	}
	if err := s.ReloadTemplates(); err != nil {
		return nil, err
	}
	return s, nil
}

// ReloadTemplates recompiles the template directory. On failure the
// previously loaded templates stay in use.
func (s *Site) ReloadTemplates() error {
	engine, err := NewEngine(s.templateDir, s.conv)
	if err != nil {
		return err
	}
	s.engine = engine
	return nil
}

// Engine returns the template engine in use.
func (s *Site) Engine() *Engine {
	return s.engine
}

// TemplateDir returns the directory templates are loaded from.
func (s *Site) TemplateDir() string {
	return s.templateDir
}
