package spindrift

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// PathError reports a droplet, directory or output file that could not be
// opened.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid path %s: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// FormatError reports a droplet whose content does not decode into the
// expected shape.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid droplet format in %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// RenderError reports a template that rejected its context or an output file
// that could not be written.
type RenderError struct {
	Template string
	Path     string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s with %s: %v", e.Path, e.Template, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// ConfigError reports a missing or malformed project configuration file.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid spindrift config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// TemplateError reports a template directory or template that could not be
// loaded.
type TemplateError struct {
	Name string
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %v", e.Name, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

func newPathError(path string, err error) error {
	return &PathError{Path: path, Err: errors.WithStack(err)}
}

func newFormatError(path string, err error) error {
	return &FormatError{Path: path, Err: errors.WithStack(err)}
}

func newRenderError(template, path string, err error) error {
	return &RenderError{Template: template, Path: path, Err: errors.WithStack(err)}
}

func newConfigError(path string, err error) error {
	return &ConfigError{Path: path, Err: errors.WithStack(err)}
}

func newTemplateError(name string, err error) error {
	return &TemplateError{Name: name, Err: errors.WithStack(err)}
}
