package spindrift

import (
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// DateLayout is the calendar date form accepted for meta.date.
const DateLayout = "2006-01-02"

// Droplet is a single post parsed from one YAML source file.
type Droplet struct {
	Meta    Meta    `yaml:"meta"`
	Title   string  `yaml:"title"`
	Image   *Image  `yaml:"image,omitempty"`
	Content *string `yaml:"content,omitempty"`

	source    string
	thumbnail string
}

// Meta is a droplet's metadata block.
type Meta struct {
	Tags   []string `yaml:"tags,omitempty"`
	Author string   `yaml:"author"`
	Date   *Date    `yaml:"date,omitempty"`

	// path is the derived output file name. It is set once, after the
	// droplet has been rendered.
	path *string
}

// Image describes an optional droplet image. Src is used as given.
type Image struct {
	Src       string  `yaml:"src"`
	Alt       *string `yaml:"alt,omitempty"`
	Copyright *string `yaml:"copyright,omitempty"`
}

// Date is a calendar date without a time of day.
type Date struct {
	time.Time
}

// UnmarshalYAML accepts only YYYY-MM-DD scalars.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return errors.Newf("line %d: date must be a scalar", value.Line)
	}
	t, err := time.Parse(DateLayout, value.Value)
	if err != nil {
		return errors.Newf("line %d: malformed date %q", value.Line, value.Value)
	}
	d.Time = t
	return nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// SetPath records the derived output path. Only the first call has any
// effect.
func (m *Meta) SetPath(p string) {
	if m.path != nil {
		return
	}
	m.path = &p
}

// Path returns the derived output path, if it has been set.
func (m *Meta) Path() (string, bool) {
	if m.path == nil {
		return "", false
	}
	return *m.path, true
}
