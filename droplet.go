package spindrift

import (
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/flosch/pongo2/v6"
	"gopkg.in/yaml.v3"

	"github.com/eringen/spindrift/markup"
)

// ImageClass is the class attribute of the img tag built for droplet images.
const ImageClass = "spindrift-img"

var lineBreaks = strings.NewReplacer("\r", "", "\n", "")

// ParseDroplet reads and decodes the droplet stored at path. An unreadable
// file yields a *PathError; content that does not match the droplet shape
// yields a *FormatError.
func ParseDroplet(path string) (*Droplet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newPathError(path, err)
	}
	defer f.Close()

	var d Droplet
	if err := yaml.NewDecoder(f).Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty document")
		}
		return nil, newFormatError(path, err)
	}
	if err := d.validate(); err != nil {
		return nil, newFormatError(path, err)
	}
	d.source = path
	return &d, nil
}

func (d *Droplet) validate() error {
	switch {
	case d.Meta.Author == "":
		return errors.New("missing field meta.author")
	case d.Title == "":
		return errors.New("missing field title")
	case d.Image != nil && d.Image.Src == "":
		return errors.New("missing field image.src")
	}
	return nil
}

// Source returns the file the droplet was parsed from.
func (d *Droplet) Source() string {
	return d.source
}

// FileName derives the output file name for a title: the title is split on
// whitespace, ASCII capitals are lower-cased, every other character that is
// not an ASCII letter or digit is dropped from each word, and the words are
// joined with hyphens. Words that end up empty still take part in the join,
// so "a !!! b" becomes "a--b.html".
func FileName(title string) string {
	words := strings.Fields(title)
	for i, w := range words {
		var b strings.Builder
		for _, r := range w {
			switch {
			case r >= 'A' && r <= 'Z':
				b.WriteRune(r + ('a' - 'A'))
			case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
				b.WriteRune(r)
			}
		}
		words[i] = b.String()
	}
	return strings.Join(words, "-") + ".html"
}

// FileName is the output file name derived from the droplet's title.
func (d *Droplet) FileName() string {
	return FileName(d.Title)
}

// SetFileName records the derived file name in the droplet's metadata. It
// is a no-op once a path has been recorded.
func (d *Droplet) SetFileName() {
	d.Meta.SetPath(d.FileName())
}

// ImageHTML returns an img tag for the droplet image, if there is one.
func (d *Droplet) ImageHTML() (string, bool) {
	if d.Image == nil {
		return "", false
	}
	attrs := []string{`src="` + d.Image.Src + `"`}
	if d.Image.Alt != nil {
		alt := lineBreaks.Replace(strings.TrimSpace(*d.Image.Alt))
		attrs = append(attrs, `alt="`+alt+`"`)
	}
	return `<img class="` + ImageClass + `" ` + strings.Join(attrs, " ") + "/>\n", true
}

// Context builds the render context for the droplet's own page. The content
// key is present only when the droplet has content.
func (d *Droplet) Context(conv *markup.Converter) pongo2.Context {
	ctx := pongo2.Context{
		"title": d.Title,
		"meta":  d.Meta.view(),
	}
	if d.Content != nil {
		ctx["content"] = conv.Convert(*d.Content)
	}
	if img, ok := d.ImageHTML(); ok {
		ctx["image"] = img
	}
	return ctx
}

func (m *Meta) view() map[string]any {
	v := map[string]any{
		"tags":   m.Tags,
		"author": m.Author,
		"date":   nil,
		"path":   nil,
	}
	if m.Date != nil {
		v["date"] = m.Date.String()
	}
	if p, ok := m.Path(); ok {
		v["path"] = p
	}
	return v
}

// view is the droplet as listed on index pages.
func (d *Droplet) view() map[string]any {
	v := map[string]any{
		"title":   d.Title,
		"meta":    d.Meta.view(),
		"image":   nil,
		"content": nil,
	}
	if d.Image != nil {
		img := map[string]any{"src": d.Image.Src, "alt": nil, "copyright": nil}
		if d.Image.Alt != nil {
			img["alt"] = *d.Image.Alt
		}
		if d.Image.Copyright != nil {
			img["copyright"] = *d.Image.Copyright
		}
		v["image"] = img
	}
	if d.Content != nil {
		v["content"] = *d.Content
	}
	if d.thumbnail != "" {
		v["thumbnail"] = d.thumbnail
	}
	return v
}
