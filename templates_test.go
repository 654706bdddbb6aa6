package spindrift

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/flosch/pongo2/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/spindrift/markup"
)

func TestNewEngine(t *testing.T) {
	dir := setupTemplates(t, map[string]string{
		DropletTemplate: testDropletTemplate,
		IndexTemplate:   testIndexTemplate,
		TagTemplate:     testTagTemplate,
	})
	e, err := NewEngine(dir, markup.New())
	require.NoError(t, err)

	assert.Equal(t, dir, e.Dir())
	assert.True(t, e.Has(DropletTemplate))
	assert.True(t, e.Has(IndexTemplate))
	assert.True(t, e.Has(TagTemplate))
	assert.False(t, e.Has(AuthorTemplate))
}

func TestNewEngineErrors(t *testing.T) {
	tests := []struct {
		name      string
		templates map[string]string
	}{
		{"missing index", map[string]string{DropletTemplate: "ok"}},
		{"missing droplet", map[string]string{IndexTemplate: "ok"}},
		{"syntax error", map[string]string{DropletTemplate: "{% if %}", IndexTemplate: "ok"}},
		{"bad optional template", map[string]string{DropletTemplate: "ok", IndexTemplate: "ok", TagTemplate: "{% for %}"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(setupTemplates(t, tt.templates), markup.New())
			var tplErr *TemplateError
			require.True(t, errors.As(err, &tplErr), "got %v", err)
		})
	}

	t.Run("missing dir", func(t *testing.T) {
		_, err := NewEngine(filepath.Join(t.TempDir(), "nope"), markup.New())
		var tplErr *TemplateError
		require.True(t, errors.As(err, &tplErr), "got %v", err)
	})

	t.Run("file instead of dir", func(t *testing.T) {
		path := writeFile(t, filepath.Join(t.TempDir(), "file"), "x")
		_, err := NewEngine(path, markup.New())
		var tplErr *TemplateError
		require.True(t, errors.As(err, &tplErr), "got %v", err)
	})
}

func TestEngineComponent(t *testing.T) {
	dir := setupTemplates(t, map[string]string{
		DropletTemplate: `{{ markup(body) }}|{{ raw }}`,
		IndexTemplate:   "index",
	})
	e, err := NewEngine(dir, markup.New())
	require.NoError(t, err)

	var buf bytes.Buffer
	err = e.Component(DropletTemplate, pongo2.Context{"body": "a _b_", "raw": "<i>"}).Render(t.Context(), &buf)
	require.NoError(t, err)
	assert.Equal(t, `<p class="droplet-text">a <em>b</em></p>`+"\n"+`|&lt;i&gt;`, buf.String())

	err = e.Component(TagTemplate, nil).Render(t.Context(), &buf)
	var tplErr *TemplateError
	assert.True(t, errors.As(err, &tplErr))
}

func TestEngineRenderFile(t *testing.T) {
	e, err := NewEngine(setupTemplates(t, map[string]string{
		DropletTemplate: "{{ title }}",
		IndexTemplate:   "index",
	}), markup.New())
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "nested", "dir", "page.html")
	require.NoError(t, e.RenderFile(t.Context(), DropletTemplate, pongo2.Context{"title": "Hi"}, out))
	assert.Equal(t, "Hi", readFile(t, out))

	// A directory in place of the target file makes the write fail.
	blocked := filepath.Join(t.TempDir(), "blocked.html")
	require.NoError(t, os.Mkdir(blocked, 0o755))
	err = e.RenderFile(t.Context(), DropletTemplate, pongo2.Context{"title": "Hi"}, blocked)
	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr), "got %v", err)
	assert.Equal(t, blocked, renderErr.Path)
	assert.Equal(t, DropletTemplate, renderErr.Template)
}

func TestSiteReloadTemplates(t *testing.T) {
	dir := setupTemplates(t, nil)
	site, err := New(testConfig(), WithTemplateDir(dir))
	require.NoError(t, err)
	before := site.Engine()
	assert.False(t, before.Has(TagTemplate))

	writeFile(t, filepath.Join(dir, TagTemplate), testTagTemplate)
	require.NoError(t, site.ReloadTemplates())
	assert.True(t, site.Engine().Has(TagTemplate))

	// A broken template keeps the previous engine.
	writeFile(t, filepath.Join(dir, IndexTemplate), "{% if %}")
	require.Error(t, site.ReloadTemplates())
	assert.True(t, site.Engine().Has(TagTemplate))
	assert.Equal(t, dir, site.TemplateDir())
}

func TestNewSiteMissingTemplates(t *testing.T) {
	_, err := New(testConfig(), WithTemplateDir(filepath.Join(t.TempDir(), "missing")))
	var tplErr *TemplateError
	require.True(t, errors.As(err, &tplErr), "got %v", err)
}
