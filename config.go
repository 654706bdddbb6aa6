package spindrift

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/flosch/pongo2/v6"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/eringen/spindrift/markup"
)

// DefaultConfigPath is where the CLI looks for the project file.
const DefaultConfigPath = "spindrift.yaml"

// DefaultExtensions are the droplet file extensions accepted by default.
var DefaultExtensions = []string{"yaml", "yml"}

// SiteConfig holds the project-wide settings from spindrift.yaml.
type SiteConfig struct {
	// Author is the project-wide author. It is exposed to the index template
	// but is not copied into droplets that lack one.
	Author      string `mapstructure:"author"`
	Copyright   string `mapstructure:"copyright"`
	Description string `mapstructure:"description"`
	ProjectName string `mapstructure:"project_name"` // required, shown as the index title
	BasePath    string `mapstructure:"base_path"`    // required, e.g. https://blog.example.com/

	BuildOptions BuildOptions `mapstructure:"build_options"`
}

// BuildOptions toggles the extra pages and artifacts produced by a build.
type BuildOptions struct {
	BuildPostsByAuthor bool   `mapstructure:"build_posts_by_author"` // author pages (default false)
	BuildPostsByTag    bool   `mapstructure:"build_posts_by_tag"`    // tag pages (default true)
	Feed               bool   `mapstructure:"feed"`                  // feed.xml (default true)
	Sitemap            bool   `mapstructure:"sitemap"`               // sitemap.xml (default true)
	ThumbnailWidth     int    `mapstructure:"thumbnail_width"`       // 0 disables thumbnails
	Catalog            string `mapstructure:"catalog"`               // SQLite file, in-memory when empty
}

// configKeys lists every key that can be set from the environment. Keys that
// are absent from the file are only read from the environment when bound.
var configKeys = []string{
	"author",
	"copyright",
	"description",
	"project_name",
	"base_path",
	"build_options.build_posts_by_author",
	"build_options.build_posts_by_tag",
	"build_options.feed",
	"build_options.sitemap",
	"build_options.thumbnail_width",
	"build_options.catalog",
}

// bindEnvVars binds each config key to its SPINDRIFT_ variable, e.g.
// build_options.feed to SPINDRIFT_BUILD_OPTIONS_FEED.
func bindEnvVars(v *viper.Viper) error {
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return errors.Wrapf(err, "bind env for %s", key)
		}
	}
	return nil
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("build_options.build_posts_by_author", false)
	v.SetDefault("build_options.build_posts_by_tag", true)
	v.SetDefault("build_options.feed", true)
	v.SetDefault("build_options.sitemap", true)
	v.SetDefault("build_options.thumbnail_width", 0)
	v.SetDefault("build_options.catalog", "")
}

// LoadConfig reads the project file at path. Values can be overridden with
// SPINDRIFT_-prefixed environment variables, e.g. SPINDRIFT_BASE_PATH.
func LoadConfig(path string) (SiteConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SPINDRIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setConfigDefaults(v)
	if err := bindEnvVars(v); err != nil {
		return SiteConfig{}, newConfigError(path, err)
	}

	if err := v.ReadInConfig(); err != nil {
		return SiteConfig{}, newConfigError(path, err)
	}
	var cfg SiteConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return SiteConfig{}, newConfigError(path, err)
	}
	if err := cfg.validate(); err != nil {
		return SiteConfig{}, newConfigError(path, err)
	}
	return cfg, nil
}

func (c SiteConfig) validate() error {
	if strings.TrimSpace(c.ProjectName) == "" {
		return errors.WithHint(errors.New("missing field project_name"), "set project_name in spindrift.yaml")
	}
	if strings.TrimSpace(c.BasePath) == "" {
		return errors.WithHint(errors.New("missing field base_path"), "set base_path to the site root URL")
	}
	return nil
}

// Context returns the project fields shared by index-style pages.
func (c SiteConfig) Context() pongo2.Context {
	ctx := pongo2.Context{
		"project_name": c.ProjectName,
		"base_path":    c.BasePath,
	}
	if c.Description != "" {
		ctx["description"] = c.Description
	}
	if c.Author != "" {
		ctx["author"] = c.Author
	}
	if c.Copyright != "" {
		ctx["copyright"] = c.Copyright
	}
	return ctx
}

// Option configures additional Site behavior.
type Option func(*Site)

// WithLogger sets the logger used for per-file progress lines.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Site) {
		if l != nil {
			s.log = l
		}
	}
}

// WithConcurrency caps the number of parse and render workers running at
// once. Values <= 0 start one worker per file.
func WithConcurrency(n int) Option {
	return func(s *Site) {
		s.concurrency = n
	}
}

// WithExtensions replaces the accepted droplet extensions. A leading dot is
// optional.
func WithExtensions(exts ...string) Option {
	return func(s *Site) {
		s.extensions = normalizeExtensions(exts)
	}
}

// WithConverter shares an existing markup converter.
func WithConverter(c *markup.Converter) Option {
	return func(s *Site) {
		if c != nil {
			s.conv = c
		}
	}
}

// WithTemplateDir sets the directory templates are loaded from (default
// "templates").
func WithTemplateDir(dir string) Option {
	return func(s *Site) {
		s.templateDir = dir
	}
}

func normalizeExtensions(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return set
}
