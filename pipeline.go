package spindrift

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/flosch/pongo2/v6"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/spindrift/logger"
)

// IndexFile is the index page written at the output root.
const IndexFile = "index.html"

// Output sub-directories for grouped index pages.
const (
	TagDir    = "tags"
	AuthorDir = "authors"
)

type parseResult struct {
	path    string
	droplet *Droplet
	err     error
}

type renderResult struct {
	droplet *Droplet
	err     error
}

// Build renders every droplet in sourceDir into outputDir, followed by the
// index page and the optional outputs enabled in the build options.
//
// sourceDir is read in a single, non-recursive pass. Files with an accepted
// extension are parsed concurrently; each parsed droplet is then rendered
// concurrently, with template execution serialised by the engine. Droplets
// that fail to parse or render are counted in the Summary and skipped.
//
// The returned error is non-nil only when sourceDir cannot be read or
// outputDir cannot be created. An index render failure is reported in
// Summary.IndexErr.
func (s *Site) Build(ctx context.Context, sourceDir, outputDir string) (Summary, error) {
	start := time.Now()
	var sum Summary

	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return sum, newPathError(sourceDir, err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return sum, newPathError(outputDir, err)
	}

	var paths []string
	for _, entry := range entries {
		p := filepath.Join(sourceDir, entry.Name())
		if entry.IsDir() {
			sum.Directories++
			s.log.Infow("skipping directory", logger.FieldPath, p)
			continue
		}
		if !s.accepts(entry.Name()) {
			sum.Ignored++
			s.log.Infow("ignoring file", logger.FieldFile, p)
			continue
		}
		paths = append(paths, p)
	}

	var found atomic.Int64
	parsed := s.parseAll(paths, &found)
	rendered := s.renderAll(ctx, outputDir, parsed, &sum.ParseFailed)

	// Arrival order depends on which worker finishes first.
	for r := range rendered {
		if r.err != nil {
			sum.RenderFailed++
			s.log.Warnw("failed to render droplet",
				logger.FieldFile, r.droplet.Source(),
				logger.FieldError, r.err)
			continue
		}
		r.droplet.SetFileName()
		sum.Droplets = append(sum.Droplets, r.droplet)
	}
	sum.Found = int(found.Load())
	sum.Succeeded = len(sum.Droplets)
	sortDroplets(sum.Droplets)

	if err := s.renderIndex(ctx, outputDir, sum.Droplets); err != nil {
		sum.IndexErr = err
		s.log.Errorw("failed to render index", logger.FieldError, err)
	}
	s.writeExtras(ctx, outputDir, &sum)

	sum.Duration = time.Since(start)
	s.log.Infow("build finished",
		logger.FieldCount, sum.Succeeded,
		"failed", sum.Failed(),
		"ignored", sum.Ignored,
		logger.FieldDurationMS, sum.Duration.Milliseconds())
	return sum, nil
}

func (s *Site) accepts(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return false
	}
	_, ok := s.extensions[ext]
	return ok
}

func (s *Site) workerLimit() int {
	if s.concurrency <= 0 {
		return -1
	}
	return s.concurrency
}

// parseAll starts one parse unit per path and reports every result on the
// returned channel, which is closed once all units have reported.
func (s *Site) parseAll(paths []string, found *atomic.Int64) <-chan parseResult {
	out := make(chan parseResult)
	go func() {
		defer close(out)
		var g errgroup.Group
		g.SetLimit(s.workerLimit())
		for _, p := range paths {
			g.Go(func() error {
				found.Add(1)
				s.log.Infow("found droplet", logger.FieldFile, p)
				d, err := ParseDroplet(p)
				out <- parseResult{path: p, droplet: d, err: err}
				return nil
			})
		}
		_ = g.Wait()
	}()
	return out
}

// renderAll consumes parse results, counting failures into parseFailed and
// starting one render unit per parsed droplet. parseFailed is only written
// by this stage and is complete once the returned channel is closed.
func (s *Site) renderAll(ctx context.Context, outputDir string, parsed <-chan parseResult, parseFailed *int) <-chan renderResult {
	out := make(chan renderResult)
	go func() {
		defer close(out)
		var g errgroup.Group
		g.SetLimit(s.workerLimit())
		for r := range parsed {
			if r.err != nil {
				*parseFailed++
				s.log.Warnw("failed to parse droplet",
					logger.FieldFile, r.path,
					logger.FieldError, r.err)
				continue
			}
			d := r.droplet
			g.Go(func() error {
				out <- renderResult{droplet: d, err: s.renderDroplet(ctx, outputDir, d)}
				return nil
			})
		}
		_ = g.Wait()
	}()
	return out
}

func (s *Site) renderDroplet(ctx context.Context, outputDir string, d *Droplet) error {
	data := d.Context(s.conv)
	data["site"] = s.Config.Context()
	target := filepath.Join(outputDir, d.FileName())
	if err := s.engine.RenderFile(ctx, DropletTemplate, data, target); err != nil {
		return err
	}
	s.log.Infow("rendered droplet", logger.FieldFile, d.Source(), logger.FieldOutput, target)

	if width := s.Config.BuildOptions.ThumbnailWidth; width > 0 {
		thumb, err := writeThumbnail(outputDir, width, d)
		if err != nil {
			s.log.Warnw("failed to write thumbnail", logger.FieldFile, d.Source(), logger.FieldError, err)
		} else {
			d.thumbnail = thumb
		}
	}
	return nil
}

func (s *Site) renderIndex(ctx context.Context, outputDir string, droplets []*Droplet) error {
	data := s.Config.Context()
	data["droplets"] = s.views(droplets)
	return s.engine.RenderFile(ctx, IndexTemplate, data, filepath.Join(outputDir, IndexFile))
}

// views lists droplets for index-style templates, each with its page URL.
func (s *Site) views(droplets []*Droplet) []map[string]any {
	out := make([]map[string]any, 0, len(droplets))
	for _, d := range droplets {
		v := d.view()
		v["url"] = BuildURL(s.Config.BasePath, d.FileName())
		out = append(out, v)
	}
	return out
}

func (s *Site) writeExtras(ctx context.Context, outputDir string, sum *Summary) {
	opts := s.Config.BuildOptions
	if opts.Feed {
		if err := WriteFeed(filepath.Join(outputDir, FeedFile), s.Config, sum.Droplets); err != nil {
			sum.Warnings = append(sum.Warnings, err)
			s.log.Warnw("failed to write feed", logger.FieldError, err)
		}
	}
	if opts.Sitemap {
		if err := WriteSitemap(filepath.Join(outputDir, SitemapFile), s.Config.BasePath, sum.Droplets); err != nil {
			sum.Warnings = append(sum.Warnings, err)
			s.log.Warnw("failed to write sitemap", logger.FieldError, err)
		}
	}
	id, errs := s.renderGroups(ctx, outputDir, sum.Droplets)
	sum.BuildID = id
	sum.Warnings = append(sum.Warnings, errs...)
}

// renderGroups records the droplets in the catalog and renders one page per
// tag and per author when the matching templates exist.
func (s *Site) renderGroups(ctx context.Context, outputDir string, droplets []*Droplet) (string, []error) {
	opts := s.Config.BuildOptions
	wantTags := opts.BuildPostsByTag && s.engine.Has(TagTemplate)
	wantAuthors := opts.BuildPostsByAuthor && s.engine.Has(AuthorTemplate)
	if opts.BuildPostsByTag && !wantTags {
		s.log.Debugw("no tag template, skipping tag pages", logger.FieldTemplate, TagTemplate)
	}
	if opts.BuildPostsByAuthor && !wantAuthors {
		s.log.Debugw("no author template, skipping author pages", logger.FieldTemplate, AuthorTemplate)
	}
	if !wantTags && !wantAuthors && opts.Catalog == "" {
		return "", nil
	}

	cat, err := OpenCatalog(opts.Catalog)
	if err != nil {
		return "", []error{err}
	}
	defer cat.Close()
	id, err := cat.Begin(ctx)
	if err != nil {
		return "", []error{err}
	}
	bySource := make(map[string]*Droplet, len(droplets))
	for _, d := range droplets {
		bySource[d.Source()] = d
		if err := cat.SaveDroplet(ctx, d); err != nil {
			return id, []error{err}
		}
	}
	s.log.Debugw("catalog ready", logger.FieldBuildID, id, logger.FieldCount, len(droplets))

	var errs []error
	if wantTags {
		errs = append(errs, s.renderGroup(ctx, cat.Tags, cat.SourcesByTag, bySource,
			TagTemplate, filepath.Join(outputDir, TagDir), "tag")...)
	}
	if wantAuthors {
		errs = append(errs, s.renderGroup(ctx, cat.Authors, cat.SourcesByAuthor, bySource,
			AuthorTemplate, filepath.Join(outputDir, AuthorDir), "")...)
	}
	return id, errs
}

// renderGroup writes one page per slug. Names that share a slug (such as
// "go" and "go!") are merged into a single page named after the first of
// them, so no page overwrites another.
func (s *Site) renderGroup(
	ctx context.Context,
	names func(context.Context) ([]string, error),
	sources func(context.Context, string) ([]string, error),
	bySource map[string]*Droplet,
	template, dir, key string,
) []error {
	list, err := names(ctx)
	if err != nil {
		return []error{err}
	}

	var slugs []string
	bySlug := make(map[string][]string)
	for _, name := range list {
		slug := Slugify(name)
		if slug == "" {
			s.log.Warnw("skipping group without a usable name", logger.FieldTemplate, template, "name", name)
			continue
		}
		if _, seen := bySlug[slug]; !seen {
			slugs = append(slugs, slug)
		} else {
			s.log.Warnw("merging groups with the same slug",
				logger.FieldTemplate, template, "name", name, "into", bySlug[slug][0])
		}
		bySlug[slug] = append(bySlug[slug], name)
	}

	var errs []error
	for _, slug := range slugs {
		members := bySlug[slug]
		group, err := s.collectGroup(ctx, members, sources, bySource)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		name := members[0]
		data := s.Config.Context()
		data.Update(pongo2.Context{
			"name":     name,
			"droplets": s.views(group),
		})
		if key != "" {
			data[key] = name
		}
		target := filepath.Join(dir, slug+".html")
		if err := s.engine.RenderFile(ctx, template, data, target); err != nil {
			errs = append(errs, err)
			s.log.Warnw("failed to render group page", logger.FieldOutput, target, logger.FieldError, err)
		}
	}
	return errs
}

// collectGroup gathers the droplets of every member name once each, in index
// order.
func (s *Site) collectGroup(
	ctx context.Context,
	members []string,
	sources func(context.Context, string) ([]string, error),
	bySource map[string]*Droplet,
) ([]*Droplet, error) {
	seen := make(map[string]struct{})
	var group []*Droplet
	for _, name := range members {
		srcs, err := sources(ctx, name)
		if err != nil {
			return nil, err
		}
		for _, src := range srcs {
			d, ok := bySource[src]
			if !ok {
				continue
			}
			if _, dup := seen[src]; dup {
				continue
			}
			seen[src] = struct{}{}
			group = append(group, d)
		}
	}
	if len(members) > 1 {
		sortDroplets(group)
	}
	return group, nil
}

// sortDroplets orders droplets newest first, undated last, then by title
// and source path so the index does not depend on worker timing.
func sortDroplets(ds []*Droplet) {
	sort.SliceStable(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		switch {
		case a.Meta.Date != nil && b.Meta.Date == nil:
			return true
		case a.Meta.Date == nil && b.Meta.Date != nil:
			return false
		case a.Meta.Date != nil && !a.Meta.Date.Equal(b.Meta.Date.Time):
			return a.Meta.Date.After(b.Meta.Date.Time)
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.Source() < b.Source()
	})
}
