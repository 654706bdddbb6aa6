package spindrift

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Catalog indexes the droplets rendered by a build in SQLite so tag and
// author pages can be assembled with queries. Each build starts from an empty
// catalog; nothing is carried over between runs.
type Catalog struct {
	db      *sql.DB
	buildID string
}

// OpenCatalog opens (or creates) the catalog database at path. An empty
// path keeps the catalog in memory.
func OpenCatalog(path string) (*Catalog, error) {
	dsn := path
	if path == "" {
		dsn = ":memory:"
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// Every connection to :memory: is a separate database, so the pool is
	// pinned to one connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	c := &Catalog{db: db}
	if err := c.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the underlying database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) ensureSchema() error {
	_, err := c.db.Exec(`
CREATE TABLE IF NOT EXISTS builds (
    id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS droplets (
    build_id TEXT NOT NULL,
    source TEXT NOT NULL,
    file TEXT NOT NULL,
    title TEXT NOT NULL,
    author TEXT NOT NULL,
    date TEXT NOT NULL,
    tags TEXT NOT NULL,
    PRIMARY KEY (build_id, source)
);
`)
	return err
}

// Begin clears the catalog and starts a new build, returning its id.
func (c *Catalog) Begin(ctx context.Context) (string, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM droplets`); err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM builds`); err != nil {
		return "", err
	}
	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `INSERT INTO builds (id, started_at) VALUES (?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	c.buildID = id
	return id, nil
}

// BuildID returns the id of the current build, empty before Begin.
func (c *Catalog) BuildID() string {
	return c.buildID
}

// SaveDroplet records a rendered droplet under the current build.
func (c *Catalog) SaveDroplet(ctx context.Context, d *Droplet) error {
	if c.buildID == "" {
		return errors.New("catalog: SaveDroplet called before Begin")
	}
	file, _ := d.Meta.Path()
	date := ""
	if d.Meta.Date != nil {
		date = d.Meta.Date.String()
	}
	_, err := c.db.ExecContext(ctx, `
INSERT INTO droplets (build_id, source, file, title, author, date, tags)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(build_id, source) DO UPDATE SET
    file = excluded.file,
    title = excluded.title,
    author = excluded.author,
    date = excluded.date,
    tags = excluded.tags
`, c.buildID, d.Source(), file, d.Title, d.Meta.Author, date, joinTagsForStore(d.Meta.Tags))
	return err
}

// Tags returns the sorted, deduplicated tags of the current build.
func (c *Catalog) Tags(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT tags FROM droplets WHERE build_id = ?`, c.buildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range parseStoredTags(tags) {
			set[t] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

// Authors returns the distinct authors of the current build in order.
func (c *Catalog) Authors(ctx context.Context) ([]string, error) {
	return c.strings(ctx, `SELECT DISTINCT author FROM droplets WHERE build_id = ? ORDER BY author`, c.buildID)
}

// SourcesByTag returns the source paths of droplets carrying tag, newest
// first.
func (c *Catalog) SourcesByTag(ctx context.Context, tag string) ([]string, error) {
	return c.strings(ctx, `
SELECT source FROM droplets
WHERE build_id = ? AND instr(tags, ',' || ? || ',') > 0
ORDER BY date DESC, title, source`, c.buildID, normalizeTag(tag))
}

// SourcesByAuthor returns the source paths of droplets by author, newest
// first.
func (c *Catalog) SourcesByAuthor(ctx context.Context, author string) ([]string, error) {
	return c.strings(ctx, `
SELECT source FROM droplets
WHERE build_id = ? AND author = ?
ORDER BY date DESC, title, source`, c.buildID, author)
}

// Count returns the number of droplets recorded for the current build.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM droplets WHERE build_id = ?`, c.buildID).Scan(&n)
	return n, err
}

func (c *Catalog) strings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// joinTagsForStore stores tags as ",a,b," so a single tag can be matched
// with instr.
func joinTagsForStore(tags []string) string {
	var kept []string
	for _, t := range tags {
		if n := normalizeTag(t); n != "" {
			kept = append(kept, n)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return "," + strings.Join(kept, ",") + ","
}

func parseStoredTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
