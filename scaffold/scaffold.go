// Package scaffold provides the embedded starter project written by
// "spindrift new".
package scaffold

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/cockroachdb/errors"
)

// Templates contains all scaffold files. Files with a .tmpl suffix are
// executed with text/template; everything else (including the pongo2 page
// templates) is copied as is.
//
//go:embed all:templates
var Templates embed.FS

const root = "templates"

// Data holds the variables passed to every .tmpl file.
type Data struct {
	ProjectName string
	SiteName    string
	Author      string
	BasePath    string
	Year        int
	Date        string
}

// NewData derives scaffold variables from a project directory name.
func NewData(dir, author, basePath string) Data {
	name := filepath.Base(filepath.Clean(dir))
	if author == "" {
		author = "Anonymous"
	}
	if basePath == "" {
		basePath = "http://localhost:8080/"
	}
	now := time.Now()
	return Data{
		ProjectName: name,
		SiteName:    ToTitle(name),
		Author:      author,
		BasePath:    basePath,
		Year:        now.Year(),
		Date:        now.Format("2006-01-02"),
	}
}

// Generate writes the starter project into dir, which must not exist yet.
// It returns the created files relative to dir.
func Generate(dir string, data Data) ([]string, error) {
	if _, err := os.Stat(dir); err == nil {
		return nil, errors.Newf("directory %q already exists", dir)
	}

	var created []string
	err := fs.WalkDir(Templates, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		outPath := filepath.Join(dir, strings.TrimSuffix(rel, ".tmpl"))
		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		content, err := Templates.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "read %s", path)
		}
		if strings.HasSuffix(path, ".tmpl") {
			if content, err = execute(path, content, data); err != nil {
				return err
			}
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(outPath, content, 0o644); err != nil {
			return errors.Wrapf(err, "create %s", outPath)
		}
		created = append(created, strings.TrimSuffix(rel, ".tmpl"))
		return nil
	})
	if err != nil {
		return created, err
	}
	return created, nil
}

func execute(path string, content []byte, data Data) ([]byte, error) {
	tmpl, err := template.New(filepath.Base(path)).Parse(string(content))
	if err != nil {
		return nil, errors.Wrapf(err, "parse template %s", path)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return nil, errors.Wrapf(err, "execute template %s", path)
	}
	return []byte(b.String()), nil
}

// ToTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-blog" -> "My Blog", "myblog" -> "Myblog"
func ToTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
