package spindrift

import (
	"net/url"
	"path"
	"strings"
)

// Slugify converts a tag or author name to a URL-safe slug. Unlike
// FileName it collapses runs of other characters into a single hyphen.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with path segments. Unlike directory-style
// routes, generated pages are files, so no trailing slash is added.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	if len(pathSegments) == 0 {
		if u.Path == "" {
			u.Path = "/"
		}
		return u.String()
	}
	u.Path = path.Join("/", u.Path, path.Join(pathSegments...))
	return u.String()
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(t, ",", " ")))
}
