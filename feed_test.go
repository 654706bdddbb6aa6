package spindrift

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFeed(t *testing.T) {
	cfg := testConfig()
	cfg.Copyright = "2024 Ada"
	long := strings.Repeat("word ", 100) + "\nsecond line"
	droplets := []*Droplet{
		catalogDroplet("a.yaml", "Dated", "Ada", "2024-05-06", "go"),
		catalogDroplet("b.yaml", "Undated", "Ada", ""),
	}
	droplets[0].Content = &long

	feed := buildFeed(cfg, droplets)
	assert.Equal(t, "2.0", feed.Version)
	assert.Equal(t, "Test Site", feed.Channel.Title)
	assert.Equal(t, "https://example.com/", feed.Channel.Link)
	assert.Equal(t, "2024 Ada", feed.Channel.Copyright)
	require.Len(t, feed.Channel.Items, 2)

	first := feed.Channel.Items[0]
	assert.Equal(t, "https://example.com/dated.html", first.Link)
	assert.Equal(t, first.Link, first.GUID)
	assert.Equal(t, "Mon, 06 May 2024 00:00:00 +0000", first.PubDate)
	assert.Equal(t, []string{"go"}, first.Categories)
	assert.True(t, strings.HasSuffix(first.Description, "…"))
	assert.NotContains(t, first.Description, "second line")

	assert.Empty(t, feed.Channel.Items[1].PubDate)
	assert.Empty(t, feed.Channel.Items[1].Description)
}

func TestExcerpt(t *testing.T) {
	content := "  short first line  \nmore"
	d := &Droplet{Content: &content}
	assert.Equal(t, "short first line", d.excerpt(50))
	assert.Equal(t, "short…", d.excerpt(6))
	assert.Empty(t, (&Droplet{}).excerpt(10))
}

func TestWriteFeedAndSitemap(t *testing.T) {
	dir := t.TempDir()
	droplets := []*Droplet{catalogDroplet("a.yaml", "Hello & Bye", "Ada", "2024-01-01")}

	feedPath := filepath.Join(dir, FeedFile)
	require.NoError(t, WriteFeed(feedPath, testConfig(), droplets))
	data, err := os.ReadFile(feedPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), xml.Header))
	assert.Contains(t, string(data), "<title>Hello &amp; Bye</title>")

	var decoded rssXML
	require.NoError(t, xml.Unmarshal(data, &decoded))
	assert.Len(t, decoded.Channel.Items, 1)

	mapPath := filepath.Join(dir, SitemapFile)
	require.NoError(t, WriteSitemap(mapPath, "https://example.com/blog/", droplets))
	var set sitemapURLSet
	require.NoError(t, xml.Unmarshal([]byte(readFile(t, mapPath)), &set))
	require.Len(t, set.URLs, 2)
	assert.Equal(t, "https://example.com/blog/", set.URLs[0].Loc)
	assert.Equal(t, "https://example.com/blog/hello--bye.html", set.URLs[1].Loc)
	assert.Equal(t, "2024-01-01", set.URLs[1].LastMod)
}

func TestWriteFeedUnwritable(t *testing.T) {
	err := WriteFeed(filepath.Join(t.TempDir(), "missing", FeedFile), testConfig(), nil)
	require.Error(t, err)
}
