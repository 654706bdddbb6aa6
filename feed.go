package spindrift

import (
	"encoding/xml"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// FeedFile is the RSS feed written at the output root.
const FeedFile = "feed.xml"

const feedSummaryRunes = 280

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Copyright   string    `xml:"copyright,omitempty"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        string   `xml:"guid"`
	Categories  []string `xml:"category"`
}

func buildFeed(cfg SiteConfig, droplets []*Droplet) rssXML {
	items := make([]rssItem, 0, len(droplets))
	for _, d := range droplets {
		pubDate := ""
		if d.Meta.Date != nil {
			pubDate = d.Meta.Date.Time.Format(time.RFC1123Z)
		}
		link := BuildURL(cfg.BasePath, d.FileName())
		items = append(items, rssItem{
			Title:       d.Title,
			Link:        link,
			Description: d.excerpt(feedSummaryRunes),
			PubDate:     pubDate,
			GUID:        link,
			Categories:  d.Meta.Tags,
		})
	}
	return rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.ProjectName,
			Link:        BuildURL(cfg.BasePath),
			Description: cfg.Description,
			Copyright:   cfg.Copyright,
			Items:       items,
		},
	}
}

// WriteFeed writes an RSS 2.0 feed for droplets to path.
func WriteFeed(path string, cfg SiteConfig, droplets []*Droplet) error {
	return writeXML(path, buildFeed(cfg, droplets))
}

func writeXML(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()
	if _, err := f.WriteString(xml.Header); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	return f.Close()
}

// excerpt is the first line of the droplet's raw content, cut to max runes.
func (d *Droplet) excerpt(max int) string {
	if d.Content == nil {
		return ""
	}
	first, _, _ := strings.Cut(strings.TrimSpace(*d.Content), "\n")
	first = strings.TrimSpace(first)
	if utf8.RuneCountInString(first) <= max {
		return first
	}
	runes := []rune(first)
	return strings.TrimSpace(string(runes[:max])) + "…"
}
