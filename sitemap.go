package spindrift

import "encoding/xml"

// SitemapFile is the sitemap written at the output root.
const SitemapFile = "sitemap.xml"

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func buildSitemap(base string, droplets []*Droplet) sitemapURLSet {
	urls := []sitemapURL{
		{Loc: BuildURL(base)},
	}
	for _, d := range droplets {
		u := sitemapURL{Loc: BuildURL(base, d.FileName())}
		if d.Meta.Date != nil {
			u.LastMod = d.Meta.Date.String()
		}
		urls = append(urls, u)
	}
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
}

// WriteSitemap writes a sitemap listing the index and every droplet page.
func WriteSitemap(path, base string, droplets []*Droplet) error {
	return writeXML(path, buildSitemap(base, droplets))
}
