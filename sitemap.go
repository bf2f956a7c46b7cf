package site

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

func lastMod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// buildSitemap lists the home and search pages followed by every published
// post, project and published doc.
func (a *App) buildSitemap(cat *Catalog, now time.Time) sitemapURLSet {
	base := a.Config.Site.URL
	urls := []sitemapURL{
		{Loc: BuildURL(base) + "/", LastMod: lastMod(now), ChangeFreq: "daily", Priority: "1.0"},
		{Loc: BuildURL(base, "search"), LastMod: lastMod(now), ChangeFreq: "weekly", Priority: "0.8"},
	}
	for _, p := range cat.Posts {
		urls = append(urls, sitemapURL{
			Loc:        BuildURL(base, "blog", p.Slug),
			LastMod:    lastMod(p.UpdatedAt),
			ChangeFreq: "weekly",
			Priority:   "0.9",
		})
	}
	for _, p := range cat.Projects {
		urls = append(urls, sitemapURL{
			Loc:        BuildURL(base, "projects", p.Slug),
			LastMod:    lastMod(p.UpdatedAt),
			ChangeFreq: "monthly",
			Priority:   "0.8",
		})
	}
	for _, d := range cat.Docs {
		urls = append(urls, sitemapURL{
			Loc:        BuildURL(base, "docs", d.Slug),
			LastMod:    lastMod(d.UpdatedAt),
			ChangeFreq: "weekly",
			Priority:   "0.7",
		})
	}
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
}

func (a *App) renderSitemap(c echo.Context, cat *Catalog) error {
	sitemap := a.buildSitemap(cat, time.Now())
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
