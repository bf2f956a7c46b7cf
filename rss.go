package site

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/monynha/site/content"
)

const (
	feedLimit       = 50
	feedDescription = 300
)

type rssXML struct {
	XMLName   xml.Name   `xml:"rss"`
	Version   string     `xml:"version,attr"`
	ContentNS string     `xml:"xmlns:content,attr"`
	AtomNS    string     `xml:"xmlns:atom,attr"`
	Channel   rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate"`
	AtomLink      atomLink  `xml:"atom:link"`
	Editor        string    `xml:"managingEditor,omitempty"`
	Items         []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       cdata    `xml:"title"`
	Link        string   `xml:"link"`
	Description cdata    `xml:"description"`
	Content     cdata    `xml:"content:encoded"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
}

type cdata struct {
	Text string `xml:",cdata"`
}

// buildFeed turns the newest published posts into an RSS 2.0 channel.
func (a *App) buildFeed(posts []BlogPost, loc Locale, now time.Time) rssXML {
	site := a.Config.Site
	base := BuildURL(site.URL)
	lang := "pt-BR"
	if loc == LocaleEN {
		lang = "en"
	}

	posts = head(posts, feedLimit)
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		postURL := BuildURL(base, "blog", p.Slug)
		body := content.Render(p.Content(loc))
		var author string
		if site.Email != "" {
			name := site.Title(loc)
			if p.Author != nil {
				name = p.Author.Name
			}
			author = site.Email + " (" + name + ")"
		}
		cats := make([]string, 0, len(p.Categories))
		for _, c := range p.Categories {
			cats = append(cats, c.Title(loc))
		}
		items = append(items, rssItem{
			Title:       cdata{p.Title(loc)},
			Link:        postURL,
			Description: cdata{content.Summary(body, feedDescription)},
			Content:     cdata{body},
			PubDate:     p.Date().UTC().Format(time.RFC1123Z),
			GUID:        postURL,
			Author:      author,
			Categories:  cats,
		})
	}

	var editor string
	if site.Email != "" {
		editor = site.Email + " (" + site.Title(loc) + ")"
	}
	return rssXML{
		Version:   "2.0",
		ContentNS: "http://purl.org/rss/1.0/modules/content/",
		AtomNS:    "http://www.w3.org/2005/Atom",
		Channel: rssChannel{
			Title:         site.Title(loc),
			Link:          base,
			Description:   site.Description(loc),
			Language:      lang,
			LastBuildDate: now.UTC().Format(time.RFC1123Z),
			AtomLink: atomLink{
				Href: base + "/api/rss",
				Rel:  "self",
				Type: "application/rss+xml",
			},
			Editor: editor,
			Items:  items,
		},
	}
}

func (a *App) renderRSS(c echo.Context, posts []BlogPost) error {
	feed := a.buildFeed(posts, LocaleOf(c), time.Now())
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(feed)
}
