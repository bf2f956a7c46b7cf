package site

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Locale selects which of the bilingual columns is rendered.
type Locale string

const (
	LocalePT Locale = "pt"
	LocaleEN Locale = "en"

	DefaultLocale = LocalePT
)

// Locales lists the supported locales in preference order.
var Locales = []Locale{LocalePT, LocaleEN}

// ParseLocale returns the matching Locale, or false for anything unsupported.
func ParseLocale(s string) (Locale, bool) {
	switch Locale(strings.ToLower(strings.TrimSpace(s))) {
	case LocalePT:
		return LocalePT, true
	case LocaleEN:
		return LocaleEN, true
	}
	return "", false
}

// Localized picks the column for loc and falls back to the other language
// when that column is empty.
func Localized(loc Locale, pt, en string) string {
	if loc == LocaleEN {
		if strings.TrimSpace(en) != "" {
			return en
		}
		return pt
	}
	if strings.TrimSpace(pt) != "" {
		return pt
	}
	return en
}

// LinkKeys is the canonical order of the external links an author or project may carry.
var LinkKeys = []string{"github", "demo", "website", "twitter", "linkedin", "youtube"}

// LinkLabels maps each link key to its display label.
var LinkLabels = map[string]string{
	"github":   "GitHub",
	"demo":     "Demo",
	"website":  "Website",
	"twitter":  "Twitter / X",
	"linkedin": "LinkedIn",
	"youtube":  "YouTube",
}

// Links holds external URLs keyed by link key. It is stored as a JSON object
// and an empty set is stored as NULL.
type Links map[string]string

// Link is a single resolved entry of Links.
type Link struct {
	Key   string
	Label string
	URL   string
}

// Sorted returns the non-empty links in LinkKeys order.
func (l Links) Sorted() []Link {
	var out []Link
	for _, k := range LinkKeys {
		if u := strings.TrimSpace(l[k]); u != "" {
			out = append(out, Link{Key: k, Label: LinkLabels[k], URL: u})
		}
	}
	return out
}

// Value implements driver.Valuer.
func (l Links) Value() (driver.Value, error) {
	clean := make(map[string]string, len(l))
	for k, v := range l {
		if v = strings.TrimSpace(v); v != "" {
			clean[k] = v
		}
	}
	if len(clean) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(clean)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *Links) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("links: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("links: %w", err)
	}
	*l = m
	return nil
}

// Author writes blog posts.
type Author struct {
	ID        string
	Name      string
	Bio       string
	PhotoURL  string
	Links     Links
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Category groups blog posts.
type Category struct {
	ID            string
	Slug          string
	TitlePT       string
	TitleEN       string
	DescriptionPT string
	DescriptionEN string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (c Category) Title(loc Locale) string { return Localized(loc, c.TitlePT, c.TitleEN) }

func (c Category) Description(loc Locale) string {
	return Localized(loc, c.DescriptionPT, c.DescriptionEN)
}

// BlogPost is a bilingual article. Author and Categories are resolved by the store.
type BlogPost struct {
	ID          string
	Slug        string
	TitlePT     string
	TitleEN     string
	ContentPT   string
	ContentEN   string
	AuthorID    string
	Published   bool
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Author     *Author
	Categories []Category
}

func (p BlogPost) Title(loc Locale) string   { return Localized(loc, p.TitlePT, p.TitleEN) }
func (p BlogPost) Content(loc Locale) string { return Localized(loc, p.ContentPT, p.ContentEN) }

// Link returns the public path of the post.
func (p BlogPost) Link() string { return "/blog/" + p.Slug + "/" }

// Date returns the publication date, or the last update for drafts.
func (p BlogPost) Date() time.Time {
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return p.UpdatedAt
}

// CategoryIDs returns the IDs of the resolved categories.
func (p BlogPost) CategoryIDs() []string {
	ids := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

// Project is a portfolio entry.
type Project struct {
	ID            string
	Slug          string
	NamePT        string
	NameEN        string
	DescriptionPT string
	DescriptionEN string
	Icon          string
	Links         Links
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p Project) Name(loc Locale) string { return Localized(loc, p.NamePT, p.NameEN) }

func (p Project) Description(loc Locale) string {
	return Localized(loc, p.DescriptionPT, p.DescriptionEN)
}

func (p Project) Link() string { return "/projects/" + p.Slug + "/" }

// Doc is a documentation page, optionally nested under a parent and tied to a project.
type Doc struct {
	ID        string
	Slug      string
	TitlePT   string
	TitleEN   string
	ContentPT string
	ContentEN string
	ParentID  string
	ProjectID string
	Position  int
	Published bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d Doc) Title(loc Locale) string   { return Localized(loc, d.TitlePT, d.TitleEN) }
func (d Doc) Content(loc Locale) string { return Localized(loc, d.ContentPT, d.ContentEN) }
func (d Doc) Link() string              { return "/docs/" + d.Slug + "/" }

// DocNode is a Doc with its children, used for the docs navigation tree.
type DocNode struct {
	Doc
	Children []DocNode
}

// Comment is a reader comment on a blog post. Only approved comments are public.
type Comment struct {
	ID        string
	PostID    string
	Name      string
	Email     string
	Content   string
	Approved  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Media is the metadata of an object stored in the media bucket.
type Media struct {
	Path         string
	OriginalName string
	ContentType  string
	Size         int64
	Width        int
	Height       int
	CreatedAt    time.Time
}

// URL returns the public path of the object.
func (m Media) URL() string { return "/media/" + m.Path }

// Result types returned by Search.
const (
	ResultBlogPost = "blog_post"
	ResultProject  = "project"
	ResultDoc      = "doc"
)

// SearchResult is a single ranked hit from any of the searchable tables.
type SearchResult struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Snippet     string     `json:"content"`
	Type        string     `json:"type"`
	Slug        string     `json:"slug"`
	URL         string     `json:"url"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Score       float64    `json:"score"`
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title         string
	Description   string
	URL           string // canonical + og:url
	OGType        string // "website" or "article"
	Image         string
	PublishedTime string
	Author        string
	JSONLD        string
}
