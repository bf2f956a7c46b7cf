package site

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/monynha/site/content"
)

func stripDiacritics(s string) string {
	// Chains carry state, so each call builds its own.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return stripped
}

// Slugify converts a title to a URL-safe slug, folding accents to ASCII.
func Slugify(s string) string {
	s = strings.ToLower(stripDiacritics(strings.TrimSpace(s)))
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

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// RelatedPosts finds posts that share at least one category with current.
func RelatedPosts(current BlogPost, posts []BlogPost, limit int) []BlogPost {
	ids := make(map[string]struct{}, len(current.Categories))
	for _, c := range current.Categories {
		ids[c.ID] = struct{}{}
	}
	var related []BlogPost
	for _, p := range posts {
		if p.ID == current.ID {
			continue
		}
		for _, c := range p.Categories {
			if _, ok := ids[c.ID]; ok {
				related = append(related, p)
				break
			}
		}
		if limit > 0 && len(related) == limit {
			break
		}
	}
	return related
}

func marshalJSONLD(data map[string]any) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func personLD(name string) map[string]string {
	return map[string]string{"@type": "Person", "name": name}
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema.
func WebsiteJsonLD(site SiteSettings, loc Locale) string {
	data := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        site.Title(loc),
		"url":         BuildURL(site.URL),
		"description": site.Description(loc),
		"inLanguage":  string(loc),
		"potentialAction": map[string]any{
			"@type":       "SearchAction",
			"target":      BuildURL(site.URL, "search") + "?q={search_term_string}",
			"query-input": "required name=search_term_string",
		},
	}
	if site.Author != "" {
		data["author"] = personLD(site.Author)
	}
	return marshalJSONLD(data)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(post BlogPost, site SiteSettings, loc Locale) string {
	postURL := BuildURL(site.URL, "blog", post.Slug)
	data := map[string]any{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title(loc),
		"description":   content.Summary(content.Render(post.Content(loc)), 160),
		"datePublished": post.Date().Format(time.RFC3339),
		"dateModified":  post.UpdatedAt.Format(time.RFC3339),
		"url":           postURL,
		"inLanguage":    string(loc),
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	switch {
	case post.Author != nil:
		data["author"] = personLD(post.Author.Name)
	case site.Author != "":
		data["author"] = personLD(site.Author)
	}
	if name := site.Title(loc); name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  name,
		}
	}
	if len(post.Categories) > 0 {
		names := make([]string, 0, len(post.Categories))
		for _, c := range post.Categories {
			names = append(names, c.Title(loc))
		}
		data["keywords"] = strings.Join(names, ", ")
	}
	return marshalJSONLD(data)
}

// ProjectJsonLD returns a JSON-LD string for a SoftwareSourceCode schema.
func ProjectJsonLD(p Project, site SiteSettings, loc Locale) string {
	data := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "SoftwareSourceCode",
		"name":        p.Name(loc),
		"description": content.Summary(content.Render(p.Description(loc)), 160),
		"url":         BuildURL(site.URL, "projects", p.Slug),
	}
	if repo := p.Links["github"]; repo != "" {
		data["codeRepository"] = repo
	}
	return marshalJSONLD(data)
}
