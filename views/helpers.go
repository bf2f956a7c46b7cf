package views

import (
	"html/template"
	"net/url"
	"strings"
	"time"

	site "github.com/monynha/site"
	"github.com/monynha/site/content"
)

var funcs = template.FuncMap{
	"t":           T,
	"markdown":    markdown,
	"excerpt":     excerpt,
	"safeURL":     safeURL,
	"jsonLD":      jsonLD,
	"date":        formatDate,
	"isoDate":     isoDate,
	"navClass":    navClass,
	"langURL":     langURL,
	"otherLocale": otherLocale,
	"fieldError":  fieldError,
	"tree":        tree,
	"year":        func() int { return time.Now().Year() },
	"typeLabel":   typeLabel,
	"withLocale":  withLocale,
	"rowAction":   rowAction,
	"entityName":  entityName,
}

func markdown(src string) template.HTML {
	return template.HTML(content.Render(src))
}

// excerpt is the plain-text summary of a Markdown body.
func excerpt(src string, n int) string {
	return content.Summary(content.Render(src), n)
}

// safeURL passes through URLs content.SafeURL accepts and blanks the rest.
func safeURL(raw string) template.URL {
	return template.URL(content.SafeURL(raw))
}

// jsonLD marks a JSON-LD document built by the site package as safe to
// embed in a script element. encoding/json already escapes <, > and &.
func jsonLD(s string) template.JS {
	return template.JS(s)
}

func formatDate(t time.Time, loc site.Locale) string {
	if t.IsZero() {
		return ""
	}
	if loc == site.LocaleEN {
		return t.Format("Jan 2, 2006")
	}
	return t.Format("02/01/2006")
}

func isoDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// navClass marks the nav item for the current section.
func navClass(current, href string) string {
	active := current == href || (href != "/" && strings.HasPrefix(current, href))
	if active {
		return "nav-link active"
	}
	return "nav-link"
}

func langURL(loc site.Locale, current string) string {
	return "/lang/" + string(loc) + "/?next=" + url.QueryEscape(current)
}

func otherLocale(loc site.Locale) site.Locale {
	if loc == site.LocaleEN {
		return site.LocalePT
	}
	return site.LocaleEN
}

func fieldError(errs map[string]string, field string) string {
	return errs[field]
}

func typeLabel(loc site.Locale, kind string) string {
	return T(loc, "type_"+kind)
}

// docTree is the argument of the recursive "doctree" template.
type docTree struct {
	Nodes   []site.DocNode
	Locale  site.Locale
	Current string
}

func tree(nodes []site.DocNode, loc site.Locale, current string) docTree {
	return docTree{Nodes: nodes, Locale: loc, Current: current}
}

// localized pairs a value with the page locale for partial templates.
type localized struct {
	Item   any
	Locale site.Locale
}

func withLocale(v any, loc site.Locale) localized {
	return localized{Item: v, Locale: loc}
}

// action is the argument of the admin "delete" template.
type action struct {
	Entity string
	ID     string
	CSRF   string
}

func rowAction(entity, id, csrf string) action {
	return action{Entity: entity, ID: id, CSRF: csrf}
}

var entityNames = map[string][2]string{
	site.EntityPosts:      {"post", "Posts"},
	site.EntityProjects:   {"project", "Projects"},
	site.EntityAuthors:    {"author", "Authors"},
	site.EntityCategories: {"category", "Categories"},
	site.EntityDocs:       {"doc", "Docs"},
}

func entityName(entity string, plural bool) string {
	n, ok := entityNames[entity]
	if !ok {
		return entity
	}
	if plural {
		return n[1]
	}
	return n[0]
}
