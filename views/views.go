// Package views holds the HTML templates of the site. Each page is an
// html/template set (layout, shared partials and the page itself) exposed to
// the handlers as a templ.Component.
package views

import (
	"embed"
	"html/template"

	"github.com/a-h/templ"

	site "github.com/monynha/site"
)

//go:embed templates/*.gohtml
var files embed.FS

// parse builds the template set of one page. The set executes
// "layout.gohtml", which renders the page's "content" block.
func parse(page string) *template.Template {
	return template.Must(template.New("layout.gohtml").Funcs(funcs).ParseFS(files,
		"templates/layout.gohtml",
		"templates/partials.gohtml",
		"templates/"+page+".gohtml",
	))
}

func view[T any](page string) func(T) templ.Component {
	t := parse(page)
	return func(data T) templ.Component {
		return templ.FromGoHTML(t, data)
	}
}

// Funcs returns the site's views.
func Funcs() site.ViewFuncs {
	return site.ViewFuncs{
		Home:        view[site.HomePage]("home"),
		Blog:        view[site.BlogPage]("blog"),
		Post:        view[site.PostPage]("post"),
		Projects:    view[site.ProjectsPage]("projects"),
		Project:     view[site.ProjectPage]("project"),
		Docs:        view[site.DocsPage]("docs"),
		Doc:         view[site.DocPage]("doc"),
		Search:      view[site.SearchPage]("search"),
		NotFound:    view[site.Page]("not_found"),
		ServerError: view[site.Page]("server_error"),

		AdminLogin:     view[site.AdminLoginPage]("admin_login"),
		AdminDashboard: view[site.AdminDashboardPage]("admin_dashboard"),
		AdminList:      view[site.AdminListPage]("admin_list"),
		AdminForm:      view[site.AdminFormPage]("admin_form"),
		AdminComments:  view[site.AdminCommentsPage]("admin_comments"),
		AdminMedia:     view[site.AdminMediaPage]("admin_media"),
	}
}
