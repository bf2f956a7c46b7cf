package site

import "github.com/a-h/templ"

// ViewFuncs holds the components the handlers render. Templates live outside
// this package (see views.Funcs) so they can be swapped or stubbed in tests.
type ViewFuncs struct {
	Home        func(HomePage) templ.Component
	Blog        func(BlogPage) templ.Component
	Post        func(PostPage) templ.Component
	Projects    func(ProjectsPage) templ.Component
	Project     func(ProjectPage) templ.Component
	Docs        func(DocsPage) templ.Component
	Doc         func(DocPage) templ.Component
	Search      func(SearchPage) templ.Component
	NotFound    func(Page) templ.Component
	ServerError func(Page) templ.Component

	AdminLogin     func(AdminLoginPage) templ.Component
	AdminDashboard func(AdminDashboardPage) templ.Component
	AdminList      func(AdminListPage) templ.Component
	AdminForm      func(AdminFormPage) templ.Component
	AdminComments  func(AdminCommentsPage) templ.Component
	AdminMedia     func(AdminMediaPage) templ.Component
}

// Page is the context shared by every rendered page.
type Page struct {
	Locale Locale
	Site   SiteSettings
	Nav    []NavItem
	Meta   PageMeta
	Path   string // request path, used to build language links and mark the active nav item
	CSRF   string
	Admin  bool
	Flash  string
}

type HomePage struct {
	Page
	Posts    []BlogPost
	Projects []Project
}

type BlogPage struct {
	Page
	Posts          []BlogPost
	Categories     []Category
	ActiveCategory string
}

type PostPage struct {
	Page
	Post     BlogPost
	Related  []BlogPost
	Comments []Comment
	Form     CommentForm
	Errors   map[string]string
	Sent     bool
}

type ProjectsPage struct {
	Page
	Projects []Project
}

type ProjectPage struct {
	Page
	Project Project
	Docs    []DocNode
}

type DocsPage struct {
	Page
	Tree     []DocNode
	Projects []Project
}

type DocPage struct {
	Page
	Doc     Doc
	Tree    []DocNode
	Project *Project
}

type SearchPage struct {
	Page
	Query   string
	Results []SearchResult
}

type AdminLoginPage struct {
	Page
	Failed  bool
	Blocked bool
}

type AdminDashboardPage struct {
	Page
	Counts  Counts
	Recent  []BlogPost
	Pending []Comment
}

// Admin entity names, used in routes and to pick the list/form template.
const (
	EntityPosts      = "posts"
	EntityProjects   = "projects"
	EntityAuthors    = "authors"
	EntityCategories = "categories"
	EntityDocs       = "docs"
)

type AdminListPage struct {
	Page
	Entity     string
	Posts      []BlogPost
	Projects   []Project
	Authors    []Author
	Categories []Category
	Docs       []Doc
}

// AdminFormPage backs the create/edit screen of every entity. Only the item
// matching Entity is meaningful; the option lists fill selects.
type AdminFormPage struct {
	Page
	Entity string
	IsNew  bool
	Action string

	Post     BlogPost
	Project  Project
	Author   Author
	Category Category
	Doc      Doc

	Links              []LinkInput
	SelectedCategories map[string]bool

	Authors    []Author
	Categories []Category
	Projects   []Project
	Docs       []Doc

	Errors map[string]string
}

type AdminCommentsPage struct {
	Page
	Comments []Comment
	Posts    map[string]BlogPost
}

type AdminMediaPage struct {
	Page
	Media   []Media
	Folders []string
	Error   string
}
