package site

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/monynha/site/content"
)

const (
	homePostLimit    = 3
	homeProjectLimit = 6
	relatedPostLimit = 3
)

func (a *App) handleHome(c echo.Context) error {
	cat, err := a.Cache.Catalog(c.Request().Context())
	if err != nil {
		return err
	}
	loc := LocaleOf(c)
	page := a.page(c, PageMeta{JSONLD: WebsiteJsonLD(a.Config.Site, loc)})
	return Render(c, a.Views.Home(HomePage{
		Page:     page,
		Posts:    head(cat.Posts, homePostLimit),
		Projects: head(cat.Projects, homeProjectLimit),
	}))
}

func (a *App) handleBlog(c echo.Context) error {
	ctx := c.Request().Context()
	active := strings.TrimSpace(c.QueryParam("category"))
	posts, err := a.Cache.ListPosts(ctx, active)
	if err != nil {
		return err
	}
	cat, err := a.Cache.Catalog(ctx)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Blog(BlogPage{
		Page:           a.page(c, PageMeta{Title: "Blog"}),
		Posts:          posts,
		Categories:     cat.Categories,
		ActiveCategory: active,
	}))
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := a.Cache.GetPost(ctx, c.Param("slug"))
	if err != nil {
		return err
	}
	return a.renderPost(c, http.StatusOK, post, CommentForm{}, nil)
}

// renderPost renders a post detail page. Comments are read from the store
// on every request since moderation does not go through the cache.
func (a *App) renderPost(c echo.Context, code int, post BlogPost, form CommentForm, errs map[string]string) error {
	ctx := c.Request().Context()
	posts, err := a.Cache.ListPosts(ctx, "")
	if err != nil {
		return err
	}
	comments, err := a.Store.ListComments(ctx, post.ID, true)
	if err != nil {
		return err
	}
	loc := LocaleOf(c)
	meta := PageMeta{
		Title:       post.Title(loc),
		Description: content.Summary(content.Render(post.Content(loc)), 160),
		OGType:      "article",
		JSONLD:      BlogPostingJsonLD(post, a.Config.Site, loc),
	}
	if post.PublishedAt != nil {
		meta.PublishedTime = post.PublishedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	if post.Author != nil {
		meta.Author = post.Author.Name
	}
	return RenderStatus(c, code, a.Views.Post(PostPage{
		Page:     a.page(c, meta),
		Post:     post,
		Related:  RelatedPosts(post, posts, relatedPostLimit),
		Comments: comments,
		Form:     form,
		Errors:   errs,
		Sent:     c.QueryParam("comment") == "sent",
	}))
}

func (a *App) handleProjects(c echo.Context) error {
	cat, err := a.Cache.Catalog(c.Request().Context())
	if err != nil {
		return err
	}
	title := "Projetos"
	if LocaleOf(c) == LocaleEN {
		title = "Projects"
	}
	return Render(c, a.Views.Projects(ProjectsPage{
		Page:     a.page(c, PageMeta{Title: title}),
		Projects: cat.Projects,
	}))
}

func (a *App) handleProject(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := a.Cache.GetProject(ctx, c.Param("slug"))
	if err != nil {
		return err
	}
	docs, err := a.Cache.ProjectDocs(ctx, p.ID)
	if err != nil {
		return err
	}
	loc := LocaleOf(c)
	return Render(c, a.Views.Project(ProjectPage{
		Page: a.page(c, PageMeta{
			Title:       p.Name(loc),
			Description: content.Excerpt(p.Description(loc), 160),
			JSONLD:      ProjectJsonLD(p, a.Config.Site, loc),
		}),
		Project: p,
		Docs:    DocTree(docs),
	}))
}

func (a *App) handleDocs(c echo.Context) error {
	cat, err := a.Cache.Catalog(c.Request().Context())
	if err != nil {
		return err
	}
	title := "Documentação"
	if LocaleOf(c) == LocaleEN {
		title = "Documentation"
	}
	return Render(c, a.Views.Docs(DocsPage{
		Page:     a.page(c, PageMeta{Title: title}),
		Tree:     DocTree(cat.Docs),
		Projects: cat.Projects,
	}))
}

func (a *App) handleDoc(c echo.Context) error {
	ctx := c.Request().Context()
	d, err := a.Cache.GetDoc(ctx, c.Param("slug"))
	if err != nil {
		return err
	}
	cat, err := a.Cache.Catalog(ctx)
	if err != nil {
		return err
	}

	// The sidebar shows the docs of the same project, or the unattached
	// docs when this one has no project.
	var siblings []Doc
	for _, other := range cat.Docs {
		if other.ProjectID == d.ProjectID {
			siblings = append(siblings, other)
		}
	}
	var project *Project
	if d.ProjectID != "" {
		for i := range cat.Projects {
			if cat.Projects[i].ID == d.ProjectID {
				p := cat.Projects[i]
				project = &p
				break
			}
		}
	}

	loc := LocaleOf(c)
	return Render(c, a.Views.Doc(DocPage{
		Page: a.page(c, PageMeta{
			Title:       d.Title(loc),
			Description: content.Summary(content.Render(d.Content(loc)), 160),
		}),
		Doc:     d,
		Tree:    DocTree(siblings),
		Project: project,
	}))
}

func (a *App) handleSearch(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	loc := LocaleOf(c)
	results, err := a.Store.Search(c.Request().Context(), q, loc)
	if err != nil {
		return err
	}
	title := "Busca"
	if loc == LocaleEN {
		title = "Search"
	}
	return Render(c, a.Views.Search(SearchPage{
		Page:    a.page(c, PageMeta{Title: title}),
		Query:   q,
		Results: results,
	}))
}

// searchResponse is the body of GET /api/search.
type searchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

func (a *App) handleAPISearch(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	results, err := a.Store.Search(c.Request().Context(), q, LocaleOf(c))
	if err != nil {
		return err
	}
	if results == nil {
		results = []SearchResult{}
	}
	return c.JSON(http.StatusOK, searchResponse{Query: q, Results: results})
}

func (a *App) handleSitemap(c echo.Context) error {
	cat, err := a.Cache.Catalog(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, cat)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		code = http.StatusNotFound
	case errors.As(err, &verr):
		code = http.StatusBadRequest
		msg = verr.Error()
	case errors.As(err, &he):
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}
	if code == http.StatusNotFound {
		msg = http.StatusText(code)
	}
	if code >= http.StatusInternalServerError {
		a.Log.Error("server error", zap.Error(err), zap.String("uri", c.Request().RequestURI))
		msg = http.StatusText(code)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		_ = c.JSON(code, errorResponse{Error: msg})
		return
	}

	switch {
	case code == http.StatusNotFound:
		_ = RenderStatus(c, code, a.Views.NotFound(a.page(c, PageMeta{Title: "404"})))
	case code >= http.StatusInternalServerError:
		_ = RenderStatus(c, code, a.Views.ServerError(a.page(c, PageMeta{Title: "500"})))
	default:
		_ = c.String(code, msg)
	}
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
