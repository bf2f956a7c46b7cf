package site

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPassword = "correct horse"

// stubView renders the view name followed by its data as JSON, so tests can
// assert on what a handler passed to the template.
func stubView[T any](name string) func(T) templ.Component {
	return func(data T) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			if _, err := fmt.Fprintf(w, "view=%s\n", name); err != nil {
				return err
			}
			return json.NewEncoder(w).Encode(data)
		})
	}
}

func stubViews() ViewFuncs {
	return ViewFuncs{
		Home:           stubView[HomePage]("home"),
		Blog:           stubView[BlogPage]("blog"),
		Post:           stubView[PostPage]("post"),
		Projects:       stubView[ProjectsPage]("projects"),
		Project:        stubView[ProjectPage]("project"),
		Docs:           stubView[DocsPage]("docs"),
		Doc:            stubView[DocPage]("doc"),
		Search:         stubView[SearchPage]("search"),
		NotFound:       stubView[Page]("not_found"),
		ServerError:    stubView[Page]("server_error"),
		AdminLogin:     stubView[AdminLoginPage]("admin_login"),
		AdminDashboard: stubView[AdminDashboardPage]("admin_dashboard"),
		AdminList:      stubView[AdminListPage]("admin_list"),
		AdminForm:      stubView[AdminFormPage]("admin_form"),
		AdminComments:  stubView[AdminCommentsPage]("admin_comments"),
		AdminMedia:     stubView[AdminMediaPage]("admin_media"),
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := Config{
		Site: SiteSettings{
			URL:     "https://monynha.com",
			TitlePT: "Monynha Softwares",
			TitleEN: "Monynha Softwares",
			Email:   "contato@monynha.com",
		},
		Admin: AdminConfig{
			Password:      testPassword,
			SessionSecret: strings.Repeat("s", 32),
		},
	}
	a := New(cfg, stubViews(), zap.NewNop(),
		WithStore(newTestStore(t)),
		WithBucket(NewMemBucket()),
		WithStaticDir(t.TempDir()),
	)
	require.NoError(t, a.Init(context.Background()))
	t.Cleanup(func() { a.Close() })
	return a
}

// client drives the app through Echo and keeps cookies between requests.
type client struct {
	t       *testing.T
	app     *App
	cookies map[string]*http.Cookie
	header  http.Header
}

func newClient(t *testing.T, a *App) *client {
	return &client{t: t, app: a, cookies: map[string]*http.Cookie{}, header: http.Header{}}
}

func (c *client) send(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for k, v := range c.header {
		req.Header[k] = v
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.app.Echo.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return rec
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	c.t.Helper()
	return c.send(httptest.NewRequest(http.MethodGet, target, nil))
}

// post submits a form, adding the CSRF token from the cookie jar.
func (c *client) post(target string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if ck, ok := c.cookies["_csrf"]; ok && form.Get("_csrf") == "" {
		form.Set("_csrf", ck.Value)
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return c.send(req)
}

func (c *client) login() {
	c.t.Helper()
	c.get("/admin/")
	rec := c.post("/admin/login/", url.Values{"password": {testPassword}})
	require.Equal(c.t, http.StatusSeeOther, rec.Code)
}

func assertView(t *testing.T, rec *httptest.ResponseRecorder, code int, view string) {
	t.Helper()
	assert.Equal(t, code, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Body.String(), "view="+view+"\n"), "want view %q, got %q", view, firstLine(rec.Body.String()))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// viewData decodes the JSON a stub view wrote.
func viewData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	body := rec.Body.String()
	require.NoError(t, json.Unmarshal([]byte(body[strings.IndexByte(body, '\n')+1:]), &v))
	return v
}

// seedSite stores a small published catalogue.
func seedSite(t *testing.T, a *App) (BlogPost, Project, Doc) {
	t.Helper()
	ctx := context.Background()
	s := a.Store
	author := mustAuthor(t, s, "Ana Silva")
	cat := mustCategory(t, s, "frontend")
	post := mustPost(t, s, BlogPost{
		Slug: "ola", TitlePT: "Olá", TitleEN: "Hello", ContentPT: "Sobre **APIs**.", ContentEN: "About **APIs**.",
		AuthorID: author.ID, Published: true, PublishedAt: date(2024, 3, 1),
	}, cat.ID)
	mustPost(t, s, BlogPost{Slug: "outro", TitlePT: "Outro", Published: true, PublishedAt: date(2024, 2, 1)}, cat.ID)
	mustPost(t, s, BlogPost{Slug: "rascunho", TitlePT: "Rascunho"})

	project := Project{Slug: "nexus-lab", NamePT: "Nexus Lab", DescriptionPT: "Laboratório", Links: Links{"github": "https://github.com/monynha/nexus-lab"}}
	require.NoError(t, s.SaveProject(ctx, &project))
	doc := Doc{Slug: "intro", TitlePT: "Introdução", ContentPT: "Guia", ProjectID: project.ID, Published: true}
	require.NoError(t, s.SaveDoc(ctx, &doc))
	require.NoError(t, s.SaveDoc(ctx, &Doc{Slug: "install", TitlePT: "Instalação", ParentID: doc.ID, ProjectID: project.ID, Published: true, Position: 1}))
	a.Cache.Invalidate()
	return post, project, doc
}

func TestPublicPages(t *testing.T) {
	a := newTestApp(t)
	seedSite(t, a)
	c := newClient(t, a)

	rec := c.get("/")
	assertView(t, rec, http.StatusOK, "home")
	home := viewData[HomePage](t, rec)
	require.Len(t, home.Posts, 2)
	assert.Equal(t, "ola", home.Posts[0].Slug)
	assert.Len(t, home.Projects, 1)
	assert.Contains(t, home.Meta.JSONLD, `"WebSite"`)
	assert.Equal(t, LocalePT, home.Locale)
	assert.NotEmpty(t, home.CSRF)

	rec = c.get("/blog/?category=frontend")
	assertView(t, rec, http.StatusOK, "blog")
	blog := viewData[BlogPage](t, rec)
	assert.Equal(t, "frontend", blog.ActiveCategory)
	assert.Len(t, blog.Posts, 2)
	assert.Len(t, blog.Categories, 1)

	rec = c.get("/blog/ola/")
	assertView(t, rec, http.StatusOK, "post")
	post := viewData[PostPage](t, rec)
	assert.Equal(t, "Olá | Monynha Softwares", post.Meta.Title)
	assert.Equal(t, "article", post.Meta.OGType)
	assert.Equal(t, "https://monynha.com/blog/ola/", post.Meta.URL)
	assert.Equal(t, "Ana Silva", post.Meta.Author)
	require.Len(t, post.Related, 1)
	assert.Equal(t, "outro", post.Related[0].Slug)

	rec = c.get("/projects/")
	assertView(t, rec, http.StatusOK, "projects")

	rec = c.get("/projects/nexus-lab/")
	assertView(t, rec, http.StatusOK, "project")
	project := viewData[ProjectPage](t, rec)
	require.Len(t, project.Docs, 1)
	assert.Equal(t, "intro", project.Docs[0].Slug)
	assert.Len(t, project.Docs[0].Children, 1)

	rec = c.get("/docs/")
	assertView(t, rec, http.StatusOK, "docs")

	rec = c.get("/docs/install/")
	assertView(t, rec, http.StatusOK, "doc")
	doc := viewData[DocPage](t, rec)
	require.NotNil(t, doc.Project)
	assert.Equal(t, "nexus-lab", doc.Project.Slug)
	assert.Len(t, doc.Tree, 1)
}

func TestNotFoundPages(t *testing.T) {
	a := newTestApp(t)
	seedSite(t, a)
	c := newClient(t, a)

	for _, path := range []string{"/blog/rascunho/", "/blog/missing/", "/projects/missing/", "/docs/missing/", "/nope/"} {
		rec := c.get(path)
		assertView(t, rec, http.StatusNotFound, "not_found")
	}
}

func TestTrailingSlashRedirect(t *testing.T) {
	a := newTestApp(t)
	rec := newClient(t, a).get("/blog?category=go")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/blog/?category=go", rec.Header().Get(echo.HeaderLocation))
}

func TestLanguageSwitch(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)

	rec := c.get("/lang/en/?next=" + url.QueryEscape("/blog/?lang=pt"))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/blog/", rec.Header().Get(echo.HeaderLocation))
	require.Contains(t, c.cookies, "lang")
	assert.Equal(t, "en", c.cookies["lang"].Value)

	rec = c.get("/")
	assert.Equal(t, LocaleEN, viewData[HomePage](t, rec).Locale)

	rec = c.get("/lang/fr/")
	assertView(t, rec, http.StatusNotFound, "not_found")
}

func TestAcceptLanguage(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)
	c.header.Set("Accept-Language", "en-US,en;q=0.9")
	rec := c.get("/projects/")
	page := viewData[ProjectsPage](t, rec)
	assert.Equal(t, LocaleEN, page.Locale)
	assert.Equal(t, "Projects | Monynha Softwares", page.Meta.Title)
	assert.Contains(t, rec.Header().Get("Vary"), "Accept-Language")
}

func TestSearchPageAndAPI(t *testing.T) {
	a := newTestApp(t)
	seedSite(t, a)
	c := newClient(t, a)

	rec := c.get("/search/?q=apis")
	assertView(t, rec, http.StatusOK, "search")
	page := viewData[SearchPage](t, rec)
	assert.Equal(t, "apis", page.Query)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "/blog/ola/", page.Results[0].URL)

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=introducao", nil)
	req.Header.Set(echo.HeaderOrigin, "https://elsewhere.example.com")
	rec = c.send(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	var body struct {
		Query   string         `json:"query"`
		Results []SearchResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, ResultDoc, body.Results[0].Type)

	rec = c.get("/api/search?q=")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"query":"","results":[]}`, rec.Body.String())
}

func TestAPINotFoundIsJSON(t *testing.T) {
	a := newTestApp(t)
	rec := newClient(t, a).get("/api/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())
}

func TestFeeds(t *testing.T) {
	a := newTestApp(t)
	seedSite(t, a)
	c := newClient(t, a)

	for _, path := range []string{"/feed.xml", "/api/rss"} {
		rec := c.get(path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "application/rss+xml; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
		body := rec.Body.String()
		assert.True(t, strings.HasPrefix(body, "<?xml"))
		assert.Contains(t, body, "<link>https://monynha.com/blog/ola/</link>")
		assert.NotContains(t, body, "rascunho")
	}

	for _, path := range []string{"/sitemap.xml", "/api/sitemap"} {
		rec := c.get(path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		body := rec.Body.String()
		assert.Contains(t, body, "<loc>https://monynha.com/</loc>")
		assert.Contains(t, body, "<loc>https://monynha.com/docs/install/</loc>")
		assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	}
}

func TestRobotsAndFavicon(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)

	rec := c.get("/robots.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Disallow: /admin/")
	assert.Contains(t, rec.Body.String(), "Sitemap: https://monynha.com/sitemap.xml")

	rec = c.get("/favicon.svg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get(echo.HeaderContentType))

	rec = c.get("/public/site.css")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAddComment(t *testing.T) {
	a := newTestApp(t)
	post, _, _ := seedSite(t, a)
	c := newClient(t, a)
	c.get(post.Link())

	rec := c.post("/blog/ola/comments/", url.Values{"name": {"Leitor"}, "content": {"Muito bom!"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/blog/ola/?comment=sent#comments", rec.Header().Get(echo.HeaderLocation))

	pending, err := a.Store.ListPendingComments(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Leitor", pending[0].Name)

	rec = c.get("/blog/ola/?comment=sent")
	page := viewData[PostPage](t, rec)
	assert.True(t, page.Sent)
	assert.Empty(t, page.Comments, "unapproved comments stay hidden")
}

func TestAddCommentValidation(t *testing.T) {
	a := newTestApp(t)
	seedSite(t, a)
	c := newClient(t, a)
	c.get("/blog/ola/")

	rec := c.post("/blog/ola/comments/", url.Values{"name": {"Leitor"}, "email": {"nope"}})
	assertView(t, rec, http.StatusUnprocessableEntity, "post")
	page := viewData[PostPage](t, rec)
	assert.Contains(t, page.Errors, "email")
	assert.Contains(t, page.Errors, "content")
	assert.Equal(t, "Leitor", page.Form.Name, "input is kept")

	rec = c.post("/blog/rascunho/comments/", url.Values{"name": {"X"}, "content": {"Y"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddCommentRateLimit(t *testing.T) {
	a := newTestApp(t)
	seedSite(t, a)
	c := newClient(t, a)
	c.get("/blog/ola/")

	for i := 0; i < 8; i++ {
		rec := c.post("/blog/ola/comments/", url.Values{"name": {"Leitor"}})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "invalid submissions do not use the quota")
	}
	for i := 0; i < 5; i++ {
		rec := c.post("/blog/ola/comments/", url.Values{"name": {"Leitor"}, "content": {fmt.Sprintf("Comentário %d", i)}})
		require.Equal(t, http.StatusSeeOther, rec.Code)
	}
	rec := c.post("/blog/ola/comments/", url.Values{"name": {"Leitor"}, "content": {"Mais um"}})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAddCommentHoneypot(t *testing.T) {
	a := newTestApp(t)
	seedSite(t, a)
	c := newClient(t, a)
	c.get("/blog/ola/")

	rec := c.post("/blog/ola/comments/", url.Values{"name": {"Bot"}, "content": {"spam"}, "website": {"http://spam.example.com"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	pending, err := a.Store.ListPendingComments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestCSRFRequired(t *testing.T) {
	a := newTestApp(t)
	seedSite(t, a)
	c := newClient(t, a)
	c.get("/blog/ola/")

	rec := c.post("/blog/ola/comments/", url.Values{"_csrf": {"forged"}, "name": {"X"}, "content": {"Y"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRequiresLogin(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)

	for _, path := range []string{"/admin/posts/", "/admin/media/", "/admin/comments/"} {
		rec := c.get(path)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/admin/", rec.Header().Get(echo.HeaderLocation))
	}
	assertView(t, c.get("/admin/"), http.StatusOK, "admin_login")
	assert.Equal(t, "no-store", c.get("/admin/").Header().Get("Cache-Control"))
}

func TestAdminLoginAndLogout(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)
	c.get("/admin/")

	rec := c.post("/admin/login/", url.Values{"password": {"wrong"}})
	assertView(t, rec, http.StatusUnauthorized, "admin_login")
	assert.True(t, viewData[AdminLoginPage](t, rec).Failed)

	rec = c.post("/admin/login/", url.Values{"password": {testPassword}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = c.get("/admin/")
	assertView(t, rec, http.StatusOK, "admin_dashboard")
	assert.True(t, viewData[AdminDashboardPage](t, rec).Admin)

	rec = c.post("/admin/logout/", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assertView(t, c.get("/admin/"), http.StatusOK, "admin_login")
}

func TestAdminLoginRateLimit(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)
	c.get("/admin/")

	for i := 0; i < 5; i++ {
		rec := c.post("/admin/login/", url.Values{"password": {"wrong"}})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := c.post("/admin/login/", url.Values{"password": {testPassword}})
	assertView(t, rec, http.StatusTooManyRequests, "admin_login")
	assert.True(t, viewData[AdminLoginPage](t, rec).Blocked)
}

func TestAdminLoginWithHash(t *testing.T) {
	a := newTestApp(t)
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	a.Config.Admin.PasswordHash = hash

	assert.True(t, a.checkPassword("s3cret"))
	assert.False(t, a.checkPassword(testPassword), "the hash takes precedence")
	assert.False(t, a.checkPassword(""))
}

func TestAdminPostCRUD(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)
	c.login()
	cat := mustCategory(t, a.Store, "backend")

	assertView(t, c.get("/admin/posts/new/"), http.StatusOK, "admin_form")

	rec := c.post("/admin/posts/", url.Values{
		"title_pt":     {"Construindo APIs"},
		"content_pt":   {"Texto"},
		"categories":   {cat.ID},
		"published":    {"true"},
		"published_at": {"2024-04-12"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/admin/posts/?msg=Post+saved", rec.Header().Get(echo.HeaderLocation))

	// The public cache was invalidated by the write.
	rec = c.get("/blog/construindo-apis/")
	assertView(t, rec, http.StatusOK, "post")
	created := viewData[PostPage](t, rec).Post
	assert.Equal(t, []string{cat.ID}, created.CategoryIDs())

	rec = c.post("/admin/posts/", url.Values{"title_pt": {"Outro"}, "slug": {"construindo-apis"}})
	assertView(t, rec, http.StatusUnprocessableEntity, "admin_form")
	assert.Equal(t, "this slug is already in use", viewData[AdminFormPage](t, rec).Errors["slug"])

	rec = c.post("/admin/posts/"+created.ID+"/", url.Values{"title_pt": {"Construindo APIs"}, "slug": {"construindo-apis"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assertView(t, c.get("/blog/construindo-apis/"), http.StatusNotFound, "not_found")

	rec = c.get("/admin/posts/" + created.ID + "/")
	form := viewData[AdminFormPage](t, rec)
	assert.False(t, form.IsNew)
	assert.Equal(t, "/admin/posts/"+created.ID+"/", form.Action)

	rec = c.post("/admin/posts/"+created.ID+"/delete/", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, http.StatusNotFound, c.get("/admin/posts/"+created.ID+"/").Code)
}

func TestAdminPostEditKeepsPublishTime(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)
	c.login()
	ctx := context.Background()
	published := time.Date(2024, 4, 12, 14, 30, 0, 0, time.UTC)
	post := mustPost(t, a.Store, BlogPost{Slug: "apis", TitlePT: "APIs", Published: true, PublishedAt: &published})

	edit := func(day string) time.Time {
		t.Helper()
		rec := c.post("/admin/posts/"+post.ID+"/", url.Values{
			"slug":         {"apis"},
			"title_pt":     {"APIs resilientes"},
			"published":    {"true"},
			"published_at": {day},
		})
		require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
		got, err := a.Store.GetPost(ctx, post.ID)
		require.NoError(t, err)
		require.NotNil(t, got.PublishedAt)
		return *got.PublishedAt
	}

	got := edit("2024-04-12")
	assert.True(t, got.Equal(published), "got %s", got)

	got = edit("2024-04-15")
	assert.True(t, got.Equal(time.Date(2024, 4, 15, 14, 30, 0, 0, time.UTC)), "got %s", got)
}

func TestAdminProjectLinks(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)
	c.login()

	rec := c.post("/admin/projects/", url.Values{
		"name_pt":              {"Quantum UI"},
		"links.github.enabled": {"true"},
		"links.demo.url":       {"https://demo.example.com"},
	})
	assertView(t, rec, http.StatusUnprocessableEntity, "admin_form")
	form := viewData[AdminFormPage](t, rec)
	assert.Contains(t, form.Errors, "links.github")
	assert.Contains(t, form.Errors, "links.demo")

	rec = c.post("/admin/projects/", url.Values{
		"name_pt":              {"Quantum UI"},
		"links.github.enabled": {"true"},
		"links.github.url":     {"https://github.com/monynha/quantum-ui"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	p, err := a.Store.GetProjectBySlug(context.Background(), "quantum-ui")
	require.NoError(t, err)
	assert.Equal(t, Links{"github": "https://github.com/monynha/quantum-ui"}, p.Links)
}

func TestAdminDocCycle(t *testing.T) {
	a := newTestApp(t)
	_, _, doc := seedSite(t, a)
	c := newClient(t, a)
	c.login()

	child, err := a.Store.GetDocBySlug(context.Background(), "install")
	require.NoError(t, err)

	rec := c.post("/admin/docs/"+doc.ID+"/", url.Values{
		"title_pt":  {doc.TitlePT},
		"slug":      {doc.Slug},
		"parent_id": {child.ID},
		"published": {"true"},
	})
	assertView(t, rec, http.StatusUnprocessableEntity, "admin_form")
	assert.Contains(t, viewData[AdminFormPage](t, rec).Errors, "parent_id")
}

func TestAdminCommentModeration(t *testing.T) {
	a := newTestApp(t)
	post, _, _ := seedSite(t, a)
	cm := Comment{PostID: post.ID, Name: "Leitor", Content: "Oi"}
	require.NoError(t, a.Store.AddComment(context.Background(), &cm))

	c := newClient(t, a)
	c.login()

	rec := c.get("/admin/comments/")
	assertView(t, rec, http.StatusOK, "admin_comments")
	page := viewData[AdminCommentsPage](t, rec)
	require.Len(t, page.Comments, 1)
	assert.Equal(t, "ola", page.Posts[post.ID].Slug)

	rec = c.post("/admin/comments/"+cm.ID+"/approve/", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = c.get("/blog/ola/")
	comments := viewData[PostPage](t, rec).Comments
	require.Len(t, comments, 1)
	assert.Equal(t, "Oi", comments[0].Content)

	rec = c.post("/admin/comments/"+cm.ID+"/delete/", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = c.post("/admin/comments/"+cm.ID+"/delete/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminMediaUpload(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)
	c.login()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("_csrf", c.cookies["_csrf"].Value))
	require.NoError(t, mw.WriteField("folder", "docs"))
	fw, err := mw.CreateFormFile("file", "Guia Rápido.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("conteúdo"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/media/", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	rec := c.send(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, strings.HasPrefix(out["path"], "docs/"))
	assert.True(t, strings.HasSuffix(out["path"], "-guia-rapido.txt"))
	assert.Equal(t, "/media/"+out["path"], out["url"])

	rec = c.get(out["url"])
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "conteúdo", rec.Body.String())

	rec = c.get("/admin/media/")
	assert.Len(t, viewData[AdminMediaPage](t, rec).Media, 1)

	rec = c.post("/admin/media/delete/", url.Values{"path": {out["path"]}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, http.StatusNotFound, c.get(out["url"]).Code)
}

func TestAdminMediaUploadWithoutFile(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)
	c.login()

	rec := c.post("/admin/media/", url.Values{"folder": {"posts"}})
	assertView(t, rec, http.StatusBadRequest, "admin_media")
	assert.NotEmpty(t, viewData[AdminMediaPage](t, rec).Error)
}
