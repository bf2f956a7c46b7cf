package site

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) registerAuthorRoutes(g *echo.Group) {
	g.GET("/authors/", a.handleAuthorList)
	g.GET("/authors/new/", a.handleAuthorNew)
	g.POST("/authors/", a.handleAuthorCreate)
	g.GET("/authors/:id/", a.handleAuthorEdit)
	g.POST("/authors/:id/", a.handleAuthorUpdate)
	g.POST("/authors/:id/delete/", a.handleAuthorDelete)
}

func (a *App) handleAuthorList(c echo.Context) error {
	authors, err := a.Store.ListAuthors(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminList(AdminListPage{
		Page:    a.adminPage(c, "Authors"),
		Entity:  EntityAuthors,
		Authors: authors,
	}))
}

func (a *App) handleAuthorNew(c echo.Context) error {
	return a.renderAuthorForm(c, http.StatusOK, Author{}, linkInputs(nil), nil)
}

func (a *App) handleAuthorEdit(c echo.Context) error {
	au, err := a.Store.GetAuthor(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return a.renderAuthorForm(c, http.StatusOK, au, linkInputs(au.Links), nil)
}

func (a *App) handleAuthorCreate(c echo.Context) error {
	return a.saveAuthor(c, Author{})
}

func (a *App) handleAuthorUpdate(c echo.Context) error {
	au, err := a.Store.GetAuthor(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return a.saveAuthor(c, au)
}

func (a *App) saveAuthor(c echo.Context, au Author) error {
	var form AuthorForm
	if err := bindForm(c, &form); err != nil {
		return err
	}
	form.normalize()
	verr := validateForm(form)
	if form.PhotoURL != "" && !isLocalPath(form.PhotoURL) && validate.Var(form.PhotoURL, "http_url") != nil {
		verr.Add("photo_url", "Enter a valid URL including https://")
	}
	links := parseLinkInputs(c)
	validateLinks(links, verr)
	form.apply(&au)
	au.Links = linksFromInputs(links)

	if verr.Err() != nil {
		return a.renderAuthorForm(c, http.StatusUnprocessableEntity, au, links, verr.Map())
	}
	if err := a.Store.SaveAuthor(c.Request().Context(), &au); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return redirectMsg(c, "/admin/authors/", "Author saved")
}

func (a *App) handleAuthorDelete(c echo.Context) error {
	if err := a.Store.DeleteAuthor(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return redirectMsg(c, "/admin/authors/", "Author deleted")
}

func (a *App) renderAuthorForm(c echo.Context, code int, au Author, links []LinkInput, errs map[string]string) error {
	return RenderStatus(c, code, a.Views.AdminForm(AdminFormPage{
		Page:   a.adminPage(c, "Author"),
		Entity: EntityAuthors,
		IsNew:  au.ID == "",
		Action: formAction(EntityAuthors, au.ID),
		Author: au,
		Links:  links,
		Errors: errs,
	}))
}

// isLocalPath reports whether u is a path on this site, such as an uploaded
// /media/ object.
func isLocalPath(u string) bool {
	return len(u) > 1 && u[0] == '/' && u[1] != '/'
}
