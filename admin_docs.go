package site

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) registerDocRoutes(g *echo.Group) {
	g.GET("/docs/", a.handleDocList)
	g.GET("/docs/new/", a.handleDocNew)
	g.POST("/docs/", a.handleDocCreate)
	g.GET("/docs/:id/", a.handleDocEdit)
	g.POST("/docs/:id/", a.handleDocUpdate)
	g.POST("/docs/:id/delete/", a.handleDocDelete)
}

func (a *App) handleDocList(c echo.Context) error {
	docs, err := a.Store.ListDocs(c.Request().Context(), DocFilter{})
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminList(AdminListPage{
		Page:   a.adminPage(c, "Docs"),
		Entity: EntityDocs,
		Docs:   docs,
	}))
}

func (a *App) handleDocNew(c echo.Context) error {
	return a.renderDocForm(c, http.StatusOK, Doc{ParentID: c.QueryParam("parent"), ProjectID: c.QueryParam("project")}, nil)
}

func (a *App) handleDocEdit(c echo.Context) error {
	d, err := a.Store.GetDoc(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return a.renderDocForm(c, http.StatusOK, d, nil)
}

func (a *App) handleDocCreate(c echo.Context) error {
	return a.saveDoc(c, Doc{})
}

func (a *App) handleDocUpdate(c echo.Context) error {
	d, err := a.Store.GetDoc(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return a.saveDoc(c, d)
}

func (a *App) saveDoc(c echo.Context, d Doc) error {
	var form DocForm
	if err := bindForm(c, &form); err != nil {
		return err
	}
	form.normalize()
	verr := validateForm(form)
	form.apply(&d)

	if verr.Err() == nil {
		err := a.Store.SaveDoc(c.Request().Context(), &d)
		if err = writeFieldError(err, verr); err != nil {
			return err
		}
	}
	if verr.Err() != nil {
		return a.renderDocForm(c, http.StatusUnprocessableEntity, d, verr.Map())
	}
	a.Cache.Invalidate()
	return redirectMsg(c, "/admin/docs/", "Doc saved")
}

func (a *App) handleDocDelete(c echo.Context) error {
	if err := a.Store.DeleteDoc(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return redirectMsg(c, "/admin/docs/", "Doc deleted")
}

func (a *App) renderDocForm(c echo.Context, code int, d Doc, errs map[string]string) error {
	ctx := c.Request().Context()
	projects, err := a.Store.ListProjects(ctx)
	if err != nil {
		return err
	}
	docs, err := a.Store.ListDocs(ctx, DocFilter{})
	if err != nil {
		return err
	}
	// A doc cannot be its own parent.
	var parents []Doc
	for _, other := range docs {
		if other.ID != d.ID {
			parents = append(parents, other)
		}
	}
	return RenderStatus(c, code, a.Views.AdminForm(AdminFormPage{
		Page:     a.adminPage(c, "Doc"),
		Entity:   EntityDocs,
		IsNew:    d.ID == "",
		Action:   formAction(EntityDocs, d.ID),
		Doc:      d,
		Projects: projects,
		Docs:     parents,
		Errors:   errs,
	}))
}
