package site

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) registerProjectRoutes(g *echo.Group) {
	g.GET("/projects/", a.handleProjectList)
	g.GET("/projects/new/", a.handleProjectNew)
	g.POST("/projects/", a.handleProjectCreate)
	g.GET("/projects/:id/", a.handleProjectEdit)
	g.POST("/projects/:id/", a.handleProjectUpdate)
	g.POST("/projects/:id/delete/", a.handleProjectDelete)
}

func (a *App) handleProjectList(c echo.Context) error {
	projects, err := a.Store.ListProjects(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminList(AdminListPage{
		Page:     a.adminPage(c, "Projects"),
		Entity:   EntityProjects,
		Projects: projects,
	}))
}

func (a *App) handleProjectNew(c echo.Context) error {
	return a.renderProjectForm(c, http.StatusOK, Project{}, linkInputs(nil), nil)
}

func (a *App) handleProjectEdit(c echo.Context) error {
	p, err := a.Store.GetProject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return a.renderProjectForm(c, http.StatusOK, p, linkInputs(p.Links), nil)
}

func (a *App) handleProjectCreate(c echo.Context) error {
	return a.saveProject(c, Project{})
}

func (a *App) handleProjectUpdate(c echo.Context) error {
	p, err := a.Store.GetProject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return a.saveProject(c, p)
}

func (a *App) saveProject(c echo.Context, p Project) error {
	var form ProjectForm
	if err := bindForm(c, &form); err != nil {
		return err
	}
	form.normalize()
	verr := validateForm(form)
	links := parseLinkInputs(c)
	validateLinks(links, verr)
	form.apply(&p)
	p.Links = linksFromInputs(links)

	if verr.Err() == nil {
		err := a.Store.SaveProject(c.Request().Context(), &p)
		if err = writeFieldError(err, verr); err != nil {
			return err
		}
	}
	if verr.Err() != nil {
		return a.renderProjectForm(c, http.StatusUnprocessableEntity, p, links, verr.Map())
	}
	a.Cache.Invalidate()
	return redirectMsg(c, "/admin/projects/", "Project saved")
}

func (a *App) handleProjectDelete(c echo.Context) error {
	if err := a.Store.DeleteProject(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return redirectMsg(c, "/admin/projects/", "Project deleted")
}

func (a *App) renderProjectForm(c echo.Context, code int, p Project, links []LinkInput, errs map[string]string) error {
	return RenderStatus(c, code, a.Views.AdminForm(AdminFormPage{
		Page:    a.adminPage(c, "Project"),
		Entity:  EntityProjects,
		IsNew:   p.ID == "",
		Action:  formAction(EntityProjects, p.ID),
		Project: p,
		Links:   links,
		Errors:  errs,
	}))
}
