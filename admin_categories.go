package site

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) registerCategoryRoutes(g *echo.Group) {
	g.GET("/categories/", a.handleCategoryList)
	g.GET("/categories/new/", a.handleCategoryNew)
	g.POST("/categories/", a.handleCategoryCreate)
	g.GET("/categories/:id/", a.handleCategoryEdit)
	g.POST("/categories/:id/", a.handleCategoryUpdate)
	g.POST("/categories/:id/delete/", a.handleCategoryDelete)
}

func (a *App) handleCategoryList(c echo.Context) error {
	categories, err := a.Store.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminList(AdminListPage{
		Page:       a.adminPage(c, "Categories"),
		Entity:     EntityCategories,
		Categories: categories,
	}))
}

func (a *App) handleCategoryNew(c echo.Context) error {
	return a.renderCategoryForm(c, http.StatusOK, Category{}, nil)
}

func (a *App) handleCategoryEdit(c echo.Context) error {
	cat, err := a.Store.GetCategory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return a.renderCategoryForm(c, http.StatusOK, cat, nil)
}

func (a *App) handleCategoryCreate(c echo.Context) error {
	return a.saveCategory(c, Category{})
}

func (a *App) handleCategoryUpdate(c echo.Context) error {
	cat, err := a.Store.GetCategory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return a.saveCategory(c, cat)
}

func (a *App) saveCategory(c echo.Context, cat Category) error {
	var form CategoryForm
	if err := bindForm(c, &form); err != nil {
		return err
	}
	form.normalize()
	verr := validateForm(form)
	form.apply(&cat)

	if verr.Err() == nil {
		err := a.Store.SaveCategory(c.Request().Context(), &cat)
		if err = writeFieldError(err, verr); err != nil {
			return err
		}
	}
	if verr.Err() != nil {
		return a.renderCategoryForm(c, http.StatusUnprocessableEntity, cat, verr.Map())
	}
	a.Cache.Invalidate()
	return redirectMsg(c, "/admin/categories/", "Category saved")
}

func (a *App) handleCategoryDelete(c echo.Context) error {
	if err := a.Store.DeleteCategory(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return redirectMsg(c, "/admin/categories/", "Category deleted")
}

func (a *App) renderCategoryForm(c echo.Context, code int, cat Category, errs map[string]string) error {
	return RenderStatus(c, code, a.Views.AdminForm(AdminFormPage{
		Page:     a.adminPage(c, "Category"),
		Entity:   EntityCategories,
		IsNew:    cat.ID == "",
		Action:   formAction(EntityCategories, cat.ID),
		Category: cat,
		Errors:   errs,
	}))
}
