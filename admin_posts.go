package site

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) registerPostRoutes(g *echo.Group) {
	g.GET("/posts/", a.handlePostList)
	g.GET("/posts/new/", a.handlePostNew)
	g.POST("/posts/", a.handlePostCreate)
	g.GET("/posts/:id/", a.handlePostEdit)
	g.POST("/posts/:id/", a.handlePostUpdate)
	g.POST("/posts/:id/delete/", a.handlePostDelete)
}

func (a *App) handlePostList(c echo.Context) error {
	posts, err := a.Store.ListPosts(c.Request().Context(), PostFilter{})
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminList(AdminListPage{
		Page:   a.adminPage(c, "Posts"),
		Entity: EntityPosts,
		Posts:  posts,
	}))
}

func (a *App) handlePostNew(c echo.Context) error {
	return a.renderPostForm(c, http.StatusOK, BlogPost{}, nil, nil)
}

func (a *App) handlePostEdit(c echo.Context) error {
	p, err := a.Store.GetPost(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return a.renderPostForm(c, http.StatusOK, p, p.CategoryIDs(), nil)
}

func (a *App) handlePostCreate(c echo.Context) error {
	return a.savePost(c, BlogPost{})
}

func (a *App) handlePostUpdate(c echo.Context) error {
	p, err := a.Store.GetPost(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return a.savePost(c, p)
}

func (a *App) savePost(c echo.Context, p BlogPost) error {
	var form PostForm
	if err := bindForm(c, &form); err != nil {
		return err
	}
	form.normalize()
	verr := validateForm(form)
	form.apply(&p)

	if verr.Err() == nil {
		err := a.Store.SavePost(c.Request().Context(), &p, form.Categories)
		if err = writeFieldError(err, verr); err != nil {
			return err
		}
	}
	if verr.Err() != nil {
		return a.renderPostForm(c, http.StatusUnprocessableEntity, p, form.Categories, verr.Map())
	}
	a.Cache.Invalidate()
	return redirectMsg(c, "/admin/posts/", "Post saved")
}

func (a *App) handlePostDelete(c echo.Context) error {
	if err := a.Store.DeletePost(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return redirectMsg(c, "/admin/posts/", "Post deleted")
}

func (a *App) renderPostForm(c echo.Context, code int, p BlogPost, categoryIDs []string, errs map[string]string) error {
	ctx := c.Request().Context()
	authors, err := a.Store.ListAuthors(ctx)
	if err != nil {
		return err
	}
	categories, err := a.Store.ListCategories(ctx)
	if err != nil {
		return err
	}
	selected := make(map[string]bool, len(categoryIDs))
	for _, id := range categoryIDs {
		selected[id] = true
	}
	page := AdminFormPage{
		Page:               a.adminPage(c, "Post"),
		Entity:             EntityPosts,
		IsNew:              p.ID == "",
		Post:               p,
		SelectedCategories: selected,
		Authors:            authors,
		Categories:         categories,
		Errors:             errs,
	}
	page.Action = formAction(EntityPosts, p.ID)
	return RenderStatus(c, code, a.Views.AdminForm(page))
}

// formAction is the URL a create or edit form posts to.
func formAction(entity, id string) string {
	if id == "" {
		return "/admin/" + entity + "/"
	}
	return "/admin/" + entity + "/" + id + "/"
}
