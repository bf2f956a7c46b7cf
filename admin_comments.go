package site

import (
	"github.com/labstack/echo/v4"
)

// handleAdminComments lists comments awaiting moderation with their posts.
func (a *App) handleAdminComments(c echo.Context) error {
	ctx := c.Request().Context()
	comments, err := a.Store.ListPendingComments(ctx)
	if err != nil {
		return err
	}
	posts, err := a.Store.ListPosts(ctx, PostFilter{})
	if err != nil {
		return err
	}
	byID := make(map[string]BlogPost, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	return Render(c, a.Views.AdminComments(AdminCommentsPage{
		Page:     a.adminPage(c, "Comments"),
		Comments: comments,
		Posts:    byID,
	}))
}

func (a *App) handleApproveComment(c echo.Context) error {
	if err := a.Store.ApproveComment(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return redirectMsg(c, "/admin/comments/", "Comment approved")
}

func (a *App) handleDeleteComment(c echo.Context) error {
	if err := a.Store.DeleteComment(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return redirectMsg(c, "/admin/comments/", "Comment deleted")
}
