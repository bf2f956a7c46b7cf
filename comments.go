package site

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// handleAddComment accepts a reader comment on a published post. Comments
// are stored unapproved and only appear after moderation.
func (a *App) handleAddComment(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := a.Cache.GetPost(ctx, c.Param("slug"))
	if err != nil {
		return err
	}

	var form CommentForm
	if err := bindForm(c, &form); err != nil {
		return err
	}
	form.normalize()
	redirect := post.Link() + "?comment=sent#comments"

	// Bots fill the hidden field; pretend it worked.
	if form.Website != "" {
		a.Log.Info("comment honeypot triggered", zap.String("ip", c.RealIP()), zap.String("post", post.Slug))
		return c.Redirect(http.StatusSeeOther, redirect)
	}
	if verr := validateForm(form); verr.Err() != nil {
		return a.renderPost(c, http.StatusUnprocessableEntity, post, form, verr.Map())
	}
	if !a.commentLimiter.Allow(c.RealIP()) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many comments, try again later")
	}

	cm := Comment{
		PostID:  post.ID,
		Name:    form.Name,
		Email:   form.Email,
		Content: form.Content,
	}
	if err := a.Store.AddComment(ctx, &cm); err != nil {
		return err
	}
	a.Log.Info("comment received", zap.String("post", post.Slug), zap.String("id", cm.ID))
	return c.Redirect(http.StatusSeeOther, redirect)
}
