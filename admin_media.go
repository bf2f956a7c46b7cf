package site

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func (a *App) handleMediaList(c echo.Context) error {
	return a.renderMedia(c, http.StatusOK, "")
}

// handleMediaUpload stores the "file" field in the folder named by "folder".
// Clients that ask for JSON (the editor's image button) get the stored
// object back instead of a redirect.
func (a *App) handleMediaUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return a.renderMedia(c, http.StatusBadRequest, "Choose a file to upload.")
	}
	m, err := a.Uploads.Upload(c.Request().Context(), c.FormValue("folder"), fh)
	switch {
	case errors.Is(err, ErrUploadTooLarge):
		return a.renderMedia(c, http.StatusRequestEntityTooLarge, "The file is larger than 10 MB.")
	case errors.Is(err, ErrUploadEmpty):
		return a.renderMedia(c, http.StatusBadRequest, "The file is empty.")
	case errors.Is(err, ErrImageTooLarge):
		return a.renderMedia(c, http.StatusRequestEntityTooLarge, "The image dimensions are too large.")
	case err != nil:
		return err
	}
	a.Log.Info("media uploaded", zap.String("path", m.Path), zap.Int64("size", m.Size))

	if c.Request().Header.Get(echo.HeaderAccept) == echo.MIMEApplicationJSON {
		return c.JSON(http.StatusCreated, map[string]string{"path": m.Path, "url": m.URL()})
	}
	return redirectMsg(c, "/admin/media/", "Uploaded "+m.URL())
}

func (a *App) handleMediaDelete(c echo.Context) error {
	if err := a.Uploads.Delete(c.Request().Context(), c.FormValue("path")); err != nil {
		return err
	}
	return redirectMsg(c, "/admin/media/", "File deleted")
}

func (a *App) renderMedia(c echo.Context, code int, msg string) error {
	media, err := a.Store.ListMedia(c.Request().Context())
	if err != nil {
		return err
	}
	return RenderStatus(c, code, a.Views.AdminMedia(AdminMediaPage{
		Page:    a.adminPage(c, "Media"),
		Media:   media,
		Folders: MediaFolders,
		Error:   msg,
	}))
}
