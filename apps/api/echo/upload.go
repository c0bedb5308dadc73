package echoapi

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/astravon/portal/core"
	uploadsvc "github.com/astravon/portal/services/upload"
)

const uploadFileField = "file"

var (
	errFileRequired   = "a file is required"
	errFileNotAllowed = "this file type is not allowed"
)

type uploadApi struct {
	uploader uploadsvc.Uploader
}

func registerUploadAPI(g *echo.Group, adminOnly []echo.MiddlewareFunc, deps Deps) {
	api := uploadApi{uploader: deps.Uploader}

	g.POST("/upload", api.upload("image/"), adminOnly...)
	g.POST("/upload-audio", api.upload("audio/"), adminOnly...)
}

// fileContentType prefers the part header and falls back to the file extension.
func fileContentType(filename, header string) string {
	if ct, _, err := mime.ParseMediaType(header); err == nil && ct != "application/octet-stream" {
		return ct
	}
	return mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
}

// upload stores the "file" form field when its media type starts with kind.
func (api *uploadApi) upload(kind string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		fh, err := ctx.FormFile(uploadFileField)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: uploadFileField, Error: errFileRequired})
		}
		contentType := fileContentType(fh.Filename, fh.Header.Get(echo.HeaderContentType))
		if !strings.HasPrefix(contentType, kind) {
			return core.NewValidationError(nil, core.FieldError{Field: uploadFileField, Error: errFileNotAllowed})
		}

		f, err := fh.Open()
		if err != nil {
			return errors.Wrap(err, "opening uploaded file")
		}
		defer f.Close()

		url, err := api.uploader.Upload(ctx.Request().Context(), fh.Filename, contentType, f)
		if err != nil {
			return errors.Wrap(err, "uploading file")
		}
		return ctx.JSON(http.StatusOK, echo.Map{"url": url})
	}
}
