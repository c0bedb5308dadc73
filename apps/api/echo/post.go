package echoapi

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/astravon/portal/core"
	"github.com/astravon/portal/core/post"
	"github.com/astravon/portal/core/session"
	uploadsvc "github.com/astravon/portal/services/upload"
)

const mediaFileField = "mediaFile"

type postApi struct {
	svc      post.Service
	guard    session.Guard
	uploader uploadsvc.Uploader
	validate *validator.Validate
}

func registerPostAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps Deps) {
	api := postApi{
		svc:      deps.PostSvc,
		guard:    deps.Guard,
		uploader: deps.Uploader,
		validate: deps.Validate,
	}

	pg := g.Group("/posts")
	pg.GET("", api.query)
	pg.GET("/:id", api.retrieve)
	pg.GET("/:id/comments", api.queryComments)
	pg.POST("", api.create, authed...)
	pg.PUT("/:id", api.update, authed...)
	pg.DELETE("/:id", api.destroy, authed...)
	pg.POST("/:id/likes", api.like, authed...)
	pg.POST("/:id/comments", api.comment, authed...)

	g.DELETE("/likes/:id", api.unlike, authed...)
}

func (api *postApi) query(ctx echo.Context) error {
	posts, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying posts")
	}
	return ctx.JSON(http.StatusOK, core.ListResponse{Data: posts})
}

func (api *postApi) retrieve(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	p, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, core.OK("", p))
}

// mediaFile returns the optional multipart media file; only images and videos are accepted.
func mediaFile(ctx echo.Context) (*multipart.FileHeader, string, error) {
	fh, err := ctx.FormFile(mediaFileField)
	if err != nil {
		if err == http.ErrMissingFile || err == http.ErrNotMultipart {
			return nil, "", nil
		}
		return nil, "", errors.Wrap(err, "reading media file")
	}
	contentType := fileContentType(fh.Filename, fh.Header.Get(echo.HeaderContentType))
	if !strings.HasPrefix(contentType, "image/") && !strings.HasPrefix(contentType, "video/") {
		return nil, "", core.NewValidationError(nil, core.FieldError{Field: mediaFileField, Error: errFileNotAllowed})
	}
	return fh, contentType, nil
}

// uploadMedia stores fh and returns its public URL.
func (api *postApi) uploadMedia(ctx echo.Context, fh *multipart.FileHeader, contentType string) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", errors.Wrap(err, "opening media file")
	}
	defer f.Close()

	url, err := api.uploader.Upload(ctx.Request().Context(), fh.Filename, contentType, f)
	return url, errors.Wrap(err, "uploading media file")
}

func (api *postApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data post.NewPost
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPost")
	}
	data.UserID = claims.UserID()

	fh, contentType, err := mediaFile(ctx)
	if err != nil {
		return err
	}
	data.HasMedia = fh != nil
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	// the media is stored only once the post is known to be valid
	if fh != nil {
		url, err := api.uploadMedia(ctx, fh, contentType)
		if err != nil {
			return err
		}
		data.URLMedia = url
	}

	p, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, core.OK("post created", p))
}

func (api *postApi) update(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	actor, err := getActor(ctx, api.guard)
	if err != nil {
		return err
	}

	var data post.UpdatePost
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePost")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.Update(ctx.Request().Context(), id, data, actor)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, core.OK("post updated", p))
}

func (api *postApi) destroy(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	actor, err := getActor(ctx, api.guard)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id, actor); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, core.OK("post deleted", nil))
}

func (api *postApi) like(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	l, err := api.svc.Like(ctx.Request().Context(), id, claims.UserID())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, core.OK("post liked", l))
}

func (api *postApi) unlike(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	actor, err := getActor(ctx, api.guard)
	if err != nil {
		return err
	}
	if err := api.svc.Unlike(ctx.Request().Context(), id, actor); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, core.OK("like removed", nil))
}

func (api *postApi) queryComments(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	comments, err := api.svc.Comments(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, comments)
}

func (api *postApi) comment(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data post.NewComment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComment")
	}
	data.PostID = id
	data.UserID = claims.UserID()
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Comment(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, core.OK("comment added", c))
}
