package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/astravon/portal/core/podcast"
)

type podcastApi struct {
	svc      *podcast.Service
	validate *validator.Validate
}

func registerPodcastAPI(g *echo.Group, adminOnly []echo.MiddlewareFunc, deps Deps) {
	api := podcastApi{svc: deps.PodcastSvc, validate: deps.Validate}

	pg := g.Group("/podcasts/programs")
	pg.GET("", api.queryPrograms)
	pg.GET("/:id", api.retrieveProgram)
	pg.POST("", api.createProgram, adminOnly...)
	pg.PUT("/:id", api.updateProgram, adminOnly...)
	pg.DELETE("/:id", api.destroyProgram, adminOnly...)

	eg := g.Group("/podcasts/episodes")
	eg.GET("", api.queryEpisodes)
	eg.GET("/:id", api.retrieveEpisode)
	eg.POST("", api.createEpisode, adminOnly...)
	eg.PUT("/:id", api.updateEpisode, adminOnly...)
	eg.DELETE("/:id", api.destroyEpisode, adminOnly...)
}

// Programs

func (api *podcastApi) queryPrograms(ctx echo.Context) error {
	var filter podcast.ProgramFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []podcast.Program{})
	}
	programs, err := api.svc.Programs(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying programs")
	}
	return ctx.JSON(http.StatusOK, programs)
}

func (api *podcastApi) retrieveProgram(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	p, err := api.svc.Program(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *podcastApi) createProgram(ctx echo.Context) error {
	var data podcast.Program
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Program")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	p, err := api.svc.CreateProgram(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *podcastApi) updateProgram(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var data podcast.Program
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Program")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	p, err := api.svc.UpdateProgram(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *podcastApi) destroyProgram(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteProgram(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Episodes

func (api *podcastApi) queryEpisodes(ctx echo.Context) error {
	var filter podcast.EpisodeFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []podcast.Episode{})
	}
	episodes, err := api.svc.Episodes(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying episodes")
	}
	return ctx.JSON(http.StatusOK, episodes)
}

func (api *podcastApi) retrieveEpisode(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	e, err := api.svc.Episode(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *podcastApi) createEpisode(ctx echo.Context) error {
	var data podcast.Episode
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Episode")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	e, err := api.svc.CreateEpisode(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *podcastApi) updateEpisode(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var data podcast.Episode
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Episode")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	e, err := api.svc.UpdateEpisode(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *podcastApi) destroyEpisode(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteEpisode(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
