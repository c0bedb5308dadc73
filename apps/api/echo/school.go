package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/astravon/portal/core/school"
)

type schoolApi struct {
	svc      *school.Service
	validate *validator.Validate
}

// registerSchoolAPI mounts the schools catalog: reads are public, writes need an admin.
func registerSchoolAPI(g *echo.Group, adminOnly []echo.MiddlewareFunc, deps Deps) {
	api := schoolApi{svc: deps.SchoolSvc, validate: deps.Validate}

	sg := g.Group("/schools")
	sg.GET("", api.querySchools)
	sg.GET("/:id", api.retrieveSchool)
	sg.POST("", api.createSchool, adminOnly...)
	sg.PUT("/:id", api.updateSchool, adminOnly...)
	sg.DELETE("/:id", api.destroySchool, adminOnly...)

	mg := g.Group("/modules")
	mg.GET("", api.queryModules)
	mg.GET("/:id", api.retrieveModule)
	mg.POST("", api.createModule, adminOnly...)
	mg.PUT("/:id", api.updateModule, adminOnly...)
	mg.DELETE("/:id", api.destroyModule, adminOnly...)

	cg := g.Group("/courses")
	cg.GET("", api.queryCourses)
	cg.GET("/:id", api.retrieveCourse)
	cg.POST("", api.createCourse, adminOnly...)
	cg.PUT("/:id", api.updateCourse, adminOnly...)
	cg.DELETE("/:id", api.destroyCourse, adminOnly...)

	secg := g.Group("/sections")
	secg.GET("", api.querySections)
	secg.GET("/:id", api.retrieveSection)
	secg.POST("", api.createSection, adminOnly...)
	secg.PUT("/:id", api.updateSection, adminOnly...)
	secg.DELETE("/:id", api.destroySection, adminOnly...)
}

// Schools

func (api *schoolApi) querySchools(ctx echo.Context) error {
	schools, err := api.svc.Schools(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying schools")
	}
	return ctx.JSON(http.StatusOK, schools)
}

func (api *schoolApi) retrieveSchool(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	s, err := api.svc.School(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *schoolApi) createSchool(ctx echo.Context) error {
	var data school.School
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to School")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	s, err := api.svc.CreateSchool(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *schoolApi) updateSchool(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var data school.School
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to School")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	s, err := api.svc.UpdateSchool(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *schoolApi) destroySchool(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteSchool(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Modules

func (api *schoolApi) queryModules(ctx echo.Context) error {
	modules, err := api.svc.Modules(ctx.Request().Context(), queryInt(ctx, "schoolId"))
	if err != nil {
		return errors.Wrap(err, "querying modules")
	}
	return ctx.JSON(http.StatusOK, modules)
}

func (api *schoolApi) retrieveModule(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	m, err := api.svc.Module(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *schoolApi) createModule(ctx echo.Context) error {
	var data school.Module
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Module")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	m, err := api.svc.CreateModule(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *schoolApi) updateModule(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var data school.Module
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Module")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	m, err := api.svc.UpdateModule(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *schoolApi) destroyModule(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteModule(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Courses

func (api *schoolApi) queryCourses(ctx echo.Context) error {
	courses, err := api.svc.Courses(ctx.Request().Context(), queryInt(ctx, "moduleId"))
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *schoolApi) retrieveCourse(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	c, err := api.svc.Course(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *schoolApi) createCourse(ctx echo.Context) error {
	var data school.Course
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Course")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	c, err := api.svc.CreateCourse(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *schoolApi) updateCourse(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var data school.Course
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Course")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	c, err := api.svc.UpdateCourse(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *schoolApi) destroyCourse(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteCourse(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Sections

func (api *schoolApi) querySections(ctx echo.Context) error {
	sections, err := api.svc.Sections(ctx.Request().Context(), queryInt(ctx, "courseId"))
	if err != nil {
		return errors.Wrap(err, "querying sections")
	}
	return ctx.JSON(http.StatusOK, sections)
}

func (api *schoolApi) retrieveSection(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	s, err := api.svc.Section(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *schoolApi) createSection(ctx echo.Context) error {
	var data school.Section
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Section")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	s, err := api.svc.CreateSection(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *schoolApi) updateSection(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var data school.Section
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Section")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	s, err := api.svc.UpdateSection(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *schoolApi) destroySection(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteSection(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
