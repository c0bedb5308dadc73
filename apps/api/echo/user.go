package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/astravon/portal/core"
	"github.com/astravon/portal/core/session"
	"github.com/astravon/portal/core/user"
)

var (
	errUsrNotFoundInCtx  = errors.New("user object not found in echo.Context")
	errNoPermsToSetRoles = "not enough rights to set these roles"
	errInvalidCode       = errors.New("invalid verification code")
)

type userApi struct {
	conf     *core.Config
	logger   core.Logger
	svc      user.Service
	guard    session.Guard
	validate *validator.Validate
}

func registerUserAPI(g *echo.Group, authed []echo.MiddlewareFunc, deps Deps) {
	api := userApi{
		conf:     deps.Conf,
		logger:   deps.Logger,
		svc:      deps.UserSvc,
		guard:    deps.Guard,
		validate: deps.Validate,
	}

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("", api.create)
	ug.POST("/login", api.login)
	ug.POST("/verification/:mail", api.sendVerificationCode)
	ug.GET("/verification", api.verifyMail)
	ug.GET("/roles", api.queryRoles)

	// authed endpoints
	ug.POST("/token-refresh", api.refreshToken, authed...)

	// detail endpoints
	detailMw := append(append([]echo.MiddlewareFunc{}, authed...), ctxUserOrAdminMiddleware(api.svc, api.guard))
	dg := ug.Group("/:id", detailMw...)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	data.Roles = nil // self registration always yields a member
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	if err := api.svc.SendVerificationCode(ctx.Request().Context(), usr.Mail); err != nil {
		api.logger.Error("sending verification code", err, usr)
	}

	return ctx.JSON(http.StatusCreated, core.OK("user registered", usr))
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Mail, data.Password)
	if err != nil {
		return err
	}
	token, err := GenerateToken(GetUserClaims(usr, api.conf), api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, core.OK("login successful", LoginResponse{Token: token, User: usr.Profile()}))
}

func (api *userApi) sendVerificationCode(ctx echo.Context) error {
	err := api.svc.SendVerificationCode(ctx.Request().Context(), ctx.Param("mail"))
	switch errors.Cause(err) {
	case nil, user.ErrNotFound, user.ErrAlreadyVerified:
	default:
		// do not return errors to attackers
		api.logger.Error("sending verification code", errors.Wrap(err, "sending verification code"))
	}
	return ctx.JSON(http.StatusOK, core.OK(
		"If the mail address is associated with an unverified account, a verification code is on its way.", nil,
	))
}

func (api *userApi) verifyMail(ctx echo.Context) error {
	var data user.VerifyMail
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VerifyMail")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.VerifyMail(ctx.Request().Context(), data); err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return core.NewValidationError(errInvalidCode, core.FieldError{Field: "code", Error: errInvalidCode.Error()})
		}
		return err
	}
	return ctx.JSON(http.StatusOK, core.OK("mail verified", nil))
}

func (api *userApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Roles)
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc, api.conf)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, core.OK("", TokenResponse{Token: token}))
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, ok := ctx.Get("object").(user.User)
	if !ok {
		return errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, core.OK("", usr))
}

func (api *userApi) update(ctx echo.Context) error {
	usr, ok := ctx.Get("object").(user.User)
	if !ok {
		return errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}

	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}

	ctxUsr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	isAdmin := api.guard.IsAdmin(&user.Profile{Mail: ctxUsr.Mail, Roles: ctxUsr.Roles})
	// `Roles` can only be changed by admin
	if data.Roles != nil && !isAdmin {
		return errHttpForbidden
	}

	if err := data.Validate(ctx.Request().Context(), usr, api.validate, api.svc); err != nil {
		return err
	}

	// ctxUser cannot set a role > their own max role
	if user.MaxRolePriority(data.Roles) > user.MaxRolePriority(ctxUsr.Roles) {
		return core.NewValidationError(nil, core.FieldError{Field: "roles", Error: errNoPermsToSetRoles})
	}

	usr, err = api.svc.Update(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, core.OK("user updated", usr))
}

func (api *userApi) destroy(ctx echo.Context) error {
	usr, ok := ctx.Get("object").(user.User)
	if !ok {
		return errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), usr.ID); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.JSON(http.StatusOK, core.OK("user deleted", nil))
}

type (
	LoginRequest struct {
		Mail     string `json:"mail" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string       `json:"token"`
		User  user.Profile `json:"user"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}
)

func (r *LoginRequest) Validate(validate *validator.Validate) error {
	r.Mail = core.CleanString(r.Mail, true /* lower */)
	return validate.Struct(r)
}
