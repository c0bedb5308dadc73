package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/astravon/portal/core/post"
	"github.com/astravon/portal/core/session"
	"github.com/astravon/portal/core/user"
)

// requireCapability evaluates the request's session once with the guard.
// A session-less request is answered 401; an authenticated non-admin hitting an admin route 403.
func requireCapability(guard session.Guard, c session.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			var s session.Session
			if claims, err := getContextClaims(ctx); err == nil {
				s = claims.Session()
			}
			decision := guard.Authorize(s, c)
			switch {
			case decision.Allowed:
				return next(ctx)
			case decision.Replace:
				return errHttpForbidden
			default:
				return errUnauthorized
			}
		}
	}
}

// getActor returns who performs the request, as seen by the post service.
func getActor(ctx echo.Context, guard session.Guard) (post.Actor, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return post.Actor{}, err
	}
	return post.Actor{UserID: claims.UserID(), IsAdmin: guard.IsAdmin(claims.Profile())}, nil
}

func ctxUserOrAdminMiddleware(svc user.Service, guard session.Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}

			id, err := strconv.Atoi(ctx.Param("id"))
			if err != nil {
				return errHttpNotFound
			}
			if id == claims.UserID() || guard.IsAdmin(claims.Profile()) {
				if usr, err := svc.GetByID(ctx.Request().Context(), id); err == nil {
					ctx.Set("object", usr)
					return next(ctx)
				} else if errors.Cause(err) != user.ErrNotFound {
					return errors.Wrap(err, "finding user by ID")
				}
			}
			return errHttpNotFound
		}
	}
}
