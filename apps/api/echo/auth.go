package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/udahili/core"
)

// Identity is established upstream (API gateway); we only read the headers
// it sets and authorize against role & ownership.
const (
	actorIDHeader   = "X-Actor-Id"
	actorRoleHeader = "X-Actor-Role"

	actorCtxKey = "actor"
)

var errActorNotFoundInCtx = errors.New("actor not found in echo.Context")

// actorMiddleware extracts the authenticated actor from the identity headers.
// Requests without a valid actor are rejected.
func actorMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			actor := core.Actor{
				ID:   ctx.Request().Header.Get(actorIDHeader),
				Role: ctx.Request().Header.Get(actorRoleHeader),
			}
			if actor.ID == "" || !validRole(actor.Role) {
				return errHttpUnauthorized
			}
			ctx.Set(actorCtxKey, actor)
			return next(ctx)
		}
	}
}

// roleMiddleware restricts an endpoint to the given roles; admin always passes.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			actor, err := getContextActor(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context actor")
			}
			if actor.IsAdmin() {
				return next(ctx)
			}
			for _, role := range roles {
				if actor.Role == role {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

func getContextActor(ctx echo.Context) (core.Actor, error) {
	actor, ok := ctx.Get(actorCtxKey).(core.Actor)
	if !ok {
		return core.Actor{}, errActorNotFoundInCtx
	}
	return actor, nil
}

func validRole(role string) bool {
	for _, r := range core.AllRoles {
		if role == r {
			return true
		}
	}
	return false
}
