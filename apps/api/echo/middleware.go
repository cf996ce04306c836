package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/registrar/core/teacher"
	"github.com/trezcool/registrar/core/user"
)

const contextCRNKey = "crn"

// roleMiddleware only lets through users of the given types.
func roleMiddleware(types ...user.Type) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			for _, typ := range types {
				if claims.Type == typ {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

// teachesCourseMiddleware scopes the `:crn` routes to the courses the teacher is assigned to.
func teachesCourseMiddleware(svc teacher.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			crn, err := intParam(ctx, "crn")
			if err != nil {
				return err
			}
			teacherID, err := getContextUserID(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context user ID")
			}

			ok, err := svc.TeachesCourse(ctx.Request().Context(), teacherID, crn)
			if err != nil {
				return errors.Wrap(err, "checking course assignment")
			}
			if !ok {
				return errHttpNotFound
			}
			ctx.Set(contextCRNKey, crn)
			return next(ctx)
		}
	}
}

// intParam parses a numeric path parameter; anything else is a 404.
func intParam(ctx echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(ctx.Param(name))
	if err != nil || v <= 0 {
		return 0, errHttpNotFound
	}
	return v, nil
}
