package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/masolab/soko/core/course"
	"github.com/masolab/soko/core/user"
)

const contextCourseKey = "course"

// courseObjectMiddleware loads the course named by the :id path param into the
// context. Unknown ids stop the chain with a 404.
func courseObjectMiddleware(svc *course.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			crs, err := svc.GetByID(intParam(ctx, "id"))
			if err != nil {
				if errors.Cause(err) == course.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding course by ID")
			}
			ctx.Set(contextCourseKey, crs)
			return next(ctx)
		}
	}
}

// courseOwnerMiddleware requires the context user to own the context course.
func courseOwnerMiddleware(usrSvc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			crs, ok := ctx.Get(contextCourseKey).(course.Course)
			if !ok {
				return errors.New("course object not found in echo.Context")
			}
			ctxUsr, err := getContextUser(ctx, usrSvc)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			if !course.CanWrite(ctxUsr, crs) {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

func getContextCourse(ctx echo.Context) (course.Course, error) {
	if crs, ok := ctx.Get(contextCourseKey).(course.Course); ok {
		return crs, nil
	}
	return course.Course{}, errors.New("course object not found in echo.Context")
}
