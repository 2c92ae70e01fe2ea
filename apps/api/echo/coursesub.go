package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/masolab/soko/core/course"
)

// subResourceAPI describes one course sub-resource collection. All five
// collections share the same route shape and ownership rules; only the
// payloads and service calls differ.
type subResourceAPI struct {
	path string
	list func(api courseApi, courseID int) (interface{}, error)
	// create binds and validates the request payload, then creates the entity
	// under courseID.
	create func(api courseApi, ctx echo.Context, courseID int) (interface{}, error)
	// retrieve returns the entity and its parent course id.
	retrieve func(api courseApi, id int) (interface{}, int, error)
	update   func(api courseApi, ctx echo.Context, id int) (interface{}, error)
	remove   func(api courseApi, id int) error
}

var subResources = []subResourceAPI{
	{
		path: "lessons",
		list: func(api courseApi, courseID int) (interface{}, error) {
			return api.svc.QueryLessons(courseID)
		},
		create: func(api courseApi, ctx echo.Context, courseID int) (interface{}, error) {
			var data course.NewLesson
			if err := ctx.Bind(&data); err != nil {
				return nil, errors.Wrap(err, "binding to NewLesson")
			}
			if err := data.Validate(api.validate); err != nil {
				return nil, err
			}
			return api.svc.CreateLesson(courseID, data)
		},
		retrieve: func(api courseApi, id int) (interface{}, int, error) {
			lsn, err := api.svc.GetLesson(id)
			return lsn, lsn.CourseID, err
		},
		update: func(api courseApi, ctx echo.Context, id int) (interface{}, error) {
			var data course.NewLesson
			if err := ctx.Bind(&data); err != nil {
				return nil, errors.Wrap(err, "binding to NewLesson")
			}
			if err := data.Validate(api.validate); err != nil {
				return nil, err
			}
			return api.svc.UpdateLesson(id, data)
		},
		remove: func(api courseApi, id int) error {
			return api.svc.DeleteLesson(id)
		},
	},
	{
		path: "assignments",
		list: func(api courseApi, courseID int) (interface{}, error) {
			return api.svc.QueryAssignments(courseID)
		},
		create: func(api courseApi, ctx echo.Context, courseID int) (interface{}, error) {
			var data course.NewAssignment
			if err := ctx.Bind(&data); err != nil {
				return nil, errors.Wrap(err, "binding to NewAssignment")
			}
			if err := data.Validate(api.validate); err != nil {
				return nil, err
			}
			return api.svc.CreateAssignment(courseID, data)
		},
		retrieve: func(api courseApi, id int) (interface{}, int, error) {
			asn, err := api.svc.GetAssignment(id)
			return asn, asn.CourseID, err
		},
		update: func(api courseApi, ctx echo.Context, id int) (interface{}, error) {
			var data course.NewAssignment
			if err := ctx.Bind(&data); err != nil {
				return nil, errors.Wrap(err, "binding to NewAssignment")
			}
			if err := data.Validate(api.validate); err != nil {
				return nil, err
			}
			return api.svc.UpdateAssignment(id, data)
		},
		remove: func(api courseApi, id int) error {
			return api.svc.DeleteAssignment(id)
		},
	},
	{
		path: "questions",
		list: func(api courseApi, courseID int) (interface{}, error) {
			return api.svc.QueryQuestions(courseID)
		},
		create: func(api courseApi, ctx echo.Context, courseID int) (interface{}, error) {
			var data course.NewQuestion
			if err := ctx.Bind(&data); err != nil {
				return nil, errors.Wrap(err, "binding to NewQuestion")
			}
			if err := data.Validate(api.validate); err != nil {
				return nil, err
			}
			return api.svc.CreateQuestion(courseID, data)
		},
		retrieve: func(api courseApi, id int) (interface{}, int, error) {
			qst, err := api.svc.GetQuestion(id)
			return qst, qst.CourseID, err
		},
		update: func(api courseApi, ctx echo.Context, id int) (interface{}, error) {
			var data course.NewQuestion
			if err := ctx.Bind(&data); err != nil {
				return nil, errors.Wrap(err, "binding to NewQuestion")
			}
			if err := data.Validate(api.validate); err != nil {
				return nil, err
			}
			return api.svc.UpdateQuestion(id, data)
		},
		remove: func(api courseApi, id int) error {
			return api.svc.DeleteQuestion(id)
		},
	},
	{
		path: "exams",
		list: func(api courseApi, courseID int) (interface{}, error) {
			return api.svc.QueryExams(courseID)
		},
		create: func(api courseApi, ctx echo.Context, courseID int) (interface{}, error) {
			var data course.NewExam
			if err := ctx.Bind(&data); err != nil {
				return nil, errors.Wrap(err, "binding to NewExam")
			}
			if err := data.Validate(api.validate); err != nil {
				return nil, err
			}
			return api.svc.CreateExam(courseID, data)
		},
		retrieve: func(api courseApi, id int) (interface{}, int, error) {
			exm, err := api.svc.GetExam(id)
			return exm, exm.CourseID, err
		},
		update: func(api courseApi, ctx echo.Context, id int) (interface{}, error) {
			var data course.NewExam
			if err := ctx.Bind(&data); err != nil {
				return nil, errors.Wrap(err, "binding to NewExam")
			}
			if err := data.Validate(api.validate); err != nil {
				return nil, err
			}
			return api.svc.UpdateExam(id, data)
		},
		remove: func(api courseApi, id int) error {
			return api.svc.DeleteExam(id)
		},
	},
	{
		path: "certificates",
		list: func(api courseApi, courseID int) (interface{}, error) {
			return api.svc.QueryCertificates(courseID)
		},
		create: func(api courseApi, ctx echo.Context, courseID int) (interface{}, error) {
			var data course.NewCertificate
			if err := ctx.Bind(&data); err != nil {
				return nil, errors.Wrap(err, "binding to NewCertificate")
			}
			if err := data.Validate(api.validate); err != nil {
				return nil, err
			}
			return api.svc.CreateCertificate(courseID, data)
		},
		retrieve: func(api courseApi, id int) (interface{}, int, error) {
			cert, err := api.svc.GetCertificate(id)
			return cert, cert.CourseID, err
		},
		update: func(api courseApi, ctx echo.Context, id int) (interface{}, error) {
			var data course.NewCertificate
			if err := ctx.Bind(&data); err != nil {
				return nil, errors.Wrap(err, "binding to NewCertificate")
			}
			if err := data.Validate(api.validate); err != nil {
				return nil, err
			}
			return api.svc.UpdateCertificate(id, data)
		},
		remove: func(api courseApi, id int) error {
			return api.svc.DeleteCertificate(id)
		},
	},
}

func registerCourseSubAPI(dg, og *echo.Group, api courseApi) {
	for _, sub := range subResources {
		sub := sub

		dg.GET("/"+sub.path, sub.handleList(api))
		dg.GET("/"+sub.path+"/:subID", sub.handleRetrieve(api))

		og.POST("/"+sub.path, sub.handleCreate(api))
		og.PUT("/"+sub.path+"/:subID", sub.handleUpdate(api))
		og.DELETE("/"+sub.path+"/:subID", sub.handleDelete(api))
	}
}

func (sub subResourceAPI) handleList(api courseApi) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		crs, err := getContextCourse(ctx)
		if err != nil {
			return err
		}
		res, err := sub.list(api, crs.ID)
		if err != nil {
			return errors.Wrap(err, "querying "+sub.path)
		}
		return ctx.JSON(http.StatusOK, res)
	}
}

func (sub subResourceAPI) handleCreate(api courseApi) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		crs, err := getContextCourse(ctx)
		if err != nil {
			return err
		}
		res, err := sub.create(api, ctx, crs.ID)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusCreated, res)
	}
}

// loadOwn returns the sub-resource entity, enforcing that it belongs to the
// course named in the path. Entities under another course read as not found.
func (sub subResourceAPI) loadOwn(api courseApi, ctx echo.Context) (interface{}, int, error) {
	crs, err := getContextCourse(ctx)
	if err != nil {
		return nil, 0, err
	}
	id := intParam(ctx, "subID")
	res, parentID, err := sub.retrieve(api, id)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return nil, 0, errHttpNotFound
		}
		return nil, 0, errors.Wrap(err, "finding "+sub.path+" entity")
	}
	if parentID != crs.ID {
		return nil, 0, errHttpNotFound
	}
	return res, id, nil
}

func (sub subResourceAPI) handleRetrieve(api courseApi) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		res, _, err := sub.loadOwn(api, ctx)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, res)
	}
}

func (sub subResourceAPI) handleUpdate(api courseApi) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		_, id, err := sub.loadOwn(api, ctx)
		if err != nil {
			return err
		}
		res, err := sub.update(api, ctx, id)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, res)
	}
}

func (sub subResourceAPI) handleDelete(api courseApi) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		_, id, err := sub.loadOwn(api, ctx)
		if err != nil {
			return err
		}
		if err := sub.remove(api, id); err != nil {
			return errors.Wrap(err, "deleting "+sub.path+" entity")
		}
		return ctx.NoContent(http.StatusNoContent)
	}
}
