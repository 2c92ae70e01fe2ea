package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/masolab/soko/core"
	"github.com/masolab/soko/core/course"
	"github.com/masolab/soko/core/user"
)

// courseOrderingFields is the whitelist for the courses `ordering` query param.
var courseOrderingFields = []string{"name", "price", "created_at"}

type courseApi struct {
	svc      *course.Service
	usrSvc   *user.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := courseApi{
		svc:      deps.CourseSvc,
		usrSvc:   deps.UserSvc,
		validate: deps.Validate,
	}

	cg := g.Group("/courses")

	// public endpoints
	cg.GET("", api.query)

	// authed endpoints
	cg.GET("/mine", api.mine, jwt)
	cg.POST("", api.create, jwt)

	// detail endpoints; the course is loaded once for the whole group
	dg := cg.Group("/:id", courseObjectMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.POST("/reviews", api.createReview, jwt)

	// owner-only endpoints
	og := dg.Group("", jwt, courseOwnerMiddleware(api.usrSvc))
	og.PUT("", api.update)
	og.PATCH("", api.partialUpdate)
	og.DELETE("", api.destroy)

	registerCourseSubAPI(dg, og, api)
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	return api.list(ctx, nil)
}

// mine lists only the courses owned by the calling user.
func (api *courseApi) mine(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return api.list(ctx, &ctxUsr.ID)
}

func (api *courseApi) list(ctx echo.Context, createdBy *int) error {
	filter := new(course.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return core.NewValidationError(errors.New("invalid query parameters"))
	}
	filter.Clean()
	filter.CreatedBy = createdBy

	ordering := new(Ordering)
	ordering.Bind(ctx, courseOrderingFields...)
	page := new(Pagination)
	page.Bind(ctx)

	courses, total, err := api.svc.Filter(*filter, ordering.Orderings, page.Pagination)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}

	items, err := api.listItems(courses)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, PaginatedResponse{
		Count:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
		Results:  items,
	})
}

// listItems joins each course with its category name.
func (api *courseApi) listItems(courses []course.Course) ([]CourseListItem, error) {
	cats, err := api.svc.QueryCategories()
	if err != nil {
		return nil, errors.Wrap(err, "querying categories")
	}
	catNames := make(map[int]string, len(cats))
	for _, cat := range cats {
		catNames[cat.ID] = cat.Name
	}

	items := make([]CourseListItem, 0, len(courses))
	for _, crs := range courses {
		items = append(items, CourseListItem{Course: crs, CategoryName: catNames[crs.CategoryID]})
	}
	return items, nil
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	crs, err := api.svc.Create(data, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := getContextCourse(ctx)
	if err != nil {
		return err
	}

	det, err := api.svc.GetDetail(crs.ID)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "loading course detail")
	}

	res := CourseDetailResponse{Detail: det}
	if creator, err := api.usrSvc.GetByID(det.CreatedBy); err == nil {
		res.CreatorUsername = creator.Username
	}
	res.Reviews = api.reviewResponses(det.Reviews)
	return ctx.JSON(http.StatusOK, res)
}

// reviewResponses joins each review with the reviewer's username.
func (api *courseApi) reviewResponses(revs []course.Review) []ReviewResponse {
	res := make([]ReviewResponse, 0, len(revs))
	for _, rev := range revs {
		rr := ReviewResponse{Review: rev}
		if usr, err := api.usrSvc.GetByID(rev.UserID); err == nil {
			rr.ReviewerUsername = usr.Username
		}
		res = append(res, rr)
	}
	return res
}

func (api *courseApi) update(ctx echo.Context) error {
	crs, err := getContextCourse(ctx)
	if err != nil {
		return err
	}

	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	crs, err = api.svc.Update(crs.ID, data)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

// partialUpdate touches only the fields present in the request body.
func (api *courseApi) partialUpdate(ctx echo.Context) error {
	crs, err := getContextCourse(ctx)
	if err != nil {
		return err
	}

	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	crs, err = api.svc.PartialUpdate(crs.ID, data)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	crs, err := getContextCourse(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(crs.ID); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) createReview(ctx echo.Context) error {
	crs, err := getContextCourse(ctx)
	if err != nil {
		return err
	}

	var data course.NewReview
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReview")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	rev, err := api.svc.CreateReview(ctxUsr, crs.ID, data)
	if err != nil {
		switch errors.Cause(err) {
		case course.ErrNotFound:
			return errHttpNotFound
		case course.ErrPermissionDenied:
			return errHttpForbidden
		case course.ErrAlreadyReviewed:
			return echo.NewHTTPError(http.StatusForbidden, course.ErrAlreadyReviewed.Error())
		}
		return errors.Wrap(err, "creating review")
	}

	rr := ReviewResponse{Review: rev, ReviewerUsername: ctxUsr.Username}
	return ctx.JSON(http.StatusCreated, rr)
}
