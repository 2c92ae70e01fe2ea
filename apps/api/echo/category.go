package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/masolab/soko/core"
	"github.com/masolab/soko/core/course"
)

type categoryApi struct {
	svc      *course.Service
	validate *validator.Validate
}

func registerCategoryAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := categoryApi{
		svc:      deps.CourseSvc,
		validate: deps.Validate,
	}

	cg := g.Group("/categories")
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.POST("", api.create, jwt)
}

// Handlers

func (api *categoryApi) query(ctx echo.Context) error {
	cats, err := api.svc.QueryCategories()
	if err != nil {
		return errors.Wrap(err, "querying categories")
	}
	if cats == nil {
		cats = []course.Category{}
	}
	return ctx.JSON(http.StatusOK, cats)
}

func (api *categoryApi) retrieve(ctx echo.Context) error {
	cat, err := api.svc.GetCategory(intParam(ctx, "id"))
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding category by ID")
	}

	catID := cat.ID
	courses, _, err := api.svc.Filter(
		course.QueryFilter{CategoryID: &catID},
		nil,
		core.Pagination{PageSize: core.MaxPageSize},
	)
	if err != nil {
		return errors.Wrap(err, "querying category courses")
	}
	return ctx.JSON(http.StatusOK, CategoryDetailResponse{Category: cat, Courses: courses})
}

func (api *categoryApi) create(ctx echo.Context) error {
	var data course.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cat, err := api.svc.CreateCategory(data)
	if err != nil {
		return errors.Wrap(err, "creating category")
	}
	return ctx.JSON(http.StatusCreated, cat)
}
