package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/masolab/soko/core"
	"github.com/masolab/soko/core/cart"
	"github.com/masolab/soko/core/course"
	"github.com/masolab/soko/core/user"
)

type cartApi struct {
	svc      *cart.Service
	usrSvc   *user.Service
	validate *validator.Validate
}

func registerCartAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := cartApi{
		svc:      deps.CartSvc,
		usrSvc:   deps.UserSvc,
		validate: deps.Validate,
	}

	// the whole cart is self-scoped; other users' carts are unreachable
	cg := g.Group("/cart", jwt)
	cg.GET("", api.retrieve)
	cg.POST("/items", api.addItem)
	cg.GET("/items/:id", api.retrieveItem)
	cg.DELETE("/items/:id", api.removeItem)
}

// Handlers

func (api *cartApi) retrieve(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	crt, lines, err := api.svc.Get(ctxUsr)
	if err != nil {
		return errors.Wrap(err, "loading cart")
	}
	return ctx.JSON(http.StatusOK, newCartResponse(crt, lines))
}

func (api *cartApi) addItem(ctx echo.Context) error {
	var data cart.NewItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewItem")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	line, err := api.svc.AddItem(ctxUsr, data)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return core.NewValidationError(nil, core.FieldError{Field: "course_id", Error: "unknown course"})
		}
		return errors.Wrap(err, "adding cart item")
	}
	return ctx.JSON(http.StatusCreated, CartLineResponse{Line: line, TotalPrice: line.TotalPrice()})
}

func (api *cartApi) retrieveItem(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	line, err := api.svc.GetItem(ctxUsr, intParam(ctx, "id"))
	if err != nil {
		if cause := errors.Cause(err); cause == cart.ErrNotFound || cause == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding cart item")
	}
	return ctx.JSON(http.StatusOK, CartLineResponse{Line: line, TotalPrice: line.TotalPrice()})
}

func (api *cartApi) removeItem(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.RemoveItem(ctxUsr, intParam(ctx, "id")); err != nil {
		if errors.Cause(err) == cart.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting cart item")
	}
	return ctx.NoContent(http.StatusNoContent)
}
