package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/masolab/soko/core"
)

var (
	orderingParam = "ordering"
	pageParam     = "page"
	pageSizeParam = "page_size"
)

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind parses the `ordering` query param ("field" or "-field", comma-separated).
// Fields outside the allowed set are dropped; they never reach the store.
func (ord *Ordering) Bind(ctx echo.Context, allowed ...string) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if !isAllowedField(field, allowed) {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

func isAllowedField(field string, allowed []string) bool {
	for _, a := range allowed {
		if field == a {
			return true
		}
	}
	return false
}

type Pagination struct {
	core.Pagination
}

func (p *Pagination) Bind(ctx echo.Context) {
	if page, err := strconv.Atoi(ctx.QueryParam(pageParam)); err == nil {
		p.Page = page
	}
	if size, err := strconv.Atoi(ctx.QueryParam(pageSizeParam)); err == nil {
		p.PageSize = size
	}
	p.Clean()
}

// intParam parses a path param as an int; a non-numeric value reads as 0,
// which no entity has.
func intParam(ctx echo.Context, name string) int {
	id, _ := strconv.Atoi(ctx.Param(name))
	return id
}
