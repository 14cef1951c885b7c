package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/attrition_datahub/internal/domain"
	"github.com/locvowork/attrition_datahub/internal/service"
)

// RequestValidator plugs the service validation rules into echo's c.Validate.
type RequestValidator struct{}

func (RequestValidator) Validate(i interface{}) error {
	return service.Validate(i)
}

// listFilter reads the skip/limit window; bad values fall back to the defaults.
func listFilter(c echo.Context) domain.ListFilter {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	skip, _ := strconv.Atoi(c.QueryParam("skip"))
	return domain.ListFilter{Limit: limit, Offset: skip}
}

func intParam(c echo.Context, name string) (int, error) {
	return strconv.Atoi(c.Param(name))
}

func int64Param(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
