package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/attrition_datahub/internal/service"
	"github.com/locvowork/attrition_datahub/internal/service/serviceutils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves exports and the search mirror. search is nil when no
// search index is configured.
type ReportHandler struct {
	reports *service.ReportService
	search  *service.SearchService
}

func NewReportHandler(reports *service.ReportService, search *service.SearchService) *ReportHandler {
	return &ReportHandler{reports: reports, search: search}
}

func (h *ReportHandler) Register(e *echo.Echo) {
	e.GET("/reports/departments.xlsx", h.ExportDepartments)
	e.GET("/search/employees", h.SearchEmployees)
}

func (h *ReportHandler) ExportDepartments(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.reports.WriteDepartmentWorkbook(c.Request().Context(), &buf); err != nil {
		return serviceutils.ResponseFromError(c, "Failed to generate excel file", err)
	}

	c.Response().Header().Set("Content-Disposition", `attachment; filename="department_stats.xlsx"`)
	c.Response().Header().Set("Content-Transfer-Encoding", "binary")
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ReportHandler) SearchEmployees(c echo.Context) error {
	if h.search == nil {
		return serviceutils.ResponseError(c, http.StatusServiceUnavailable, "Search index is not configured", nil)
	}
	size, _ := strconv.Atoi(c.QueryParam("size"))
	hits, err := h.search.Search(c.Request().Context(), c.QueryParam("q"), size)
	if err != nil {
		return serviceutils.ResponseFromError(c, "Failed to search employees", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employees found", hits)
}
