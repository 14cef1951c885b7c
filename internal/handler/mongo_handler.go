package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/attrition_datahub/internal/domain"
	"github.com/locvowork/attrition_datahub/internal/service"
	"github.com/locvowork/attrition_datahub/internal/service/serviceutils"
)

// MongoHandler serves the document store under /mongo.
type MongoHandler struct {
	employees   *service.EmployeeDocumentService
	departments *service.DepartmentSnapshotService
	predictions *service.PredictionService
}

func NewMongoHandler(employees *service.EmployeeDocumentService, departments *service.DepartmentSnapshotService, predictions *service.PredictionService) *MongoHandler {
	return &MongoHandler{employees: employees, departments: departments, predictions: predictions}
}

func (h *MongoHandler) Register(g *echo.Group) {
	g.GET("/employees", h.ListEmployees)
	g.POST("/employees", h.CreateEmployee)
	g.GET("/employees/:id", h.GetEmployee)
	g.PUT("/employees/:id", h.UpdateEmployee)
	g.DELETE("/employees/:id", h.DeleteEmployee)
	g.PUT("/employees/number/:number/risk", h.RecordRisk)

	g.GET("/departments", h.ListDepartments)
	g.POST("/departments", h.CreateDepartment)
	g.GET("/departments/:id", h.GetDepartment)
	g.PUT("/departments/:id", h.UpdateDepartment)
	g.DELETE("/departments/:id", h.DeleteDepartment)

	g.GET("/predictions", h.ListPredictions)
	g.POST("/predictions", h.CreatePrediction)
	g.GET("/predictions/:id", h.GetPrediction)
	g.GET("/predictions/employee/:number", h.ListEmployeePredictions)
}

// bindFields decodes a partial update body. Numbers stay json.Number so
// integers are stored as integers, not doubles.
func bindFields(c echo.Context) (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// ==================== Employees ====================

func (h *MongoHandler) ListEmployees(c echo.Context) error {
	filter := domain.DocumentFilter{
		ListFilter: listFilter(c),
		Department: c.QueryParam("department"),
		Attrition:  c.QueryParam("attrition"),
	}
	docs, err := h.employees.List(c.Request().Context(), filter)
	if err != nil {
		return serviceutils.ResponseFromError(c, "Failed to list employees", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employees listed successfully", docs)
}

func (h *MongoHandler) CreateEmployee(c echo.Context) error {
	var req domain.EmployeeDocument
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	if err := h.employees.Create(c.Request().Context(), &req); err != nil {
		return serviceutils.ResponseFromError(c, "Failed to create employee", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Employee created successfully", req)
}

func (h *MongoHandler) GetEmployee(c echo.Context) error {
	doc, err := h.employees.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceutils.ResponseFromError(c, "Failed to get employee", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employee retrieved successfully", doc)
}

func (h *MongoHandler) UpdateEmployee(c echo.Context) error {
	fields, err := bindFields(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	doc, err := h.employees.Update(c.Request().Context(), c.Param("id"), fields)
	if err != nil {
		return serviceutils.ResponseFromError(c, "Failed to update employee", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employee updated successfully", doc)
}

func (h *MongoHandler) DeleteEmployee(c echo.Context) error {
	if err := h.employees.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return serviceutils.ResponseFromError(c, "Failed to delete employee", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employee deleted successfully", nil)
}

func (h *MongoHandler) RecordRisk(c echo.Context) error {
	number, err := intParam(c, "number")
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid employee number", err)
	}
	var req RiskRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	if err := c.Validate(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid risk assessment", err)
	}

	doc, err := h.employees.RecordRisk(c.Request().Context(), number, *req.RiskScore)
	if err != nil {
		return serviceutils.ResponseFromError(c, "Failed to record risk", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Risk recorded successfully", doc)
}

// ==================== Departments ====================

func (h *MongoHandler) ListDepartments(c echo.Context) error {
	depts, err := h.departments.List(c.Request().Context(), listFilter(c))
	if err != nil {
		return serviceutils.ResponseFromError(c, "Failed to list departments", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Departments listed successfully", depts)
}

func (h *MongoHandler) CreateDepartment(c echo.Context) error {
	var req domain.DepartmentSnapshot
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	if err := h.departments.Create(c.Request().Context(), &req); err != nil {
		return serviceutils.ResponseFromError(c, "Failed to create department", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Department created successfully", req)
}

func (h *MongoHandler) GetDepartment(c echo.Context) error {
	dept, err := h.departments.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceutils.ResponseFromError(c, "Failed to get department", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Department retrieved successfully", dept)
}

func (h *MongoHandler) UpdateDepartment(c echo.Context) error {
	fields, err := bindFields(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	dept, err := h.departments.Update(c.Request().Context(), c.Param("id"), fields)
	if err != nil {
		return serviceutils.ResponseFromError(c, "Failed to update department", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Department updated successfully", dept)
}

func (h *MongoHandler) DeleteDepartment(c echo.Context) error {
	if err := h.departments.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return serviceutils.ResponseFromError(c, "Failed to delete department", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Department deleted successfully", nil)
}

// ==================== Predictions ====================

func (h *MongoHandler) ListPredictions(c echo.Context) error {
	filter := domain.PredictionFilter{ListFilter: listFilter(c)}
	if raw := c.QueryParam("employee_number"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid employee number", err)
		}
		filter.EmployeeNumber = n
	}
	preds, err := h.predictions.List(c.Request().Context(), filter)
	if err != nil {
		return serviceutils.ResponseFromError(c, "Failed to list predictions", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Predictions listed successfully", preds)
}

func (h *MongoHandler) ListEmployeePredictions(c echo.Context) error {
	number, err := intParam(c, "number")
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid employee number", err)
	}
	filter := domain.PredictionFilter{ListFilter: listFilter(c), EmployeeNumber: number}
	preds, err := h.predictions.List(c.Request().Context(), filter)
	if err != nil {
		return serviceutils.ResponseFromError(c, "Failed to list predictions", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Predictions listed successfully", preds)
}

func (h *MongoHandler) CreatePrediction(c echo.Context) error {
	var req domain.Prediction
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	if err := h.predictions.Create(c.Request().Context(), &req); err != nil {
		return serviceutils.ResponseFromError(c, "Failed to create prediction", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Prediction created successfully", req)
}

func (h *MongoHandler) GetPrediction(c echo.Context) error {
	pred, err := h.predictions.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceutils.ResponseFromError(c, "Failed to get prediction", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Prediction retrieved successfully", pred)
}
