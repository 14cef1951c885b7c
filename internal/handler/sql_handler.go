package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/attrition_datahub/internal/domain"
	"github.com/locvowork/attrition_datahub/internal/service"
	"github.com/locvowork/attrition_datahub/internal/service/serviceutils"
)

// SQLHandler serves the relational store under /sql.
type SQLHandler struct {
	employees   *service.EmployeeService
	departments *service.DepartmentService
	jobs        *service.JobDetailService
}

func NewSQLHandler(employees *service.EmployeeService, departments *service.DepartmentService, jobs *service.JobDetailService) *SQLHandler {
	return &SQLHandler{employees: employees, departments: departments, jobs: jobs}
}

func (h *SQLHandler) Register(g *echo.Group) {
	g.GET("/employees", h.ListEmployees)
	g.POST("/employees", h.CreateEmployee)
	g.GET("/employees/:number", h.GetEmployee)
	g.PUT("/employees/:number", h.UpdateEmployee)
	g.DELETE("/employees/:number", h.DeleteEmployee)

	g.GET("/departments", h.ListDepartments)
	g.POST("/departments", h.CreateDepartment)
	g.GET("/departments/:id", h.GetDepartment)
	g.PUT("/departments/:id", h.UpdateDepartment)
	g.DELETE("/departments/:id", h.DeleteDepartment)

	g.GET("/job_details", h.ListJobDetails)
	g.POST("/job_details", h.CreateJobDetail)
	g.GET("/job_details/:id", h.GetJobDetail)
	g.PUT("/job_details/:id", h.UpdateJobDetail)
	g.DELETE("/job_details/:id", h.DeleteJobDetail)
}

// ==================== Employees ====================

func (h *SQLHandler) ListEmployees(c echo.Context) error {
	employees, err := h.employees.List(c.Request().Context(), listFilter(c))
	if err != nil {
		return serviceutils.ResponseFromError(c, "Failed to list employees", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employees listed successfully", employees)
}

func (h *SQLHandler) CreateEmployee(c echo.Context) error {
	var req CreateEmployeeRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	if err := c.Validate(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid employee", err)
	}

	emp, err := h.employees.Create(c.Request().Context(), &req.Employee, req.DepartmentName, req.JobSatisfaction)
	if err != nil {
		return serviceutils.ResponseFromError(c, "Failed to create employee", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Employee created successfully", emp)
}

func (h *SQLHandler) GetEmployee(c echo.Context) error {
	number, err := intParam(c, "number")
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid employee number", err)
	}
	emp, err := h.employees.Get(c.Request().Context(), number)
	if err != nil {
		return serviceutils.ResponseFromError(c, "Failed to get employee", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employee retrieved successfully", emp)
}

func (h *SQLHandler) UpdateEmployee(c echo.Context) error {
	number, err := intParam(c, "number")
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid employee number", err)
	}
	var req domain.Employee
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	req.EmployeeNumber = number

	emp, err := h.employees.Update(c.Request().Context(), &req)
	if err != nil {
		return serviceutils.ResponseFromError(c, "Failed to update employee", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employee updated successfully", emp)
}

func (h *SQLHandler) DeleteEmployee(c echo.Context) error {
	number, err := intParam(c, "number")
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid employee number", err)
	}
	if err := h.employees.Delete(c.Request().Context(), number); err != nil {
		return serviceutils.ResponseFromError(c, "Failed to delete employee", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employee deleted successfully", nil)
}

// ==================== Departments ====================

func (h *SQLHandler) ListDepartments(c echo.Context) error {
	depts, err := h.departments.List(c.Request().Context(), listFilter(c))
	if err != nil {
		return serviceutils.ResponseFromError(c, "Failed to list departments", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Departments listed successfully", depts)
}

func (h *SQLHandler) CreateDepartment(c echo.Context) error {
	var req domain.Department
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	if err := h.departments.Create(c.Request().Context(), &req); err != nil {
		return serviceutils.ResponseFromError(c, "Failed to create department", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Department created successfully", req)
}

func (h *SQLHandler) GetDepartment(c echo.Context) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid department ID", err)
	}
	dept, err := h.departments.Get(c.Request().Context(), id)
	if err != nil {
		return serviceutils.ResponseFromError(c, "Failed to get department", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Department retrieved successfully", dept)
}

func (h *SQLHandler) UpdateDepartment(c echo.Context) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid department ID", err)
	}
	var req domain.Department
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	req.DepartmentID = id

	if err := h.departments.Update(c.Request().Context(), &req); err != nil {
		return serviceutils.ResponseFromError(c, "Failed to update department", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Department updated successfully", req)
}

func (h *SQLHandler) DeleteDepartment(c echo.Context) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid department ID", err)
	}
	if err := h.departments.Delete(c.Request().Context(), id); err != nil {
		return serviceutils.ResponseFromError(c, "Failed to delete department", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Department deleted successfully", nil)
}

// ==================== Job details ====================

func (h *SQLHandler) ListJobDetails(c echo.Context) error {
	jobs, err := h.jobs.List(c.Request().Context(), listFilter(c))
	if err != nil {
		return serviceutils.ResponseFromError(c, "Failed to list job details", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Job details listed successfully", jobs)
}

func (h *SQLHandler) CreateJobDetail(c echo.Context) error {
	var req domain.JobDetail
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	if err := h.jobs.Create(c.Request().Context(), &req); err != nil {
		return serviceutils.ResponseFromError(c, "Failed to create job detail", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Job detail created successfully", req)
}

func (h *SQLHandler) GetJobDetail(c echo.Context) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid job detail ID", err)
	}
	job, err := h.jobs.Get(c.Request().Context(), id)
	if err != nil {
		return serviceutils.ResponseFromError(c, "Failed to get job detail", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Job detail retrieved successfully", job)
}

func (h *SQLHandler) UpdateJobDetail(c echo.Context) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid job detail ID", err)
	}
	var req domain.JobDetail
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	req.JobID = id

	if err := h.jobs.Update(c.Request().Context(), &req); err != nil {
		return serviceutils.ResponseFromError(c, "Failed to update job detail", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Job detail updated successfully", req)
}

func (h *SQLHandler) DeleteJobDetail(c echo.Context) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid job detail ID", err)
	}
	if err := h.jobs.Delete(c.Request().Context(), id); err != nil {
		return serviceutils.ResponseFromError(c, "Failed to delete job detail", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Job detail deleted successfully", nil)
}
