package handler

import "github.com/locvowork/attrition_datahub/internal/domain"

// CreateEmployeeRequest is the body of POST /sql/employees. A zero
// employee_number asks the server to assign the next one.
type CreateEmployeeRequest struct {
	domain.Employee
	DepartmentName  string `json:"department_name" validate:"max=100"`
	JobSatisfaction *int   `json:"job_satisfaction"`
}

// RiskRequest is the body of PUT /mongo/employees/number/:number/risk.
type RiskRequest struct {
	RiskScore *float64 `json:"risk_score" validate:"required"`
}
