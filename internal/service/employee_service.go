package service

import (
	"context"
	"fmt"

	"github.com/locvowork/attrition_datahub/internal/domain"
	"github.com/locvowork/attrition_datahub/internal/logger"
	"github.com/locvowork/attrition_datahub/internal/repository"
)

// EmployeeService holds the API rules for relational employees.
type EmployeeService struct {
	repo domain.EmployeeRepository
}

func NewEmployeeService(repo domain.EmployeeRepository) *EmployeeService {
	return &EmployeeService{repo: repo}
}

// Create writes e under departmentName (the default department when empty).
// A zero employee number is assigned as the current maximum plus one. A
// non-nil jobSatisfaction overrides the default job detail's satisfaction.
func (s *EmployeeService) Create(ctx context.Context, e *domain.Employee, departmentName string, jobSatisfaction *int) (*domain.EmployeeView, error) {
	if e.EmployeeNumber < 0 {
		return nil, fmt.Errorf("%w: employee_number must not be negative", domain.ErrInvalidInput)
	}
	if err := Validate(e); err != nil {
		return nil, err
	}

	var job *domain.JobDetail
	if jobSatisfaction != nil {
		if *jobSatisfaction < 1 || *jobSatisfaction > 4 {
			return nil, fmt.Errorf("%w: job_satisfaction must be between 1 and 4", domain.ErrInvalidInput)
		}
		jd := repository.DefaultJobDetail()
		jd.JobSatisfaction = *jobSatisfaction
		job = &jd
	}

	if err := s.repo.Create(ctx, e, departmentName, job); err != nil {
		return nil, err
	}
	logger.InfoLog(ctx, "Created employee %d", e.EmployeeNumber)
	return s.repo.GetByNumber(ctx, e.EmployeeNumber)
}

func (s *EmployeeService) Get(ctx context.Context, number int) (*domain.EmployeeView, error) {
	return s.repo.GetByNumber(ctx, number)
}

func (s *EmployeeService) Update(ctx context.Context, e *domain.Employee) (*domain.EmployeeView, error) {
	if err := Validate(e); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return s.repo.GetByNumber(ctx, e.EmployeeNumber)
}

// Delete removes the employee; satellite rows go with it.
func (s *EmployeeService) Delete(ctx context.Context, number int) error {
	if err := s.repo.Delete(ctx, number); err != nil {
		return err
	}
	logger.InfoLog(ctx, "Deleted employee %d", number)
	return nil
}

func (s *EmployeeService) List(ctx context.Context, filter domain.ListFilter) ([]domain.EmployeeView, error) {
	return s.repo.List(ctx, filter)
}
