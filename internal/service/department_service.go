package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/locvowork/attrition_datahub/internal/domain"
)

// DepartmentService manages relational departments.
type DepartmentService struct {
	repo domain.DepartmentRepository
}

func NewDepartmentService(repo domain.DepartmentRepository) *DepartmentService {
	return &DepartmentService{repo: repo}
}

func (s *DepartmentService) Create(ctx context.Context, d *domain.Department) error {
	d.DepartmentName = strings.TrimSpace(d.DepartmentName)
	if err := Validate(d); err != nil {
		return err
	}
	return s.repo.Create(ctx, d)
}

func (s *DepartmentService) Get(ctx context.Context, id int64) (*domain.Department, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *DepartmentService) Update(ctx context.Context, d *domain.Department) error {
	d.DepartmentName = strings.TrimSpace(d.DepartmentName)
	if err := Validate(d); err != nil {
		return err
	}
	return s.repo.Update(ctx, d)
}

// Delete removes the department; job details that referenced it keep a null department.
func (s *DepartmentService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *DepartmentService) List(ctx context.Context, filter domain.ListFilter) ([]domain.Department, error) {
	return s.repo.List(ctx, filter)
}

// JobDetailService manages relational job details.
type JobDetailService struct {
	repo domain.JobDetailRepository
}

func NewJobDetailService(repo domain.JobDetailRepository) *JobDetailService {
	return &JobDetailService{repo: repo}
}

func (s *JobDetailService) Create(ctx context.Context, j *domain.JobDetail) error {
	if err := validateJobDetail(j); err != nil {
		return err
	}
	return s.repo.Create(ctx, j)
}

func (s *JobDetailService) Get(ctx context.Context, id int64) (*domain.JobDetail, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *JobDetailService) Update(ctx context.Context, j *domain.JobDetail) error {
	if err := validateJobDetail(j); err != nil {
		return err
	}
	return s.repo.Update(ctx, j)
}

func (s *JobDetailService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *JobDetailService) List(ctx context.Context, filter domain.ListFilter) ([]domain.JobDetail, error) {
	return s.repo.List(ctx, filter)
}

func validateJobDetail(j *domain.JobDetail) error {
	if err := Validate(j); err != nil {
		return err
	}
	if j.DepartmentID != nil && *j.DepartmentID <= 0 {
		return fmt.Errorf("%w: department_id must be positive", domain.ErrInvalidInput)
	}
	return nil
}
