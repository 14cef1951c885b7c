package service

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/locvowork/attrition_datahub/internal/domain"
	"github.com/locvowork/attrition_datahub/internal/logger"
)

// protectedFields can never be changed through a partial update.
var protectedFields = map[string]bool{
	"_id":                  true,
	"employee_number":      true,
	"metadata":             true,
	"metadata.created_at":  true,
	"metadata.data_source": true,
}

var (
	employeeDocumentPaths   = leafPaths(reflect.TypeOf(domain.EmployeeDocument{}), "")
	departmentSnapshotPaths = leafPaths(reflect.TypeOf(domain.DepartmentSnapshot{}), "")
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	objectIDType = reflect.TypeOf(primitive.ObjectID{})
)

// leafPaths lists the dotted bson paths of every scalar field of t. Nested
// structs are expanded; times, object ids and pointers are leaves.
func leafPaths(t reflect.Type, prefix string) map[string]bool {
	paths := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := strings.Split(f.Tag.Get("bson"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		path := prefix + name
		if f.Type.Kind() == reflect.Struct && f.Type != timeType && f.Type != objectIDType {
			for p := range leafPaths(f.Type, path+".") {
				paths[p] = true
			}
			continue
		}
		paths[path] = true
	}
	return paths
}

func checkUpdateFields(fields map[string]interface{}, allowed map[string]bool) error {
	if len(fields) == 0 {
		return fmt.Errorf("%w: no fields to update", domain.ErrInvalidInput)
	}
	for k := range fields {
		if protectedFields[k] || !allowed[k] {
			return fmt.Errorf("%w: field %q cannot be updated", domain.ErrInvalidInput, k)
		}
	}
	return nil
}

// EmployeeDocumentService holds the API rules for employee documents.
type EmployeeDocumentService struct {
	repo domain.EmployeeDocumentRepository
	now  func() time.Time
}

func NewEmployeeDocumentService(repo domain.EmployeeDocumentRepository) *EmployeeDocumentService {
	return &EmployeeDocumentService{repo: repo, now: time.Now}
}

// Create stores doc as an API-sourced document. A zero employee number is
// assigned as the current maximum plus one; risk fields always start null.
func (s *EmployeeDocumentService) Create(ctx context.Context, doc *domain.EmployeeDocument) error {
	if err := Validate(doc); err != nil {
		return err
	}
	if doc.EmployeeNumber == 0 {
		last, err := s.repo.MaxEmployeeNumber(ctx)
		if err != nil {
			return err
		}
		doc.EmployeeNumber = last + 1
	}

	now := s.now().UTC()
	doc.AttritionInfo.RiskScore = nil
	doc.AttritionInfo.LastRiskAssessment = nil
	doc.Metadata.CreatedAt = now
	doc.Metadata.UpdatedAt = now
	doc.Metadata.DataSource = domain.DataSourceAPI
	if doc.Metadata.EmployeeCount == 0 {
		doc.Metadata.EmployeeCount = 1
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		return err
	}
	logger.InfoLog(ctx, "Created employee document %d (%s)", doc.EmployeeNumber, doc.ID.Hex())
	return nil
}

func (s *EmployeeDocumentService) Get(ctx context.Context, id string) (*domain.EmployeeDocument, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *EmployeeDocumentService) GetByNumber(ctx context.Context, number int) (*domain.EmployeeDocument, error) {
	return s.repo.GetByNumber(ctx, number)
}

// Update applies fields, keyed by dotted document path, and returns the result.
func (s *EmployeeDocumentService) Update(ctx context.Context, id string, fields map[string]interface{}) (*domain.EmployeeDocument, error) {
	if err := checkUpdateFields(fields, employeeDocumentPaths); err != nil {
		return nil, err
	}
	if status, ok := fields["attrition_info.status"]; ok && status != "Yes" && status != "No" {
		return nil, fmt.Errorf("%w: attrition_info.status must be Yes or No", domain.ErrInvalidInput)
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *EmployeeDocumentService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *EmployeeDocumentService) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.EmployeeDocument, error) {
	return s.repo.List(ctx, filter)
}

// RecordRisk writes a scorer's risk score into the reserved attrition fields.
func (s *EmployeeDocumentService) RecordRisk(ctx context.Context, number int, score float64) (*domain.EmployeeDocument, error) {
	if score < 0 || score > 1 {
		return nil, fmt.Errorf("%w: risk_score must be between 0 and 1", domain.ErrInvalidInput)
	}
	if err := s.repo.UpdateRisk(ctx, number, score, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.repo.GetByNumber(ctx, number)
}

// DepartmentSnapshotService manages the department aggregate documents.
type DepartmentSnapshotService struct {
	repo domain.DepartmentSnapshotRepository
	now  func() time.Time
}

func NewDepartmentSnapshotService(repo domain.DepartmentSnapshotRepository) *DepartmentSnapshotService {
	return &DepartmentSnapshotService{repo: repo, now: time.Now}
}

func (s *DepartmentSnapshotService) Create(ctx context.Context, d *domain.DepartmentSnapshot) error {
	if err := Validate(d); err != nil {
		return err
	}
	if d.AttritionCount > d.EmployeeCount {
		return fmt.Errorf("%w: attrition_count exceeds employee_count", domain.ErrInvalidInput)
	}
	if d.LastUpdated.IsZero() {
		d.LastUpdated = s.now().UTC()
	}
	return s.repo.Create(ctx, d)
}

func (s *DepartmentSnapshotService) Get(ctx context.Context, id string) (*domain.DepartmentSnapshot, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *DepartmentSnapshotService) Update(ctx context.Context, id string, fields map[string]interface{}) (*domain.DepartmentSnapshot, error) {
	if err := checkUpdateFields(fields, departmentSnapshotPaths); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *DepartmentSnapshotService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *DepartmentSnapshotService) List(ctx context.Context, filter domain.ListFilter) ([]domain.DepartmentSnapshot, error) {
	return s.repo.List(ctx, filter)
}

// PredictionService stores scorer outputs. Employee numbers are not checked.
type PredictionService struct {
	repo domain.PredictionRepository
}

func NewPredictionService(repo domain.PredictionRepository) *PredictionService {
	return &PredictionService{repo: repo}
}

func (s *PredictionService) Create(ctx context.Context, p *domain.Prediction) error {
	if err := Validate(p); err != nil {
		return err
	}
	return s.repo.Create(ctx, p)
}

func (s *PredictionService) Get(ctx context.Context, id string) (*domain.Prediction, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PredictionService) List(ctx context.Context, filter domain.PredictionFilter) ([]domain.Prediction, error) {
	return s.repo.List(ctx, filter)
}
