package domain

import (
	"context"
	"time"
)

// Collection names in the document store.
const (
	CollectionEmployees   = "employees"
	CollectionDepartments = "departments"
	CollectionPredictions = "predictions"
)

// ==================== IMPORT CONTRACTS ====================

// RelationalStore is what the relational import engine needs from a SQL backend.
type RelationalStore interface {
	// TruncateAll empties every table in dependency order with FK checks suspended.
	TruncateAll(ctx context.Context) error
	// UpsertDepartment inserts name if absent and returns its surrogate key either way.
	UpsertDepartment(ctx context.Context, name string) (int64, error)
	BeginBatch(ctx context.Context) (RowBatch, error)
}

// RowBatch is one open transaction holding up to a batch of rows.
// A failed InsertRecord leaves the batch usable; only that row's writes are undone.
type RowBatch interface {
	InsertRecord(ctx context.Context, rec RelationalRecord) error
	Commit() error
	Rollback() error
}

// DocumentStore is what the document import engine needs from a document backend.
type DocumentStore interface {
	DeleteAll(ctx context.Context, collection string) (int64, error)
	EnsureIndexes(ctx context.Context) error
	InsertDepartments(ctx context.Context, depts []DepartmentSnapshot) error
	// InsertEmployees returns how many documents were stored, also on error.
	InsertEmployees(ctx context.Context, docs []EmployeeDocument) (int, error)
}

// SearchIndexer mirrors employee documents into a search index.
type SearchIndexer interface {
	IndexEmployees(ctx context.Context, docs []EmployeeDocument) error
}

// ==================== SQL REPOSITORIES ====================

// ListFilter is the skip/limit window used by list endpoints.
type ListFilter struct {
	Limit  int
	Offset int
}

// EmployeeRepository gives CRUD access to the employees table.
type EmployeeRepository interface {
	// Create writes the employee, resolves departmentName and writes job in one transaction.
	Create(ctx context.Context, e *Employee, departmentName string, job *JobDetail) error
	GetByNumber(ctx context.Context, number int) (*EmployeeView, error)
	Update(ctx context.Context, e *Employee) error
	Delete(ctx context.Context, number int) error
	List(ctx context.Context, filter ListFilter) ([]EmployeeView, error)
	MaxEmployeeNumber(ctx context.Context) (int, error)
}

type DepartmentRepository interface {
	Create(ctx context.Context, d *Department) error
	GetByID(ctx context.Context, id int64) (*Department, error)
	Update(ctx context.Context, d *Department) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListFilter) ([]Department, error)
}

type JobDetailRepository interface {
	Create(ctx context.Context, j *JobDetail) error
	GetByID(ctx context.Context, id int64) (*JobDetail, error)
	Update(ctx context.Context, j *JobDetail) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListFilter) ([]JobDetail, error)
}

// SQLStatsRepository runs the read-only verification queries on the SQL store.
type SQLStatsRepository interface {
	TableCounts(ctx context.Context) ([]TableCount, error)
	AttritionSplit(ctx context.Context) (AttritionSplit, error)
	DepartmentStats(ctx context.Context) ([]DepartmentStat, error)
	// RiskAssessment calls the stored risk procedure; ok is false when it does not exist.
	RiskAssessment(ctx context.Context, employeeNumber int) (ra *RiskAssessment, ok bool, err error)
}

// ==================== DOCUMENT REPOSITORIES ====================

// DocumentFilter narrows employee document listings.
type DocumentFilter struct {
	ListFilter
	Department string
	Attrition  string
}

type EmployeeDocumentRepository interface {
	Create(ctx context.Context, doc *EmployeeDocument) error
	GetByID(ctx context.Context, id string) (*EmployeeDocument, error)
	GetByNumber(ctx context.Context, number int) (*EmployeeDocument, error)
	// Update applies a partial $set; fields use dotted document paths.
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter DocumentFilter) ([]EmployeeDocument, error)
	MaxEmployeeNumber(ctx context.Context) (int, error)
	UpdateRisk(ctx context.Context, number int, score float64, assessedAt time.Time) error
}

type DepartmentSnapshotRepository interface {
	Create(ctx context.Context, d *DepartmentSnapshot) error
	GetByID(ctx context.Context, id string) (*DepartmentSnapshot, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]DepartmentSnapshot, error)
}

// PredictionFilter narrows prediction listings. EmployeeNumber 0 means any.
type PredictionFilter struct {
	ListFilter
	EmployeeNumber int
}

type PredictionRepository interface {
	Create(ctx context.Context, p *Prediction) error
	GetByID(ctx context.Context, id string) (*Prediction, error)
	List(ctx context.Context, filter PredictionFilter) ([]Prediction, error)
}

// DocumentStatsRepository runs the verification aggregations on the document store.
type DocumentStatsRepository interface {
	CollectionCounts(ctx context.Context) ([]TableCount, error)
	AttritionSplit(ctx context.Context) (AttritionSplit, error)
	DepartmentStats(ctx context.Context) ([]DepartmentStat, error)
	SampleEmployee(ctx context.Context, number int) (*EmployeeDocument, error)
	EmployeeIndexes(ctx context.Context) ([]string, error)
}
