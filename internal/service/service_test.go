package service

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/locvowork/attrition_datahub/internal/database"
	"github.com/locvowork/attrition_datahub/internal/domain"
	"github.com/locvowork/attrition_datahub/internal/repository"
)

func openTestDB(t *testing.T) *database.SQLClient {
	t.Helper()
	ctx := context.Background()
	c, err := database.OpenSQL(ctx, database.Config{Driver: "sqlite", DBName: filepath.Join(t.TempDir(), "svc.db")})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	require.NoError(t, c.EnsureSchema(ctx))
	return c
}

func validEmployee() *domain.Employee {
	return &domain.Employee{
		Age: 34, Gender: "Female", MaritalStatus: "Single", Education: 3, EducationField: "Life Sciences",
		DistanceFromHome: 12, Over18: "Y", EmployeeCount: 1, Attrition: "No",
	}
}

func TestEmployeeServiceCreate(t *testing.T) {
	svc := NewEmployeeService(repository.NewEmployeeRepository(openTestDB(t)))
	ctx := context.Background()

	js := 4
	first, err := svc.Create(ctx, validEmployee(), "Development", &js)
	require.NoError(t, err)
	assert.Equal(t, 1, first.EmployeeNumber)
	assert.Equal(t, "Development", *first.DepartmentName)
	assert.Equal(t, 4, *first.JobSatisfaction)

	second, err := svc.Create(ctx, validEmployee(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, second.EmployeeNumber)
	assert.Equal(t, repository.DefaultDepartmentName, *second.DepartmentName)
	assert.Equal(t, 3, *second.JobSatisfaction)
}

func TestEmployeeServiceRejectsInvalidInput(t *testing.T) {
	svc := NewEmployeeService(repository.NewEmployeeRepository(openTestDB(t)))
	ctx := context.Background()

	bad := validEmployee()
	bad.Attrition = "Maybe"
	_, err := svc.Create(ctx, bad, "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "Employee.Attrition")

	js := 7
	_, err = svc.Create(ctx, validEmployee(), "", &js)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	e := validEmployee()
	e.EmployeeNumber = -1
	_, err = svc.Create(ctx, e, "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEmployeeServiceUpdateMissing(t *testing.T) {
	svc := NewEmployeeService(repository.NewEmployeeRepository(openTestDB(t)))
	e := validEmployee()
	e.EmployeeNumber = 99
	_, err := svc.Update(context.Background(), e)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDepartmentServiceTrimsAndValidates(t *testing.T) {
	svc := NewDepartmentService(repository.NewDepartmentRepository(openTestDB(t)))
	ctx := context.Background()

	d := &domain.Department{DepartmentName: "  Sales  "}
	require.NoError(t, svc.Create(ctx, d))
	got, err := svc.Get(ctx, d.DepartmentID)
	require.NoError(t, err)
	assert.Equal(t, "Sales", got.DepartmentName)

	assert.ErrorIs(t, svc.Create(ctx, &domain.Department{DepartmentName: "   "}), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.Create(ctx, &domain.Department{DepartmentName: "Sales"}), domain.ErrConflict)
}

func TestJobDetailServiceValidation(t *testing.T) {
	svc := NewJobDetailService(repository.NewJobDetailRepository(openTestDB(t)))
	zero := int64(0)
	err := svc.Create(context.Background(), &domain.JobDetail{EmployeeNumber: 1, JobRole: "Developer", DepartmentID: &zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = svc.Create(context.Background(), &domain.JobDetail{EmployeeNumber: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// memoryEmployeeDocs is an in-memory EmployeeDocumentRepository.
type memoryEmployeeDocs struct {
	docs map[primitive.ObjectID]*domain.EmployeeDocument
}

func newMemoryEmployeeDocs() *memoryEmployeeDocs {
	return &memoryEmployeeDocs{docs: map[primitive.ObjectID]*domain.EmployeeDocument{}}
}

func (m *memoryEmployeeDocs) Create(_ context.Context, doc *domain.EmployeeDocument) error {
	for _, d := range m.docs {
		if d.EmployeeNumber == doc.EmployeeNumber {
			return fmt.Errorf("%w: employee %d", domain.ErrConflict, doc.EmployeeNumber)
		}
	}
	doc.ID = primitive.NewObjectID()
	cp := *doc
	m.docs[doc.ID] = &cp
	return nil
}

func (m *memoryEmployeeDocs) GetByID(_ context.Context, id string) (*domain.EmployeeDocument, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	d, ok := m.docs[oid]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memoryEmployeeDocs) GetByNumber(_ context.Context, number int) (*domain.EmployeeDocument, error) {
	for _, d := range m.docs {
		if d.EmployeeNumber == number {
			cp := *d
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memoryEmployeeDocs) Update(_ context.Context, id string, fields map[string]interface{}) error {
	oid, _ := primitive.ObjectIDFromHex(id)
	d, ok := m.docs[oid]
	if !ok {
		return domain.ErrNotFound
	}
	if v, ok := fields["personal_info.age"].(int); ok {
		d.PersonalInfo.Age = v
	}
	return nil
}

func (m *memoryEmployeeDocs) Delete(context.Context, string) error { return nil }

func (m *memoryEmployeeDocs) List(context.Context, domain.DocumentFilter) ([]domain.EmployeeDocument, error) {
	return nil, nil
}

func (m *memoryEmployeeDocs) MaxEmployeeNumber(context.Context) (int, error) {
	last := 0
	for _, d := range m.docs {
		if d.EmployeeNumber > last {
			last = d.EmployeeNumber
		}
	}
	return last, nil
}

func (m *memoryEmployeeDocs) UpdateRisk(_ context.Context, number int, score float64, at time.Time) error {
	for _, d := range m.docs {
		if d.EmployeeNumber == number {
			d.AttritionInfo.RiskScore = &score
			d.AttritionInfo.LastRiskAssessment = &at
			return nil
		}
	}
	return domain.ErrNotFound
}

func apiDocument() *domain.EmployeeDocument {
	doc := &domain.EmployeeDocument{}
	doc.PersonalInfo.Age = 34
	doc.PersonalInfo.Gender = "Female"
	doc.JobInfo.Department = "Development"
	doc.JobInfo.Role = "Developer"
	doc.AttritionInfo.Status = "No"
	return doc
}

func TestEmployeeDocumentServiceCreate(t *testing.T) {
	repo := newMemoryEmployeeDocs()
	svc := NewEmployeeDocumentService(repo)
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	first := apiDocument()
	score := 0.9
	first.AttritionInfo.RiskScore = &score
	require.NoError(t, svc.Create(ctx, first))
	assert.Equal(t, 1, first.EmployeeNumber)
	assert.Nil(t, first.AttritionInfo.RiskScore)
	assert.Equal(t, domain.DataSourceAPI, first.Metadata.DataSource)
	assert.Equal(t, now, first.Metadata.CreatedAt)
	assert.Equal(t, 1, first.Metadata.EmployeeCount)
	assert.False(t, first.ID.IsZero())

	second := apiDocument()
	require.NoError(t, svc.Create(ctx, second))
	assert.Equal(t, 2, second.EmployeeNumber)

	dup := apiDocument()
	dup.EmployeeNumber = 2
	assert.ErrorIs(t, svc.Create(ctx, dup), domain.ErrConflict)

	invalid := apiDocument()
	invalid.AttritionInfo.Status = ""
	assert.ErrorIs(t, svc.Create(ctx, invalid), domain.ErrInvalidInput)
}

func TestEmployeeDocumentServiceUpdate(t *testing.T) {
	repo := newMemoryEmployeeDocs()
	svc := NewEmployeeDocumentService(repo)
	ctx := context.Background()
	doc := apiDocument()
	require.NoError(t, svc.Create(ctx, doc))
	id := doc.ID.Hex()

	got, err := svc.Update(ctx, id, map[string]interface{}{"personal_info.age": 35})
	require.NoError(t, err)
	assert.Equal(t, 35, got.PersonalInfo.Age)

	for _, fields := range []map[string]interface{}{
		{},
		{"_id": "x"},
		{"employee_number": 7},
		{"$where": "1"},
		{"attrition_info.status": "Maybe"},
		{"foo": 1},
		{"attrition_info": 5},
		{"personal_info.education": 3},
		{"job_info.salary": 10},
		{"metadata.created_at": "2024-01-01"},
	} {
		_, err := svc.Update(ctx, id, fields)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%v", fields)
	}

	got, err = svc.Update(ctx, id, map[string]interface{}{
		"personal_info.education.level": 4,
		"attrition_info.status":         "Yes",
		"metadata.updated_at":           time.Now(),
	})
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestUpdatableDocumentPaths(t *testing.T) {
	for _, p := range []string{
		"personal_info.age",
		"personal_info.education.field",
		"job_info.overtime",
		"compensation.monthly_income",
		"performance.years_at_company",
		"satisfaction_scores.work_life_balance",
		"attrition_info.risk_score",
		"attrition_info.last_risk_assessment",
		"metadata.employee_count",
	} {
		assert.True(t, employeeDocumentPaths[p], p)
	}
	for _, p := range []string{"personal_info", "personal_info.education", "attrition_info", "metadata", "_id.x"} {
		assert.False(t, employeeDocumentPaths[p], p)
	}

	assert.True(t, departmentSnapshotPaths["avg_satisfaction.job"])
	assert.True(t, departmentSnapshotPaths["last_updated"])
	assert.False(t, departmentSnapshotPaths["avg_satisfaction"])
}

func TestDepartmentSnapshotServiceUpdateRejectsUnknownFields(t *testing.T) {
	svc := NewDepartmentSnapshotService(&nopSnapshots{})
	_, err := svc.Update(context.Background(), "x", map[string]interface{}{"foo": 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.Update(context.Background(), "x", map[string]interface{}{"employee_number": 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEmployeeDocumentServiceRecordRisk(t *testing.T) {
	repo := newMemoryEmployeeDocs()
	svc := NewEmployeeDocumentService(repo)
	ctx := context.Background()
	require.NoError(t, svc.Create(ctx, apiDocument()))

	got, err := svc.RecordRisk(ctx, 1, 0.72)
	require.NoError(t, err)
	require.NotNil(t, got.AttritionInfo.RiskScore)
	assert.Equal(t, 0.72, *got.AttritionInfo.RiskScore)
	assert.NotNil(t, got.AttritionInfo.LastRiskAssessment)

	_, err = svc.RecordRisk(ctx, 1, 1.5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.RecordRisk(ctx, 42, 0.1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type nopSnapshots struct{ created *domain.DepartmentSnapshot }

func (n *nopSnapshots) Create(_ context.Context, d *domain.DepartmentSnapshot) error {
	n.created = d
	return nil
}
func (n *nopSnapshots) GetByID(context.Context, string) (*domain.DepartmentSnapshot, error) {
	return nil, domain.ErrNotFound
}
func (n *nopSnapshots) Update(context.Context, string, map[string]interface{}) error { return nil }
func (n *nopSnapshots) Delete(context.Context, string) error { return nil }
func (n *nopSnapshots) List(context.Context, domain.ListFilter) ([]domain.DepartmentSnapshot, error) {
	return nil, nil
}

func TestDepartmentSnapshotServiceCreate(t *testing.T) {
	repo := &nopSnapshots{}
	svc := NewDepartmentSnapshotService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, &domain.DepartmentSnapshot{DepartmentName: "Sales", EmployeeCount: 446, AttritionCount: 92, AvgAttritionRate: 0.206}))
	assert.False(t, repo.created.LastUpdated.IsZero())

	err := svc.Create(ctx, &domain.DepartmentSnapshot{DepartmentName: "Sales", EmployeeCount: 1, AttritionCount: 2})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	err = svc.Create(ctx, &domain.DepartmentSnapshot{DepartmentName: "Sales", AvgAttritionRate: 1.5})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

type fakeSQLStats struct{ domain.SQLStatsRepository }

func (fakeSQLStats) DepartmentStats(context.Context) ([]domain.DepartmentStat, error) {
	return []domain.DepartmentStat{{Department: "Sales", Employees: 2, AttritionCount: 1}}, nil
}

func TestReportServiceWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReportService(fakeSQLStats{}, nil).WriteDepartmentWorkbook(context.Background(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"SQL"}, f.GetSheetList())

	err = NewReportService(nil, nil).WriteDepartmentWorkbook(context.Background(), &buf)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type fakeSearcher struct{ size int }

func (f *fakeSearcher) SearchEmployees(_ context.Context, text string, size int) ([]database.EmployeeSearchDoc, error) {
	f.size = size
	return []database.EmployeeSearchDoc{{EmployeeNumber: 1, JobRole: text}}, nil
}

func TestSearchService(t *testing.T) {
	fs := &fakeSearcher{}
	svc := NewSearchService(fs)

	_, err := svc.Search(context.Background(), "   ", 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	hits, err := svc.Search(context.Background(), " Sales ", 500)
	require.NoError(t, err)
	assert.Equal(t, "Sales", hits[0].JobRole)
	assert.Equal(t, 100, fs.size)
}
