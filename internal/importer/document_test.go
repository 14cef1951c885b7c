package importer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/attrition_datahub/internal/dataset"
	"github.com/locvowork/attrition_datahub/internal/dataset/datasettest"
	"github.com/locvowork/attrition_datahub/internal/domain"
)

// memoryDocumentStore keeps documents in memory and rejects duplicate
// employee numbers like the unique index does, honouring ordered inserts.
type memoryDocumentStore struct {
	employees   map[int]domain.EmployeeDocument
	departments []domain.DepartmentSnapshot
	predictions int
	deleted     []string
	indexed     int
	inserts     int
	deptErr     error
	deleteErr   error
	empErr      error
}

func newMemoryDocumentStore() *memoryDocumentStore {
	return &memoryDocumentStore{employees: map[int]domain.EmployeeDocument{}}
}

func (m *memoryDocumentStore) DeleteAll(_ context.Context, coll string) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	m.deleted = append(m.deleted, coll)
	var n int
	switch coll {
	case domain.CollectionEmployees:
		n = len(m.employees)
		m.employees = map[int]domain.EmployeeDocument{}
	case domain.CollectionDepartments:
		n = len(m.departments)
		m.departments = nil
	case domain.CollectionPredictions:
		n = m.predictions
		m.predictions = 0
	}
	return int64(n), nil
}

func (m *memoryDocumentStore) EnsureIndexes(context.Context) error {
	m.indexed++
	return nil
}

func (m *memoryDocumentStore) InsertDepartments(_ context.Context, depts []domain.DepartmentSnapshot) error {
	if m.deptErr != nil {
		return m.deptErr
	}
	for _, d := range depts {
		for _, existing := range m.departments {
			if existing.DepartmentName == d.DepartmentName {
				return fmt.Errorf("%w: duplicate department %q", domain.ErrPrepare, d.DepartmentName)
			}
		}
		m.departments = append(m.departments, d)
	}
	return nil
}

func (m *memoryDocumentStore) InsertEmployees(_ context.Context, docs []domain.EmployeeDocument) (int, error) {
	m.inserts++
	if m.empErr != nil {
		return 0, m.empErr
	}
	for i, d := range docs {
		if _, dup := m.employees[d.EmployeeNumber]; dup {
			return i, fmt.Errorf("%w: E11000 duplicate key employee_number %d", domain.ErrBatchWrite, d.EmployeeNumber)
		}
		m.employees[d.EmployeeNumber] = d
	}
	return len(docs), nil
}

type recordingIndexer struct {
	numbers []int
	err     error
}

func (r *recordingIndexer) IndexEmployees(_ context.Context, docs []domain.EmployeeDocument) error {
	for _, d := range docs {
		r.numbers = append(r.numbers, d.EmployeeNumber)
	}
	return r.err
}

var fixedClock = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

func newTestDocumentEngine(store domain.DocumentStore, opts Options) *DocumentEngine {
	e := NewDocumentEngine(store, opts)
	e.now = fixedClock
	e.retry = RetryPolicy{}
	return e
}

func salesAndRnD() *dataset.Dataset {
	return datasettest.Build(
		datasettest.Values(1, map[string]string{dataset.ColDepartment: "Sales", dataset.ColAttrition: "Yes"}),
		datasettest.Values(2, map[string]string{dataset.ColDepartment: "Sales", dataset.ColAttrition: "No"}),
		datasettest.Values(3, map[string]string{dataset.ColDepartment: "R&D", dataset.ColAttrition: "No"}),
	)
}

func TestDocumentEngineImports(t *testing.T) {
	store := newMemoryDocumentStore()
	s := newTestDocumentEngine(store, Options{}).Run(context.Background(), salesAndRnD())

	require.NoError(t, s.Err)
	assert.Equal(t, StateRowsImported, s.State)
	assert.Equal(t, 3, s.Succeeded)
	assert.Zero(t, s.Failed)
	assert.Equal(t, 2, s.Departments)
	assert.Equal(t, 1, store.indexed)

	require.Len(t, store.departments, 2)
	sales := store.departments[0]
	assert.Equal(t, "Sales", sales.DepartmentName)
	assert.Equal(t, 2, sales.EmployeeCount)
	assert.Equal(t, 1, sales.AttritionCount)
	assert.Equal(t, 0.5, sales.AvgAttritionRate)
	assert.Equal(t, fixedClock(), sales.LastUpdated)
	rnd := store.departments[1]
	assert.Equal(t, 1, rnd.EmployeeCount)
	assert.Equal(t, 0.0, rnd.AvgAttritionRate)

	require.Len(t, store.employees, 3)
	doc := store.employees[1]
	assert.Nil(t, doc.AttritionInfo.RiskScore)
	assert.Nil(t, doc.AttritionInfo.LastRiskAssessment)
	assert.Equal(t, "Yes", doc.AttritionInfo.Status)
	assert.Equal(t, domain.DataSourceInitialImport, doc.Metadata.DataSource)
	assert.Equal(t, 5993, doc.Compensation.MonthlyIncome)
}

func TestDocumentEngineBadRowFailsItsBatch(t *testing.T) {
	store := newMemoryDocumentStore()
	ds := datasettest.Build(
		datasettest.Values(1, nil),
		datasettest.Values(2, map[string]string{dataset.ColMonthlyIncome: "lots"}),
		datasettest.Values(3, nil),
		datasettest.Values(4, nil),
		datasettest.Values(5, nil),
	)

	s := newTestDocumentEngine(store, Options{BatchSize: 2}).Run(context.Background(), ds)

	require.NoError(t, s.Err)
	assert.Equal(t, 3, s.Succeeded)
	assert.Equal(t, 2, s.Failed)
	require.Len(t, s.Batches, 1)
	b := s.Batches[0]
	assert.Equal(t, 2, b.FirstLine)
	assert.Equal(t, 3, b.LastLine)
	assert.Equal(t, 2, b.Size)
	assert.ErrorIs(t, b.Err, domain.ErrRowTransform)

	assert.NotContains(t, store.employees, 1)
	assert.NotContains(t, store.employees, 2)
	assert.Contains(t, store.employees, 3)

	// aggregates cover the decodable rows only
	require.Len(t, store.departments, 1)
	assert.Equal(t, 4, store.departments[0].EmployeeCount)
}

func TestDocumentEngineRerunWithoutClean(t *testing.T) {
	store := newMemoryDocumentStore()
	ctx := context.Background()
	require.NoError(t, newTestDocumentEngine(store, Options{}).Run(ctx, salesAndRnD()).Err)
	store.inserts = 0

	// the unique department index rejects the snapshots before any employee batch
	s := newTestDocumentEngine(store, Options{BatchSize: 2, Confirmer: Always(false)}).Run(ctx, salesAndRnD())

	assert.True(t, s.Aborted())
	assert.ErrorIs(t, s.Err, domain.ErrPrepare)
	assert.Equal(t, StateAborted, s.State)
	assert.Zero(t, s.Succeeded)
	assert.Zero(t, s.Failed)
	assert.Empty(t, s.Batches)
	assert.Zero(t, store.inserts)
	assert.Len(t, store.employees, 3)
}

func TestDocumentEngineClean(t *testing.T) {
	store := newMemoryDocumentStore()
	ctx := context.Background()
	require.NoError(t, newTestDocumentEngine(store, Options{}).Run(ctx, salesAndRnD()).Err)
	store.predictions = 4

	s := newTestDocumentEngine(store, Options{Confirmer: Always(true)}).Run(ctx, salesAndRnD())

	require.NoError(t, s.Err)
	assert.True(t, s.Cleaned)
	assert.Equal(t, cleanCollections, store.deleted)
	assert.Zero(t, store.predictions)
	assert.Equal(t, 3, s.Succeeded)
	assert.Len(t, store.departments, 2)
}

func TestDocumentEngineFatalErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("department write", func(t *testing.T) {
		store := newMemoryDocumentStore()
		store.deptErr = fmt.Errorf("%w: network", domain.ErrPrepare)
		s := newTestDocumentEngine(store, Options{}).Run(ctx, salesAndRnD())
		assert.ErrorIs(t, s.Err, domain.ErrPrepare)
		assert.Equal(t, StateAborted, s.State)
		assert.Empty(t, store.employees)
	})

	t.Run("lost connection", func(t *testing.T) {
		store := newMemoryDocumentStore()
		store.empErr = fmt.Errorf("%w: server selection timeout", domain.ErrConnectivity)
		s := newTestDocumentEngine(store, Options{BatchSize: 1}).Run(ctx, salesAndRnD())
		assert.True(t, s.Aborted())
		assert.ErrorIs(t, s.Err, domain.ErrConnectivity)
		assert.Equal(t, StateAborted, s.State)
		assert.Equal(t, 1, store.inserts)
		assert.Empty(t, s.Batches)
	})

	t.Run("clean", func(t *testing.T) {
		store := newMemoryDocumentStore()
		store.deleteErr = fmt.Errorf("%w: unauthorized", domain.ErrCleanup)
		s := newTestDocumentEngine(store, Options{Confirmer: Always(true)}).Run(ctx, salesAndRnD())
		assert.ErrorIs(t, s.Err, domain.ErrCleanup)
		assert.Zero(t, store.indexed)
	})
}

func TestDocumentEngineSearchMirror(t *testing.T) {
	store := newMemoryDocumentStore()
	store.employees[2] = domain.EmployeeDocument{EmployeeNumber: 2}
	mirror := &recordingIndexer{err: errors.New("cluster red")}

	s := newTestDocumentEngine(store, Options{BatchSize: 10}).
		WithSearchMirror(mirror).
		Run(context.Background(), salesAndRnD())

	// ordered insert stops at the duplicate; only the stored prefix is mirrored
	require.NoError(t, s.Err)
	assert.Equal(t, 1, s.Succeeded)
	assert.Equal(t, 2, s.Failed)
	assert.Equal(t, []int{1}, mirror.numbers)
}
