package importer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/attrition_datahub/internal/database"
	"github.com/locvowork/attrition_datahub/internal/dataset"
	"github.com/locvowork/attrition_datahub/internal/dataset/datasettest"
	"github.com/locvowork/attrition_datahub/internal/domain"
)

func openStore(t *testing.T) *database.SQLClient {
	t.Helper()
	ctx := context.Background()
	c, err := database.OpenSQL(ctx, database.Config{Driver: "sqlite", DBName: filepath.Join(t.TempDir(), "import.db")})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	require.NoError(t, c.EnsureSchema(ctx))
	return c
}

func count(t *testing.T, c *database.SQLClient, query string) int {
	t.Helper()
	var n int
	require.NoError(t, c.DB().QueryRow(query).Scan(&n))
	return n
}

func fiveRows() *dataset.Dataset {
	return datasettest.Build(
		datasettest.Values(1, map[string]string{dataset.ColDepartment: "Sales", dataset.ColAttrition: "Yes"}),
		datasettest.Values(2, map[string]string{dataset.ColDepartment: "Research & Development"}),
		datasettest.Values(4, map[string]string{dataset.ColDepartment: "Sales"}),
		datasettest.Values(5, map[string]string{dataset.ColDepartment: "Human Resources"}),
		datasettest.Values(7, map[string]string{dataset.ColDepartment: "Research & Development"}),
	)
}

func TestRelationalEngineImportsAllRows(t *testing.T) {
	c := openStore(t)
	s := NewRelationalEngine(c, Options{BatchSize: 2}).Run(context.Background(), fiveRows())

	require.NoError(t, s.Err)
	assert.Equal(t, StateRowsImported, s.State)
	assert.NotEmpty(t, s.RunID)
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 5, s.Succeeded)
	assert.Zero(t, s.Failed)
	assert.Equal(t, 3, s.Departments)
	assert.False(t, s.Cleaned)

	for _, table := range database.Tables[1:] {
		assert.Equal(t, 5, count(t, c, "SELECT COUNT(*) FROM "+table), table)
	}
	assert.Equal(t, 3, count(t, c, "SELECT COUNT(*) FROM departments"))

	// every satellite row references an existing employee with the same number
	for _, table := range database.Tables[2:] {
		orphans := count(t, c, "SELECT COUNT(*) FROM "+table+
			" s LEFT JOIN employees e ON e.employee_number = s.employee_number WHERE e.employee_number IS NULL")
		assert.Zero(t, orphans, table)
	}
}

func TestRelationalEngineRoundTrip(t *testing.T) {
	c := openStore(t)
	s := NewRelationalEngine(c, Options{}).Run(context.Background(), fiveRows())
	require.NoError(t, s.Err)

	var (
		age, income, years, env int
		gender, dept, overtime  string
	)
	err := c.DB().QueryRow(`SELECT e.age, e.gender, d.department_name, j.overtime, c.monthly_income,
			p.years_with_curr_manager, s.environment_satisfaction
		FROM employees e
		JOIN job_details j ON j.employee_number = e.employee_number
		JOIN departments d ON d.department_id = j.department_id
		JOIN compensation c ON c.employee_number = e.employee_number
		JOIN performance_metrics p ON p.employee_number = e.employee_number
		JOIN satisfaction_scores s ON s.employee_number = e.employee_number
		WHERE e.employee_number = 2`).Scan(&age, &gender, &dept, &overtime, &income, &years, &env)
	require.NoError(t, err)

	assert.Equal(t, 41, age)
	assert.Equal(t, "Female", gender)
	assert.Equal(t, "Research & Development", dept)
	assert.Equal(t, "Yes", overtime)
	assert.Equal(t, 5993, income)
	assert.Equal(t, 5, years)
	assert.Equal(t, 2, env)
}

func TestRelationalEngineSkipsBadRow(t *testing.T) {
	c := openStore(t)
	ds := datasettest.Build(
		datasettest.Values(1, nil),
		datasettest.Values(2, map[string]string{dataset.ColAge: "forty"}),
		datasettest.Values(3, nil),
	)

	s := NewRelationalEngine(c, Options{BatchSize: 100}).Run(context.Background(), ds)

	require.NoError(t, s.Err)
	assert.Equal(t, 2, s.Succeeded)
	assert.Equal(t, 1, s.Failed)
	require.Len(t, s.Rows, 1)
	assert.Equal(t, 3, s.Rows[0].Line)
	assert.Equal(t, 2, s.Rows[0].EmployeeNumber)
	assert.ErrorIs(t, s.Rows[0].Err, domain.ErrRowTransform)
	assert.Equal(t, 2, count(t, c, "SELECT COUNT(*) FROM employees"))
}

func TestRelationalEngineRerunWithoutClean(t *testing.T) {
	c := openStore(t)
	ctx := context.Background()
	first := NewRelationalEngine(c, Options{BatchSize: 2}).Run(ctx, fiveRows())
	require.NoError(t, first.Err)

	second := NewRelationalEngine(c, Options{BatchSize: 2, Confirmer: Always(false)}).Run(ctx, fiveRows())

	require.NoError(t, second.Err)
	assert.False(t, second.Cleaned)
	assert.Zero(t, second.Succeeded)
	assert.Equal(t, 5, second.Failed)
	for _, r := range second.Rows {
		assert.ErrorIs(t, r.Err, domain.ErrRowWrite)
	}

	// departments are upserted, employees rejected by the primary key
	assert.Equal(t, 3, count(t, c, "SELECT COUNT(*) FROM departments"))
	for _, table := range database.Tables[1:] {
		assert.Equal(t, 5, count(t, c, "SELECT COUNT(*) FROM "+table), table)
	}
}

func TestRelationalEngineDuplicateInsideDataset(t *testing.T) {
	c := openStore(t)
	ds := datasettest.Build(
		datasettest.Values(1, nil),
		datasettest.Values(2, nil),
		datasettest.Values(1, map[string]string{dataset.ColAge: "50"}),
		datasettest.Values(3, nil),
	)

	s := NewRelationalEngine(c, Options{BatchSize: 100}).Run(context.Background(), ds)

	require.NoError(t, s.Err)
	assert.Equal(t, 3, s.Succeeded)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 4, s.Rows[0].Line)
	// the failed duplicate left no partial satellite rows behind
	for _, table := range database.Tables[1:] {
		assert.Equal(t, 3, count(t, c, "SELECT COUNT(*) FROM "+table), table)
	}
	assert.Equal(t, 41, count(t, c, "SELECT age FROM employees WHERE employee_number = 1"))
}

func TestRelationalEngineCleanRerun(t *testing.T) {
	c := openStore(t)
	ctx := context.Background()
	require.NoError(t, NewRelationalEngine(c, Options{}).Run(ctx, fiveRows()).Err)

	s := NewRelationalEngine(c, Options{Confirmer: Always(true)}).Run(ctx, fiveRows())

	require.NoError(t, s.Err)
	assert.True(t, s.Cleaned)
	assert.Equal(t, 5, s.Succeeded)
	assert.Equal(t, 5, count(t, c, "SELECT COUNT(*) FROM employees"))
	assert.Equal(t, 3, count(t, c, "SELECT MAX(department_id) FROM departments"))
}

// fakeRelationalStore fails on demand.
type fakeRelationalStore struct {
	truncateErr error
	upsertErr   error
	commitErr   error
	rolledBack  int
	inserted    []domain.RelationalRecord
	nextID      int64
}

func (f *fakeRelationalStore) TruncateAll(context.Context) error { return f.truncateErr }

func (f *fakeRelationalStore) UpsertDepartment(context.Context, string) (int64, error) {
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	f.nextID++
	return f.nextID, nil
}

func (f *fakeRelationalStore) BeginBatch(context.Context) (domain.RowBatch, error) {
	return &fakeBatch{store: f}, nil
}

type fakeBatch struct {
	store *fakeRelationalStore
	rows  []domain.RelationalRecord
}

func (b *fakeBatch) InsertRecord(_ context.Context, rec domain.RelationalRecord) error {
	b.rows = append(b.rows, rec)
	return nil
}

func (b *fakeBatch) Commit() error {
	if b.store.commitErr != nil {
		return b.store.commitErr
	}
	b.store.inserted = append(b.store.inserted, b.rows...)
	return nil
}

func (b *fakeBatch) Rollback() error {
	b.store.rolledBack++
	return nil
}

func TestRelationalEngineFatalErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("clean failure aborts before any write", func(t *testing.T) {
		store := &fakeRelationalStore{truncateErr: domain.ErrCleanup}
		s := NewRelationalEngine(store, Options{Confirmer: Always(true)}).Run(ctx, fiveRows())
		assert.ErrorIs(t, s.Err, domain.ErrCleanup)
		assert.True(t, s.Aborted())
		assert.Equal(t, StateAborted, s.State)
		assert.Zero(t, store.nextID)
		assert.Empty(t, store.inserted)
	})

	t.Run("department failure is a prepare error", func(t *testing.T) {
		store := &fakeRelationalStore{upsertErr: errors.New("deadlock")}
		s := NewRelationalEngine(store, Options{}).Run(ctx, fiveRows())
		assert.ErrorIs(t, s.Err, domain.ErrPrepare)
		assert.True(t, domain.IsFatal(s.Err))
		assert.Empty(t, store.inserted)
	})

	t.Run("commit failure rolls back and aborts", func(t *testing.T) {
		store := &fakeRelationalStore{commitErr: domain.ErrConnectivity}
		s := NewRelationalEngine(store, Options{BatchSize: 2}).Run(ctx, fiveRows())
		assert.ErrorIs(t, s.Err, domain.ErrConnectivity)
		assert.Zero(t, s.Succeeded)
		assert.Equal(t, 1, store.rolledBack)
	})

	t.Run("declined clean keeps data", func(t *testing.T) {
		store := &fakeRelationalStore{truncateErr: domain.ErrCleanup}
		s := NewRelationalEngine(store, Options{Confirmer: Always(false)}).Run(ctx, fiveRows())
		require.NoError(t, s.Err)
		assert.Len(t, store.inserted, 5)
	})
}
