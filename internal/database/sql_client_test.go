package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/attrition_datahub/internal/domain"
)

func openTestSQLite(t *testing.T) *SQLClient {
	t.Helper()
	ctx := context.Background()
	c, err := OpenSQL(ctx, Config{Driver: "sqlite", DBName: filepath.Join(t.TempDir(), "hr.db")})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	require.NoError(t, c.EnsureSchema(ctx))
	return c
}

func sampleRecord(number int, deptID int64) domain.RelationalRecord {
	return domain.RelationalRecord{
		Line: number + 1,
		Employee: domain.Employee{
			EmployeeNumber: number, Age: 30, Gender: "Male", MaritalStatus: "Married", Education: 3,
			EducationField: "Medical", DistanceFromHome: 5, Over18: "Y", EmployeeCount: 1, Attrition: "No",
		},
		JobDetail: domain.JobDetail{
			EmployeeNumber: number, DepartmentID: &deptID, JobRole: "Research Scientist", JobLevel: 1,
			JobInvolvement: 3, JobSatisfaction: 4, StandardHours: 80, BusinessTravel: "Non-Travel", OverTime: "No",
		},
		Compensation: domain.Compensation{EmployeeNumber: number, DailyRate: 800, HourlyRate: 60, MonthlyIncome: 4000,
			MonthlyRate: 12000, PercentSalaryHike: 13, StockOptionLevel: 1},
		Performance: domain.PerformanceMetrics{EmployeeNumber: number, PerformanceRating: 3, YearsAtCompany: 2,
			TotalWorkingYears: 6, NumCompaniesWorked: 2},
		Satisfaction: domain.SatisfactionScores{EmployeeNumber: number, EnvironmentSatisfaction: 3, JobSatisfaction: 4,
			RelationshipSatisfaction: 2, WorkLifeBalance: 3},
	}
}

func countRows(t *testing.T, c *SQLClient, table string) int {
	t.Helper()
	var n int
	require.NoError(t, c.DB().QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestBuildDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 3306, User: "root", Password: "pw", DBName: "hr_attrition_db", SSLMode: "disable"}

	dsn, err := BuildDSN(DialectMySQL, cfg)
	require.NoError(t, err)
	assert.Contains(t, dsn, "root:pw@tcp(db:3306)/hr_attrition_db")
	assert.Contains(t, dsn, "parseTime=true")

	cfg.Port = 5432
	dsn, err = BuildDSN(DialectPostgres, cfg)
	require.NoError(t, err)
	assert.Equal(t, "host=db port=5432 user=root password=pw dbname=hr_attrition_db sslmode=disable", dsn)

	dsn, err = BuildDSN(DialectSQLite, Config{DBName: "/tmp/hr.db"})
	require.NoError(t, err)
	assert.Equal(t, "file:/tmp/hr.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dsn)
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect("")
	require.NoError(t, err)
	assert.Equal(t, DialectMySQL, d)

	d, err = ParseDialect("PostgreSQL")
	require.NoError(t, err)
	assert.Equal(t, DialectPostgres, d)

	_, err = ParseDialect("oracle")
	assert.Error(t, err)
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	c := openTestSQLite(t)
	require.NoError(t, c.EnsureSchema(context.Background()))
	for _, table := range Tables {
		assert.Equal(t, 0, countRows(t, c, table), table)
	}
}

func TestUpsertDepartment(t *testing.T) {
	c := openTestSQLite(t)
	ctx := context.Background()

	sales, err := c.UpsertDepartment(ctx, "Sales")
	require.NoError(t, err)
	rnd, err := c.UpsertDepartment(ctx, "Research & Development")
	require.NoError(t, err)
	again, err := c.UpsertDepartment(ctx, "Sales")
	require.NoError(t, err)

	assert.NotEqual(t, sales, rnd)
	assert.Equal(t, sales, again)
	assert.Equal(t, 2, countRows(t, c, TableDepartments))
}

func TestBatchIsolatesFailingRow(t *testing.T) {
	c := openTestSQLite(t)
	ctx := context.Background()
	dept, err := c.UpsertDepartment(ctx, "Research & Development")
	require.NoError(t, err)

	batch, err := c.BeginBatch(ctx)
	require.NoError(t, err)

	require.NoError(t, batch.InsertRecord(ctx, sampleRecord(1, dept)))

	// a dangling department id violates the job_details foreign key after the employee row went in
	bad := sampleRecord(2, 999)
	err = batch.InsertRecord(ctx, bad)
	var rowErr *domain.RowError
	require.ErrorAs(t, err, &rowErr)
	assert.ErrorIs(t, err, domain.ErrRowWrite)
	assert.Equal(t, 2, rowErr.EmployeeNumber)
	assert.False(t, domain.IsFatal(err))

	// duplicate primary key
	err = batch.InsertRecord(ctx, sampleRecord(1, dept))
	assert.ErrorIs(t, err, domain.ErrRowWrite)

	require.NoError(t, batch.InsertRecord(ctx, sampleRecord(3, dept)))
	require.NoError(t, batch.Commit())
	require.NoError(t, batch.Rollback())

	assert.Equal(t, 2, countRows(t, c, TableEmployees))
	for _, table := range []string{TableJobDetails, TableCompensation, TablePerformanceMetrics, TableSatisfactionScores} {
		assert.Equal(t, 2, countRows(t, c, table), table)
	}
	var orphans int
	require.NoError(t, c.DB().QueryRow(`SELECT COUNT(*) FROM job_details j
		LEFT JOIN employees e ON e.employee_number = j.employee_number WHERE e.employee_number IS NULL`).Scan(&orphans))
	assert.Zero(t, orphans)
}

func TestBatchRollbackDiscardsUncommittedRows(t *testing.T) {
	c := openTestSQLite(t)
	ctx := context.Background()
	dept, err := c.UpsertDepartment(ctx, "Sales")
	require.NoError(t, err)

	batch, err := c.BeginBatch(ctx)
	require.NoError(t, err)
	require.NoError(t, batch.InsertRecord(ctx, sampleRecord(1, dept)))
	require.NoError(t, batch.Rollback())

	assert.Equal(t, 0, countRows(t, c, TableEmployees))
}

func TestTruncateAll(t *testing.T) {
	c := openTestSQLite(t)
	ctx := context.Background()
	dept, err := c.UpsertDepartment(ctx, "Sales")
	require.NoError(t, err)

	batch, err := c.BeginBatch(ctx)
	require.NoError(t, err)
	require.NoError(t, batch.InsertRecord(ctx, sampleRecord(1, dept)))
	require.NoError(t, batch.Commit())

	require.NoError(t, c.TruncateAll(ctx))
	for _, table := range Tables {
		assert.Equal(t, 0, countRows(t, c, table), table)
	}

	// foreign keys are enforced again afterwards
	batch, err = c.BeginBatch(ctx)
	require.NoError(t, err)
	err = batch.InsertRecord(ctx, sampleRecord(5, 42))
	assert.ErrorIs(t, err, domain.ErrRowWrite)
	require.NoError(t, batch.Rollback())

	// identity restarts
	id, err := c.UpsertDepartment(ctx, "Human Resources")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}
