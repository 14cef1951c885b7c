package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/locvowork/attrition_datahub/internal/domain"
)

// TruncateAll empties all six tables, children first, with foreign key
// enforcement suspended on a pinned connection and restored afterwards.
func (c *SQLClient) TruncateAll(ctx context.Context) (err error) {
	if c.dialect == DialectPostgres {
		stmt := "TRUNCATE TABLE " + strings.Join(truncateOrder, ", ") + " RESTART IDENTITY CASCADE"
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: failed to truncate tables: %w", domain.ErrCleanup, err)
		}
		return nil
	}

	conn, err := c.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to acquire connection: %w", domain.ErrConnectivity, err)
	}
	defer conn.Close()

	disable, enable := "SET FOREIGN_KEY_CHECKS = 0", "SET FOREIGN_KEY_CHECKS = 1"
	if c.dialect == DialectSQLite {
		disable, enable = "PRAGMA foreign_keys = OFF", "PRAGMA foreign_keys = ON"
	}

	if _, err := conn.ExecContext(ctx, disable); err != nil {
		return fmt.Errorf("%w: failed to disable foreign keys: %w", domain.ErrCleanup, err)
	}
	defer func() {
		if _, enErr := conn.ExecContext(context.WithoutCancel(ctx), enable); enErr != nil && err == nil {
			err = fmt.Errorf("%w: failed to re-enable foreign keys: %w", domain.ErrCleanup, enErr)
		}
	}()

	for _, table := range truncateOrder {
		stmt := "TRUNCATE TABLE " + table
		if c.dialect == DialectSQLite {
			stmt = "DELETE FROM " + table
		}
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: failed to truncate %s: %w", domain.ErrCleanup, table, err)
		}
	}

	if c.dialect == DialectSQLite {
		// reset AUTOINCREMENT counters like TRUNCATE does
		if _, err := conn.ExecContext(ctx, "DELETE FROM sqlite_sequence"); err != nil {
			return fmt.Errorf("%w: failed to reset sequences: %w", domain.ErrCleanup, err)
		}
	}
	return nil
}

// UpsertDepartment inserts the department when absent and returns its id.
func (c *SQLClient) UpsertDepartment(ctx context.Context, name string) (int64, error) {
	insert, args := c.dialect.Builder().
		Insert(TableDepartments, "department_name").
		Values(name).
		Suffix(c.dialect.InsertIgnoreSuffix("department_name")).
		Build()
	if _, err := c.db.ExecContext(ctx, insert, args...); err != nil {
		return 0, fmt.Errorf("failed to insert department %q: %w", name, err)
	}

	query, args := c.dialect.Builder().
		Select("department_id").
		From(TableDepartments).
		Where("department_name = ?", name).
		Build()
	var id int64
	if err := c.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to look up department %q: %w", name, err)
	}
	return id, nil
}

var recordColumns = [][]string{
	{TableEmployees, "employee_number", "age", "gender", "marital_status", "education", "education_field",
		"distance_from_home", "over_18", "employee_count", "attrition"},
	{TableJobDetails, "employee_number", "department_id", "job_role", "job_level", "job_involvement",
		"job_satisfaction", "standard_hours", "business_travel", "overtime"},
	{TableCompensation, "employee_number", "daily_rate", "hourly_rate", "monthly_income", "monthly_rate",
		"percent_salary_hike", "stock_option_level"},
	{TablePerformanceMetrics, "employee_number", "performance_rating", "years_at_company", "years_in_current_role",
		"years_since_last_promotion", "years_with_curr_manager", "total_working_years", "num_companies_worked",
		"training_times_last_year"},
	{TableSatisfactionScores, "employee_number", "environment_satisfaction", "job_satisfaction",
		"relationship_satisfaction", "work_life_balance"},
}

func recordArgs(rec domain.RelationalRecord) [][]interface{} {
	e, j, c, p, s := rec.Employee, rec.JobDetail, rec.Compensation, rec.Performance, rec.Satisfaction
	var dept interface{}
	if j.DepartmentID != nil {
		dept = *j.DepartmentID
	}
	return [][]interface{}{
		{e.EmployeeNumber, e.Age, e.Gender, e.MaritalStatus, e.Education, e.EducationField,
			e.DistanceFromHome, e.Over18, e.EmployeeCount, e.Attrition},
		{j.EmployeeNumber, dept, j.JobRole, j.JobLevel, j.JobInvolvement,
			j.JobSatisfaction, j.StandardHours, j.BusinessTravel, j.OverTime},
		{c.EmployeeNumber, c.DailyRate, c.HourlyRate, c.MonthlyIncome, c.MonthlyRate,
			c.PercentSalaryHike, c.StockOptionLevel},
		{p.EmployeeNumber, p.PerformanceRating, p.YearsAtCompany, p.YearsInCurrentRole,
			p.YearsSinceLastPromotion, p.YearsWithCurrManager, p.TotalWorkingYears, p.NumCompaniesWorked,
			p.TrainingTimesLastYear},
		{s.EmployeeNumber, s.EnvironmentSatisfaction, s.JobSatisfaction,
			s.RelationshipSatisfaction, s.WorkLifeBalance},
	}
}

// sqlBatch is one transaction with the five insert statements prepared.
type sqlBatch struct {
	tx    *sql.Tx
	stmts []*sql.Stmt
	seq   int
}

// BeginBatch opens a transaction for a batch of rows.
func (c *SQLClient) BeginBatch(ctx context.Context) (domain.RowBatch, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %w", domain.ErrConnectivity, err)
	}

	b := &sqlBatch{tx: tx}
	for _, cols := range recordColumns {
		query, _ := c.dialect.Builder().
			Insert(cols[0], cols[1:]...).
			Values(make([]interface{}, len(cols)-1)...).
			Build()
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("%w: failed to prepare insert into %s: %w", domain.ErrConnectivity, cols[0], err)
		}
		b.stmts = append(b.stmts, stmt)
	}
	return b, nil
}

// InsertRecord writes the five rows of one record under its own savepoint.
// On failure only this record is rolled back and a *domain.RowError of kind
// ErrRowWrite is returned. If the savepoint itself cannot be restored the
// transaction is unusable and the error wraps domain.ErrConnectivity.
func (b *sqlBatch) InsertRecord(ctx context.Context, rec domain.RelationalRecord) error {
	b.seq++
	sp := fmt.Sprintf("row_%d", b.seq)
	if _, err := b.tx.ExecContext(ctx, "SAVEPOINT "+sp); err != nil {
		return fmt.Errorf("%w: failed to create savepoint: %w", domain.ErrConnectivity, err)
	}

	for i, args := range recordArgs(rec) {
		if _, err := b.stmts[i].ExecContext(ctx, args...); err != nil {
			if _, rbErr := b.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+sp); rbErr != nil {
				return fmt.Errorf("%w: failed to roll back row: %w", domain.ErrConnectivity, errors.Join(err, rbErr))
			}
			return &domain.RowError{
				Line:           rec.Line,
				EmployeeNumber: rec.Employee.EmployeeNumber,
				Kind:           domain.ErrRowWrite,
				Err:            fmt.Errorf("insert into %s: %w", recordColumns[i][0], err),
			}
		}
	}

	if _, err := b.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+sp); err != nil {
		return fmt.Errorf("%w: failed to release savepoint: %w", domain.ErrConnectivity, err)
	}
	return nil
}

func (b *sqlBatch) Commit() error {
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit batch: %w", domain.ErrConnectivity, err)
	}
	return nil
}

func (b *sqlBatch) Rollback() error {
	if err := b.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
