package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/locvowork/attrition_datahub/internal/database"
	"github.com/locvowork/attrition_datahub/internal/domain"
)

// verificationTables is the order counts are reported in.
var verificationTables = []string{
	database.TableEmployees,
	database.TableDepartments,
	database.TableJobDetails,
	database.TableCompensation,
	database.TablePerformanceMetrics,
	database.TableSatisfactionScores,
}

var procedureName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type sqlStatsRepository struct {
	db        *sql.DB
	dialect   database.Dialect
	procedure string
}

// NewSQLStatsRepository creates the verification reader. procedure names the
// stored risk routine; an empty name disables RiskAssessment.
func NewSQLStatsRepository(client *database.SQLClient, procedure string) domain.SQLStatsRepository {
	return &sqlStatsRepository{db: client.DB(), dialect: client.Dialect(), procedure: procedure}
}

func (r *sqlStatsRepository) TableCounts(ctx context.Context) ([]domain.TableCount, error) {
	counts := make([]domain.TableCount, 0, len(verificationTables))
	for _, table := range verificationTables {
		query, args := r.dialect.Builder().Select("COUNT(*)").From(table).Build()
		tc := domain.TableCount{Name: table}
		if err := r.db.QueryRowContext(ctx, query, args...).Scan(&tc.Count); err != nil {
			return nil, fmt.Errorf("%w: failed to count %s: %w", domain.ErrVerification, table, err)
		}
		counts = append(counts, tc)
	}
	return counts, nil
}

func (r *sqlStatsRepository) AttritionSplit(ctx context.Context) (domain.AttritionSplit, error) {
	query, args := r.dialect.Builder().
		Select("SUM(CASE WHEN attrition = 'Yes' THEN 1 ELSE 0 END)", "SUM(CASE WHEN attrition = 'No' THEN 1 ELSE 0 END)").
		From(database.TableEmployees).
		Build()

	var yes, no sql.NullInt64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&yes, &no); err != nil {
		return domain.AttritionSplit{}, fmt.Errorf("%w: failed to count attrition: %w", domain.ErrVerification, err)
	}
	return domain.AttritionSplit{Yes: yes.Int64, No: no.Int64}, nil
}

// DepartmentStats groups employees by department through job_details.
func (r *sqlStatsRepository) DepartmentStats(ctx context.Context) ([]domain.DepartmentStat, error) {
	query, args := r.dialect.Builder().
		Select(
			"d.department_name",
			"COUNT(e.employee_number) AS emp_count",
			"SUM(CASE WHEN e.attrition = 'Yes' THEN 1 ELSE 0 END) AS attrition_count",
			"COALESCE(AVG(c.monthly_income), 0)",
			"COALESCE(AVG(j.job_satisfaction), 0)",
		).
		From("departments d").
		Join("INNER", "job_details j", "j.department_id = d.department_id").
		Join("INNER", "employees e", "e.employee_number = j.employee_number").
		Join("LEFT", "compensation c", "c.employee_number = e.employee_number").
		GroupBy("d.department_name").
		OrderBy("emp_count DESC").
		OrderBy("d.department_name ASC").
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query department stats: %w", domain.ErrVerification, err)
	}
	defer rows.Close()

	stats := []domain.DepartmentStat{}
	for rows.Next() {
		var s domain.DepartmentStat
		if err := rows.Scan(&s.Department, &s.Employees, &s.AttritionCount, &s.AvgIncome, &s.AvgJobSatisfaction); err != nil {
			return nil, fmt.Errorf("%w: failed to scan department stats: %w", domain.ErrVerification, err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrVerification, err)
	}
	return stats, nil
}

// RiskAssessment calls the stored risk routine for one employee. ok is false
// when the routine is not configured, not installed, or the dialect has none.
func (r *sqlStatsRepository) RiskAssessment(ctx context.Context, employeeNumber int) (*domain.RiskAssessment, bool, error) {
	if r.procedure == "" || r.dialect == database.DialectSQLite {
		return nil, false, nil
	}
	if !procedureName.MatchString(r.procedure) {
		return nil, false, fmt.Errorf("%w: invalid procedure name %q", domain.ErrVerification, r.procedure)
	}

	query := "CALL " + r.procedure + "(?)"
	if r.dialect == database.DialectPostgres {
		query = "SELECT * FROM " + r.procedure + "(?)"
	}
	query = r.dialect.Rebind(query)

	rows, err := r.db.QueryContext(ctx, query, employeeNumber)
	if err != nil {
		if database.IsMissingRoutine(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: failed to call %s: %w", domain.ErrVerification, r.procedure, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, false, fmt.Errorf("%w: %w", domain.ErrVerification, err)
		}
		return nil, true, nil
	}

	var (
		id      sql.NullInt64
		score   sql.NullFloat64
		level   sql.NullString
		factors sql.NullString
	)
	if err := rows.Scan(&id, &score, &level, &factors); err != nil {
		return nil, false, fmt.Errorf("%w: failed to scan %s result: %w", domain.ErrVerification, r.procedure, err)
	}
	return &domain.RiskAssessment{
		EmployeeNumber: int(id.Int64),
		RiskScore:      score.Float64,
		RiskLevel:      level.String,
		Factors:        factors.String,
	}, true, nil
}
