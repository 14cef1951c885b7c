package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/locvowork/attrition_datahub/internal/domain"
)

// Table names, parents first.
const (
	TableDepartments        = "departments"
	TableEmployees          = "employees"
	TableJobDetails         = "job_details"
	TableCompensation       = "compensation"
	TablePerformanceMetrics = "performance_metrics"
	TableSatisfactionScores = "satisfaction_scores"
)

// Tables lists every table in creation order.
var Tables = []string{
	TableDepartments,
	TableEmployees,
	TableJobDetails,
	TableCompensation,
	TablePerformanceMetrics,
	TableSatisfactionScores,
}

// truncateOrder is Tables reversed: children before parents.
var truncateOrder = []string{
	TableSatisfactionScores,
	TablePerformanceMetrics,
	TableCompensation,
	TableJobDetails,
	TableEmployees,
	TableDepartments,
}

var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS departments (
		department_id {{pk}},
		department_name VARCHAR(100) NOT NULL UNIQUE
	){{engine}}`,
	`CREATE TABLE IF NOT EXISTS employees (
		employee_number INT NOT NULL PRIMARY KEY,
		age INT,
		gender VARCHAR(10),
		marital_status VARCHAR(20),
		education INT,
		education_field VARCHAR(50),
		distance_from_home INT,
		over_18 VARCHAR(1),
		employee_count INT,
		attrition VARCHAR(3)
	){{engine}}`,
	`CREATE TABLE IF NOT EXISTS job_details (
		job_id {{pk}},
		employee_number INT NOT NULL,
		department_id {{fk}},
		job_role VARCHAR(100),
		job_level INT,
		job_involvement INT,
		job_satisfaction INT,
		standard_hours INT,
		business_travel VARCHAR(50),
		overtime VARCHAR(3),
		FOREIGN KEY (employee_number) REFERENCES employees(employee_number) ON DELETE CASCADE,
		FOREIGN KEY (department_id) REFERENCES departments(department_id) ON DELETE SET NULL
	){{engine}}`,
	`CREATE TABLE IF NOT EXISTS compensation (
		compensation_id {{pk}},
		employee_number INT NOT NULL,
		daily_rate INT,
		hourly_rate INT,
		monthly_income INT,
		monthly_rate INT,
		percent_salary_hike INT,
		stock_option_level INT,
		FOREIGN KEY (employee_number) REFERENCES employees(employee_number) ON DELETE CASCADE
	){{engine}}`,
	`CREATE TABLE IF NOT EXISTS performance_metrics (
		performance_id {{pk}},
		employee_number INT NOT NULL,
		performance_rating INT,
		years_at_company INT,
		years_in_current_role INT,
		years_since_last_promotion INT,
		years_with_curr_manager INT,
		total_working_years INT,
		num_companies_worked INT,
		training_times_last_year INT,
		FOREIGN KEY (employee_number) REFERENCES employees(employee_number) ON DELETE CASCADE
	){{engine}}`,
	`CREATE TABLE IF NOT EXISTS satisfaction_scores (
		satisfaction_id {{pk}},
		employee_number INT NOT NULL,
		environment_satisfaction INT,
		job_satisfaction INT,
		relationship_satisfaction INT,
		work_life_balance INT,
		FOREIGN KEY (employee_number) REFERENCES employees(employee_number) ON DELETE CASCADE
	){{engine}}`,
}

func (d Dialect) ddlReplacer() *strings.Replacer {
	switch d {
	case DialectPostgres:
		return strings.NewReplacer("{{pk}}", "SERIAL PRIMARY KEY", "{{fk}}", "INT NULL", "{{engine}}", "")
	case DialectSQLite:
		return strings.NewReplacer("{{pk}}", "INTEGER PRIMARY KEY AUTOINCREMENT", "{{fk}}", "INTEGER NULL", "{{engine}}", "")
	default:
		return strings.NewReplacer("{{pk}}", "INT AUTO_INCREMENT PRIMARY KEY", "{{fk}}", "INT NULL",
			"{{engine}}", " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4")
	}
}

// EnsureSchema creates the six tables when they do not exist yet.
func (c *SQLClient) EnsureSchema(ctx context.Context) error {
	r := c.dialect.ddlReplacer()
	for i, ddl := range schemaDDL {
		if _, err := c.db.ExecContext(ctx, r.Replace(ddl)); err != nil {
			return fmt.Errorf("%w: failed to create table %s: %w", domain.ErrPrepare, Tables[i], err)
		}
	}
	return nil
}
