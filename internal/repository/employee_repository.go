package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/locvowork/attrition_datahub/internal/database"
	"github.com/locvowork/attrition_datahub/internal/domain"
)

// DefaultDepartmentName is used when an employee is created without a department.
const DefaultDepartmentName = "General"

// DefaultJobDetail is written for employees created without job details.
func DefaultJobDetail() domain.JobDetail {
	return domain.JobDetail{
		JobRole:         "Developer",
		JobLevel:        2,
		JobInvolvement:  3,
		JobSatisfaction: 3,
		StandardHours:   80,
		BusinessTravel:  "Travel_Rarely",
		OverTime:        "No",
	}
}

var employeeColumns = []string{
	"e.employee_number", "e.age", "e.gender", "e.marital_status", "e.education", "e.education_field",
	"e.distance_from_home", "e.over_18", "e.employee_count", "e.attrition",
	"d.department_name", "j.job_satisfaction",
}

type employeeRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewEmployeeRepository creates a new instance of EmployeeRepository
func NewEmployeeRepository(client *database.SQLClient) domain.EmployeeRepository {
	return &employeeRepository{db: client.DB(), dialect: client.Dialect()}
}

// Create inserts the employee with its department and job detail in one
// transaction. A zero EmployeeNumber is replaced by MAX(employee_number)+1.
func (r *employeeRepository) Create(ctx context.Context, e *domain.Employee, departmentName string, job *domain.JobDetail) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if e.EmployeeNumber == 0 {
		last, err := maxEmployeeNumber(ctx, tx, r.dialect)
		if err != nil {
			return err
		}
		e.EmployeeNumber = last + 1
	}

	if departmentName == "" {
		departmentName = DefaultDepartmentName
	}
	deptID, err := resolveDepartment(ctx, tx, r.dialect, departmentName)
	if err != nil {
		return err
	}

	query, args := r.dialect.Builder().
		Insert(database.TableEmployees, "employee_number", "age", "gender", "marital_status", "education",
			"education_field", "distance_from_home", "over_18", "employee_count", "attrition").
		Values(e.EmployeeNumber, e.Age, e.Gender, e.MaritalStatus, e.Education,
			e.EducationField, e.DistanceFromHome, e.Over18, e.EmployeeCount, e.Attrition).
		Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return writeError(fmt.Sprintf("create employee %d", e.EmployeeNumber), err)
	}

	jd := DefaultJobDetail()
	if job != nil {
		jd = *job
	}
	jd.EmployeeNumber = e.EmployeeNumber
	jd.DepartmentID = &deptID
	if _, err := insertJobDetail(ctx, tx, r.dialect, &jd); err != nil {
		return err
	}
	if job != nil {
		*job = jd
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit employee %d: %w", e.EmployeeNumber, err)
	}
	return nil
}

func (r *employeeRepository) GetByNumber(ctx context.Context, number int) (*domain.EmployeeView, error) {
	query, args := r.dialect.Builder().Select(employeeColumns...).
		From("employees e").
		Join("LEFT", "job_details j", "j.employee_number = e.employee_number").
		Join("LEFT", "departments d", "d.department_id = j.department_id").
		Where("e.employee_number = ?", number).
		Limit(1).
		Build()

	v, err := scanEmployeeView(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, readError(fmt.Sprintf("get employee %d", number), err)
	}
	return v, nil
}

func (r *employeeRepository) Update(ctx context.Context, e *domain.Employee) error {
	query, args := r.dialect.Builder().Update(database.TableEmployees).
		Set("age", e.Age).
		Set("gender", e.Gender).
		Set("marital_status", e.MaritalStatus).
		Set("education", e.Education).
		Set("education_field", e.EducationField).
		Set("distance_from_home", e.DistanceFromHome).
		Set("over_18", e.Over18).
		Set("employee_count", e.EmployeeCount).
		Set("attrition", e.Attrition).
		Where("employee_number = ?", e.EmployeeNumber).
		Build()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return writeError(fmt.Sprintf("update employee %d", e.EmployeeNumber), err)
	}
	return affectedOne(res, fmt.Sprintf("update employee %d", e.EmployeeNumber))
}

// Delete removes the employee; satellite rows go with it through ON DELETE CASCADE.
func (r *employeeRepository) Delete(ctx context.Context, number int) error {
	query, args := r.dialect.Builder().Delete(database.TableEmployees).
		Where("employee_number = ?", number).
		Build()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete employee %d: %w", number, err)
	}
	return affectedOne(res, fmt.Sprintf("delete employee %d", number))
}

func (r *employeeRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.EmployeeView, error) {
	limit, offset := window(filter)
	query, args := r.dialect.Builder().Select(employeeColumns...).
		From("employees e").
		Join("LEFT", "job_details j", "j.employee_number = e.employee_number").
		Join("LEFT", "departments d", "d.department_id = j.department_id").
		OrderBy("e.employee_number ASC").
		Limit(limit).
		Offset(offset).
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := []domain.EmployeeView{}
	for rows.Next() {
		v, err := scanEmployeeView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return employees, nil
}

func (r *employeeRepository) MaxEmployeeNumber(ctx context.Context) (int, error) {
	return maxEmployeeNumber(ctx, r.db, r.dialect)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmployeeView(row rowScanner) (*domain.EmployeeView, error) {
	var v domain.EmployeeView
	e := &v.Employee
	if err := row.Scan(&e.EmployeeNumber, &e.Age, &e.Gender, &e.MaritalStatus, &e.Education, &e.EducationField,
		&e.DistanceFromHome, &e.Over18, &e.EmployeeCount, &e.Attrition,
		&v.DepartmentName, &v.JobSatisfaction); err != nil {
		return nil, err
	}
	return &v, nil
}

func maxEmployeeNumber(ctx context.Context, q queryer, dialect database.Dialect) (int, error) {
	query, args := dialect.Builder().
		Select("COALESCE(MAX(employee_number), 0)").
		From(database.TableEmployees).
		Build()
	var last int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&last); err != nil {
		return 0, fmt.Errorf("failed to read max employee number: %w", err)
	}
	return last, nil
}

// resolveDepartment returns the id of the named department, creating it if needed.
func resolveDepartment(ctx context.Context, q queryer, dialect database.Dialect, name string) (int64, error) {
	query, args := dialect.Builder().
		Select("department_id").
		From(database.TableDepartments).
		Where("department_name = ?", name).
		Build()

	var id int64
	err := q.QueryRowContext(ctx, query, args...).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up department %q: %w", name, err)
	}

	b := dialect.Builder().Insert(database.TableDepartments, "department_name").Values(name)
	id, err = insertReturningID(ctx, q, dialect, b, "department_id")
	if err != nil {
		return 0, writeError(fmt.Sprintf("create department %q", name), err)
	}
	return id, nil
}
