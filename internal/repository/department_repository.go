package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/locvowork/attrition_datahub/internal/database"
	"github.com/locvowork/attrition_datahub/internal/domain"
)

type departmentRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewDepartmentRepository(client *database.SQLClient) domain.DepartmentRepository {
	return &departmentRepository{db: client.DB(), dialect: client.Dialect()}
}

func (r *departmentRepository) Create(ctx context.Context, d *domain.Department) error {
	b := r.dialect.Builder().Insert(database.TableDepartments, "department_name").Values(d.DepartmentName)
	id, err := insertReturningID(ctx, r.db, r.dialect, b, "department_id")
	if err != nil {
		return writeError(fmt.Sprintf("create department %q", d.DepartmentName), err)
	}
	d.DepartmentID = id
	return nil
}

func (r *departmentRepository) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	query, args := r.dialect.Builder().Select("department_id", "department_name").
		From(database.TableDepartments).
		Where("department_id = ?", id).
		Build()

	var d domain.Department
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&d.DepartmentID, &d.DepartmentName); err != nil {
		return nil, readError(fmt.Sprintf("get department %d", id), err)
	}
	return &d, nil
}

func (r *departmentRepository) Update(ctx context.Context, d *domain.Department) error {
	query, args := r.dialect.Builder().Update(database.TableDepartments).
		Set("department_name", d.DepartmentName).
		Where("department_id = ?", d.DepartmentID).
		Build()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return writeError(fmt.Sprintf("update department %d", d.DepartmentID), err)
	}
	return affectedOne(res, fmt.Sprintf("update department %d", d.DepartmentID))
}

// Delete removes the department. Job details pointing at it keep their row
// with a NULL department_id.
func (r *departmentRepository) Delete(ctx context.Context, id int64) error {
	query, args := r.dialect.Builder().Delete(database.TableDepartments).
		Where("department_id = ?", id).
		Build()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete department %d: %w", id, err)
	}
	return affectedOne(res, fmt.Sprintf("delete department %d", id))
}

func (r *departmentRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Department, error) {
	limit, offset := window(filter)
	query, args := r.dialect.Builder().Select("department_id", "department_name").
		From(database.TableDepartments).
		OrderBy("department_id ASC").
		Limit(limit).
		Offset(offset).
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	departments := []domain.Department{}
	for rows.Next() {
		var d domain.Department
		if err := rows.Scan(&d.DepartmentID, &d.DepartmentName); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return departments, nil
}
