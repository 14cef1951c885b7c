package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/locvowork/attrition_datahub/internal/database"
	"github.com/locvowork/attrition_datahub/internal/domain"
)

var jobDetailColumns = []string{
	"job_id", "employee_number", "department_id", "job_role", "job_level", "job_involvement",
	"job_satisfaction", "standard_hours", "business_travel", "overtime",
}

type jobDetailRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewJobDetailRepository(client *database.SQLClient) domain.JobDetailRepository {
	return &jobDetailRepository{db: client.DB(), dialect: client.Dialect()}
}

func (r *jobDetailRepository) Create(ctx context.Context, j *domain.JobDetail) error {
	_, err := insertJobDetail(ctx, r.db, r.dialect, j)
	return err
}

func (r *jobDetailRepository) GetByID(ctx context.Context, id int64) (*domain.JobDetail, error) {
	query, args := r.dialect.Builder().Select(jobDetailColumns...).
		From(database.TableJobDetails).
		Where("job_id = ?", id).
		Build()

	j, err := scanJobDetail(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, readError(fmt.Sprintf("get job detail %d", id), err)
	}
	return j, nil
}

func (r *jobDetailRepository) Update(ctx context.Context, j *domain.JobDetail) error {
	query, args := r.dialect.Builder().Update(database.TableJobDetails).
		Set("employee_number", j.EmployeeNumber).
		Set("department_id", departmentArg(j.DepartmentID)).
		Set("job_role", j.JobRole).
		Set("job_level", j.JobLevel).
		Set("job_involvement", j.JobInvolvement).
		Set("job_satisfaction", j.JobSatisfaction).
		Set("standard_hours", j.StandardHours).
		Set("business_travel", j.BusinessTravel).
		Set("overtime", j.OverTime).
		Where("job_id = ?", j.JobID).
		Build()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return writeError(fmt.Sprintf("update job detail %d", j.JobID), err)
	}
	return affectedOne(res, fmt.Sprintf("update job detail %d", j.JobID))
}

func (r *jobDetailRepository) Delete(ctx context.Context, id int64) error {
	query, args := r.dialect.Builder().Delete(database.TableJobDetails).
		Where("job_id = ?", id).
		Build()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete job detail %d: %w", id, err)
	}
	return affectedOne(res, fmt.Sprintf("delete job detail %d", id))
}

func (r *jobDetailRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.JobDetail, error) {
	limit, offset := window(filter)
	query, args := r.dialect.Builder().Select(jobDetailColumns...).
		From(database.TableJobDetails).
		OrderBy("job_id ASC").
		Limit(limit).
		Offset(offset).
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list job details: %w", err)
	}
	defer rows.Close()

	jobs := []domain.JobDetail{}
	for rows.Next() {
		j, err := scanJobDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job detail: %w", err)
		}
		jobs = append(jobs, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return jobs, nil
}

func scanJobDetail(row rowScanner) (*domain.JobDetail, error) {
	var j domain.JobDetail
	if err := row.Scan(&j.JobID, &j.EmployeeNumber, &j.DepartmentID, &j.JobRole, &j.JobLevel, &j.JobInvolvement,
		&j.JobSatisfaction, &j.StandardHours, &j.BusinessTravel, &j.OverTime); err != nil {
		return nil, err
	}
	return &j, nil
}

func departmentArg(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func insertJobDetail(ctx context.Context, q queryer, dialect database.Dialect, j *domain.JobDetail) (int64, error) {
	b := dialect.Builder().
		Insert(database.TableJobDetails, jobDetailColumns[1:]...).
		Values(j.EmployeeNumber, departmentArg(j.DepartmentID), j.JobRole, j.JobLevel, j.JobInvolvement,
			j.JobSatisfaction, j.StandardHours, j.BusinessTravel, j.OverTime)

	id, err := insertReturningID(ctx, q, dialect, b, "job_id")
	if err != nil {
		return 0, writeError(fmt.Sprintf("create job detail for employee %d", j.EmployeeNumber), err)
	}
	j.JobID = id
	return id, nil
}
