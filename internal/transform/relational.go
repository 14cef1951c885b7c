package transform

import (
	"fmt"

	"github.com/locvowork/attrition_datahub/internal/dataset"
	"github.com/locvowork/attrition_datahub/internal/domain"
)

// DistinctDepartments returns every non-null department name in the dataset,
// normalised, in order of first appearance.
func DistinctDepartments(ds *dataset.Dataset) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, row := range ds.Rows {
		v, ok := row.Get(dataset.ColDepartment)
		if !ok {
			continue
		}
		name := NormalizeText(v)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// DepartmentIndex maps department names to surrogate keys. It is built once
// by the department pre-pass and never modified afterwards.
type DepartmentIndex struct {
	ids map[string]int64
}

func NewDepartmentIndex(ids map[string]int64) DepartmentIndex {
	cp := make(map[string]int64, len(ids))
	for k, v := range ids {
		cp[k] = v
	}
	return DepartmentIndex{ids: cp}
}

func (x DepartmentIndex) Lookup(name string) (int64, bool) {
	id, ok := x.ids[name]
	return id, ok
}

func (x DepartmentIndex) Len() int { return len(x.ids) }

// ToRelational splits a record into its five table payloads. A department
// missing from idx is a *domain.RowError of kind ErrReferential.
func ToRelational(rec domain.SourceRecord, idx DepartmentIndex) (domain.RelationalRecord, error) {
	deptID, ok := idx.Lookup(rec.Department)
	if !ok {
		return domain.RelationalRecord{}, &domain.RowError{
			Line:           rec.Line,
			EmployeeNumber: rec.EmployeeNumber,
			Column:         dataset.ColDepartment,
			Kind:           domain.ErrReferential,
			Err:            fmt.Errorf("department %q was not loaded", rec.Department),
		}
	}

	num := rec.EmployeeNumber
	return domain.RelationalRecord{
		Line: rec.Line,
		Employee: domain.Employee{
			EmployeeNumber:   num,
			Age:              rec.Age,
			Gender:           rec.Gender,
			MaritalStatus:    rec.MaritalStatus,
			Education:        rec.Education,
			EducationField:   rec.EducationField,
			DistanceFromHome: rec.DistanceFromHome,
			Over18:           rec.Over18,
			EmployeeCount:    rec.EmployeeCount,
			Attrition:        rec.Attrition,
		},
		JobDetail: domain.JobDetail{
			EmployeeNumber:  num,
			DepartmentID:    &deptID,
			JobRole:         rec.JobRole,
			JobLevel:        rec.JobLevel,
			JobInvolvement:  rec.JobInvolvement,
			JobSatisfaction: rec.JobSatisfaction,
			StandardHours:   rec.StandardHours,
			BusinessTravel:  rec.BusinessTravel,
			OverTime:        rec.OverTime,
		},
		Compensation: domain.Compensation{
			EmployeeNumber:    num,
			DailyRate:         rec.DailyRate,
			HourlyRate:        rec.HourlyRate,
			MonthlyIncome:     rec.MonthlyIncome,
			MonthlyRate:       rec.MonthlyRate,
			PercentSalaryHike: rec.PercentSalaryHike,
			StockOptionLevel:  rec.StockOptionLevel,
		},
		Performance: domain.PerformanceMetrics{
			EmployeeNumber:          num,
			PerformanceRating:       rec.PerformanceRating,
			YearsAtCompany:          rec.YearsAtCompany,
			YearsInCurrentRole:      rec.YearsInCurrentRole,
			YearsSinceLastPromotion: rec.YearsSinceLastPromotion,
			YearsWithCurrManager:    rec.YearsWithCurrManager,
			TotalWorkingYears:       rec.TotalWorkingYears,
			NumCompaniesWorked:      rec.NumCompaniesWorked,
			TrainingTimesLastYear:   rec.TrainingTimesLastYear,
		},
		Satisfaction: domain.SatisfactionScores{
			EmployeeNumber:           num,
			EnvironmentSatisfaction:  rec.EnvironmentSatisfaction,
			JobSatisfaction:          rec.JobSatisfaction,
			RelationshipSatisfaction: rec.RelationshipSatisfaction,
			WorkLifeBalance:          rec.WorkLifeBalance,
		},
	}, nil
}
