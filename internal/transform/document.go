package transform

import (
	"math"
	"time"

	"github.com/locvowork/attrition_datahub/internal/domain"
)

const attritionYes = "Yes"

// ToEmployeeDocument nests a record into the employee document shape. The
// risk fields are left null for an external scorer.
func ToEmployeeDocument(rec domain.SourceRecord, now time.Time) domain.EmployeeDocument {
	return domain.EmployeeDocument{
		EmployeeNumber: rec.EmployeeNumber,
		PersonalInfo: domain.PersonalInfo{
			Age:           rec.Age,
			Gender:        rec.Gender,
			MaritalStatus: rec.MaritalStatus,
			Education: domain.EducationInfo{
				Level: rec.Education,
				Field: rec.EducationField,
			},
			DistanceFromHome: rec.DistanceFromHome,
			Over18:           rec.Over18,
		},
		JobInfo: domain.JobInfo{
			Department:     rec.Department,
			Role:           rec.JobRole,
			Level:          rec.JobLevel,
			Involvement:    rec.JobInvolvement,
			Satisfaction:   rec.JobSatisfaction,
			StandardHours:  rec.StandardHours,
			BusinessTravel: rec.BusinessTravel,
			Overtime:       rec.OverTime,
		},
		Compensation: domain.CompensationInfo{
			DailyRate:         rec.DailyRate,
			HourlyRate:        rec.HourlyRate,
			MonthlyIncome:     rec.MonthlyIncome,
			MonthlyRate:       rec.MonthlyRate,
			PercentSalaryHike: rec.PercentSalaryHike,
			StockOptionLevel:  rec.StockOptionLevel,
		},
		Performance: domain.PerformanceInfo{
			Rating:                  rec.PerformanceRating,
			YearsAtCompany:          rec.YearsAtCompany,
			YearsInCurrentRole:      rec.YearsInCurrentRole,
			YearsSinceLastPromotion: rec.YearsSinceLastPromotion,
			YearsWithCurrentManager: rec.YearsWithCurrManager,
			TotalWorkingYears:       rec.TotalWorkingYears,
			NumCompaniesWorked:      rec.NumCompaniesWorked,
			TrainingTimesLastYear:   rec.TrainingTimesLastYear,
		},
		SatisfactionScores: domain.SatisfactionInfo{
			Environment:     rec.EnvironmentSatisfaction,
			Job:             rec.JobSatisfaction,
			Relationship:    rec.RelationshipSatisfaction,
			WorkLifeBalance: rec.WorkLifeBalance,
		},
		AttritionInfo: domain.AttritionInfo{
			Status: rec.Attrition,
		},
		Metadata: domain.DocumentMetadata{
			CreatedAt:     now,
			UpdatedAt:     now,
			EmployeeCount: rec.EmployeeCount,
			DataSource:    domain.DataSourceInitialImport,
		},
	}
}

type deptAccumulator struct {
	count        int
	attrition    int
	job          int
	environment  int
	relationship int
	workLife     int
	income       int
}

// AggregateDepartments groups records by department, in order of first
// appearance, and stamps each snapshot with now. The attrition rate is
// rounded to 3 decimals and the averages to 2.
func AggregateDepartments(records []domain.SourceRecord, now time.Time) []domain.DepartmentSnapshot {
	acc := make(map[string]*deptAccumulator)
	var order []string
	for _, rec := range records {
		a, ok := acc[rec.Department]
		if !ok {
			a = &deptAccumulator{}
			acc[rec.Department] = a
			order = append(order, rec.Department)
		}
		a.count++
		if rec.Attrition == attritionYes {
			a.attrition++
		}
		a.job += rec.JobSatisfaction
		a.environment += rec.EnvironmentSatisfaction
		a.relationship += rec.RelationshipSatisfaction
		a.workLife += rec.WorkLifeBalance
		a.income += rec.MonthlyIncome
	}

	out := make([]domain.DepartmentSnapshot, 0, len(order))
	for _, name := range order {
		a := acc[name]
		out = append(out, domain.DepartmentSnapshot{
			DepartmentName:   name,
			EmployeeCount:    a.count,
			AttritionCount:   a.attrition,
			AvgAttritionRate: round(ratio(a.attrition, a.count), 3),
			AvgSatisfaction: domain.SatisfactionAverage{
				Job:             round(ratio(a.job, a.count), 2),
				Environment:     round(ratio(a.environment, a.count), 2),
				Relationship:    round(ratio(a.relationship, a.count), 2),
				WorkLifeBalance: round(ratio(a.workLife, a.count), 2),
			},
			AvgMonthlyIncome: round(ratio(a.income, a.count), 2),
			LastUpdated:      now,
		})
	}
	return out
}

func ratio(sum, count int) float64 {
	if count == 0 {
		return 0
	}
	return float64(sum) / float64(count)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
