package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ==================== SOURCE ====================

// SourceRecord is one dataset row after type coercion. Attrition must be
// Yes or No and numeric fields may not be negative; rows breaking either
// rule are rejected rather than stored.
type SourceRecord struct {
	Line int `validate:"-"`

	EmployeeNumber   int    `validate:"gt=0"`
	Age              int    `validate:"gt=0"`
	Gender           string `validate:"required"`
	MaritalStatus    string `validate:"required"`
	Education        int    `validate:"gte=0"`
	EducationField   string `validate:"required"`
	DistanceFromHome int    `validate:"gte=0"`
	Over18           string `validate:"required"`
	EmployeeCount    int    `validate:"gte=0"`
	Attrition        string `validate:"required,oneof=Yes No"`

	Department      string `validate:"required"`
	JobRole         string `validate:"required"`
	JobLevel        int    `validate:"gte=0"`
	JobInvolvement  int    `validate:"gte=0"`
	JobSatisfaction int    `validate:"gte=0"`
	StandardHours   int    `validate:"gte=0"`
	BusinessTravel  string `validate:"required"`
	OverTime        string `validate:"required"`

	DailyRate         int `validate:"gte=0"`
	HourlyRate        int `validate:"gte=0"`
	MonthlyIncome     int `validate:"gte=0"`
	MonthlyRate       int `validate:"gte=0"`
	PercentSalaryHike int `validate:"gte=0"`
	StockOptionLevel  int `validate:"gte=0"`

	PerformanceRating       int `validate:"gte=0"`
	YearsAtCompany          int `validate:"gte=0"`
	YearsInCurrentRole      int `validate:"gte=0"`
	YearsSinceLastPromotion int `validate:"gte=0"`
	YearsWithCurrManager    int `validate:"gte=0"`
	TotalWorkingYears       int `validate:"gte=0"`
	NumCompaniesWorked      int `validate:"gte=0"`
	TrainingTimesLastYear   int `validate:"gte=0"`

	EnvironmentSatisfaction  int `validate:"gte=0"`
	RelationshipSatisfaction int `validate:"gte=0"`
	WorkLifeBalance          int `validate:"gte=0"`
}

// ==================== RELATIONAL ====================

// Department represents the departments table
type Department struct {
	DepartmentID   int64  `json:"department_id" db:"department_id"`
	DepartmentName string `json:"department_name" db:"department_name" validate:"required,max=100"`
}

// Employee represents the employees table (identity and demographics only)
type Employee struct {
	EmployeeNumber   int    `json:"employee_number" db:"employee_number"`
	Age              int    `json:"age" db:"age" validate:"gt=0"`
	Gender           string `json:"gender" db:"gender" validate:"required,max=10"`
	MaritalStatus    string `json:"marital_status" db:"marital_status" validate:"required,max=20"`
	Education        int    `json:"education" db:"education" validate:"gte=0"`
	EducationField   string `json:"education_field" db:"education_field" validate:"required,max=50"`
	DistanceFromHome int    `json:"distance_from_home" db:"distance_from_home" validate:"gte=0"`
	Over18           string `json:"over_18" db:"over_18" validate:"required,max=1"`
	EmployeeCount    int    `json:"employee_count" db:"employee_count" validate:"gte=0"`
	Attrition        string `json:"attrition" db:"attrition" validate:"required,oneof=Yes No"`
}

// JobDetail represents the job_details table
type JobDetail struct {
	JobID           int64  `json:"job_id" db:"job_id"`
	EmployeeNumber  int    `json:"employee_number" db:"employee_number" validate:"gt=0"`
	DepartmentID    *int64 `json:"department_id" db:"department_id"`
	JobRole         string `json:"job_role" db:"job_role" validate:"required,max=100"`
	JobLevel        int    `json:"job_level" db:"job_level" validate:"gte=0"`
	JobInvolvement  int    `json:"job_involvement" db:"job_involvement" validate:"gte=0"`
	JobSatisfaction int    `json:"job_satisfaction" db:"job_satisfaction" validate:"gte=0"`
	StandardHours   int    `json:"standard_hours" db:"standard_hours" validate:"gte=0"`
	BusinessTravel  string `json:"business_travel" db:"business_travel"`
	OverTime        string `json:"overtime" db:"overtime"`
}

// Compensation represents the compensation table
type Compensation struct {
	EmployeeNumber    int `json:"employee_number" db:"employee_number"`
	DailyRate         int `json:"daily_rate" db:"daily_rate"`
	HourlyRate        int `json:"hourly_rate" db:"hourly_rate"`
	MonthlyIncome     int `json:"monthly_income" db:"monthly_income"`
	MonthlyRate       int `json:"monthly_rate" db:"monthly_rate"`
	PercentSalaryHike int `json:"percent_salary_hike" db:"percent_salary_hike"`
	StockOptionLevel  int `json:"stock_option_level" db:"stock_option_level"`
}

// PerformanceMetrics represents the performance_metrics table
type PerformanceMetrics struct {
	EmployeeNumber          int `json:"employee_number" db:"employee_number"`
	PerformanceRating       int `json:"performance_rating" db:"performance_rating"`
	YearsAtCompany          int `json:"years_at_company" db:"years_at_company"`
	YearsInCurrentRole      int `json:"years_in_current_role" db:"years_in_current_role"`
	YearsSinceLastPromotion int `json:"years_since_last_promotion" db:"years_since_last_promotion"`
	YearsWithCurrManager    int `json:"years_with_curr_manager" db:"years_with_curr_manager"`
	TotalWorkingYears       int `json:"total_working_years" db:"total_working_years"`
	NumCompaniesWorked      int `json:"num_companies_worked" db:"num_companies_worked"`
	TrainingTimesLastYear   int `json:"training_times_last_year" db:"training_times_last_year"`
}

// SatisfactionScores represents the satisfaction_scores table
type SatisfactionScores struct {
	EmployeeNumber           int `json:"employee_number" db:"employee_number"`
	EnvironmentSatisfaction  int `json:"environment_satisfaction" db:"environment_satisfaction"`
	JobSatisfaction          int `json:"job_satisfaction" db:"job_satisfaction"`
	RelationshipSatisfaction int `json:"relationship_satisfaction" db:"relationship_satisfaction"`
	WorkLifeBalance          int `json:"work_life_balance" db:"work_life_balance"`
}

// RelationalRecord is the five-table payload one source row turns into.
// Every satellite carries the same EmployeeNumber as Employee.
type RelationalRecord struct {
	Line         int
	Employee     Employee
	JobDetail    JobDetail
	Compensation Compensation
	Performance  PerformanceMetrics
	Satisfaction SatisfactionScores
}

// EmployeeView is an employee row joined with its department and job summary.
type EmployeeView struct {
	Employee
	DepartmentName  *string `json:"department_name"`
	JobSatisfaction *int    `json:"job_satisfaction"`
}

// ==================== DOCUMENT ====================

// DataSourceInitialImport tags documents written by the import run.
const DataSourceInitialImport = "initial_import"

// DataSourceAPI tags documents created through the HTTP API.
const DataSourceAPI = "api"

// EmployeeDocument is the denormalised employee stored in the employees collection.
type EmployeeDocument struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	EmployeeNumber     int                `bson:"employee_number" json:"employee_number" validate:"gte=0"`
	PersonalInfo       PersonalInfo       `bson:"personal_info" json:"personal_info"`
	JobInfo            JobInfo            `bson:"job_info" json:"job_info"`
	Compensation       CompensationInfo   `bson:"compensation" json:"compensation"`
	Performance        PerformanceInfo    `bson:"performance" json:"performance"`
	SatisfactionScores SatisfactionInfo   `bson:"satisfaction_scores" json:"satisfaction_scores"`
	AttritionInfo      AttritionInfo      `bson:"attrition_info" json:"attrition_info"`
	Metadata           DocumentMetadata   `bson:"metadata" json:"metadata"`
}

type PersonalInfo struct {
	Age              int           `bson:"age" json:"age" validate:"gt=0"`
	Gender           string        `bson:"gender" json:"gender" validate:"required"`
	MaritalStatus    string        `bson:"marital_status" json:"marital_status"`
	Education        EducationInfo `bson:"education" json:"education"`
	DistanceFromHome int           `bson:"distance_from_home" json:"distance_from_home"`
	Over18           string        `bson:"over_18" json:"over_18"`
}

type EducationInfo struct {
	Level int    `bson:"level" json:"level"`
	Field string `bson:"field" json:"field"`
}

type JobInfo struct {
	Department     string `bson:"department" json:"department" validate:"required"`
	Role           string `bson:"role" json:"role" validate:"required"`
	Level          int    `bson:"level" json:"level"`
	Involvement    int    `bson:"involvement" json:"involvement"`
	Satisfaction   int    `bson:"satisfaction" json:"satisfaction"`
	StandardHours  int    `bson:"standard_hours" json:"standard_hours"`
	BusinessTravel string `bson:"business_travel" json:"business_travel"`
	Overtime       string `bson:"overtime" json:"overtime"`
}

type CompensationInfo struct {
	DailyRate         int `bson:"daily_rate" json:"daily_rate"`
	HourlyRate        int `bson:"hourly_rate" json:"hourly_rate"`
	MonthlyIncome     int `bson:"monthly_income" json:"monthly_income"`
	MonthlyRate       int `bson:"monthly_rate" json:"monthly_rate"`
	PercentSalaryHike int `bson:"percent_salary_hike" json:"percent_salary_hike"`
	StockOptionLevel  int `bson:"stock_option_level" json:"stock_option_level"`
}

type PerformanceInfo struct {
	Rating                  int `bson:"rating" json:"rating"`
	YearsAtCompany          int `bson:"years_at_company" json:"years_at_company"`
	YearsInCurrentRole      int `bson:"years_in_current_role" json:"years_in_current_role"`
	YearsSinceLastPromotion int `bson:"years_since_last_promotion" json:"years_since_last_promotion"`
	YearsWithCurrentManager int `bson:"years_with_current_manager" json:"years_with_current_manager"`
	TotalWorkingYears       int `bson:"total_working_years" json:"total_working_years"`
	NumCompaniesWorked      int `bson:"num_companies_worked" json:"num_companies_worked"`
	TrainingTimesLastYear   int `bson:"training_times_last_year" json:"training_times_last_year"`
}

type SatisfactionInfo struct {
	Environment     int `bson:"environment" json:"environment"`
	Job             int `bson:"job" json:"job"`
	Relationship    int `bson:"relationship" json:"relationship"`
	WorkLifeBalance int `bson:"work_life_balance" json:"work_life_balance"`
}

// AttritionInfo holds the observed status plus fields reserved for an
// external scorer. RiskScore and LastRiskAssessment stay null until scored.
type AttritionInfo struct {
	Status             string     `bson:"status" json:"status" validate:"required,oneof=Yes No"`
	RiskScore          *float64   `bson:"risk_score" json:"risk_score" validate:"omitempty,gte=0,lte=1"`
	LastRiskAssessment *time.Time `bson:"last_risk_assessment" json:"last_risk_assessment"`
}

type DocumentMetadata struct {
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
	EmployeeCount int       `bson:"employee_count" json:"employee_count"`
	DataSource    string    `bson:"data_source" json:"data_source"`
}

// DepartmentSnapshot is the precomputed per-department aggregate document.
type DepartmentSnapshot struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	DepartmentName   string              `bson:"department_name" json:"department_name" validate:"required"`
	EmployeeCount    int                 `bson:"employee_count" json:"employee_count" validate:"gte=0"`
	AttritionCount   int                 `bson:"attrition_count" json:"attrition_count" validate:"gte=0"`
	AvgAttritionRate float64             `bson:"avg_attrition_rate" json:"avg_attrition_rate" validate:"gte=0,lte=1"`
	AvgSatisfaction  SatisfactionAverage `bson:"avg_satisfaction" json:"avg_satisfaction"`
	AvgMonthlyIncome float64             `bson:"avg_monthly_income" json:"avg_monthly_income" validate:"gte=0"`
	LastUpdated      time.Time           `bson:"last_updated" json:"last_updated"`
}

type SatisfactionAverage struct {
	Job             float64 `bson:"job" json:"job"`
	Environment     float64 `bson:"environment" json:"environment"`
	Relationship    float64 `bson:"relationship" json:"relationship"`
	WorkLifeBalance float64 `bson:"work_life_balance" json:"work_life_balance"`
}

// Prediction is a scorer output. EmployeeNumber is a soft reference: it is
// never checked against the employees collection.
type Prediction struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	EmployeeNumber int                `bson:"employee_number" json:"employee_number" validate:"gt=0"`
	RiskScore      float64            `bson:"risk_score" json:"risk_score" validate:"gte=0,lte=1"`
	RiskLevel      string             `bson:"risk_level" json:"risk_level" validate:"required"`
	Factors        []string           `bson:"factors" json:"factors"`
	PredictionDate time.Time          `bson:"prediction_date" json:"prediction_date"`
}

// ==================== VERIFICATION ====================

// TableCount is the row/document count of one table or collection.
type TableCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// DepartmentStat is one grouped-by-department verification line.
type DepartmentStat struct {
	Department         string  `json:"department"`
	Employees          int64   `json:"employees"`
	AttritionCount     int64   `json:"attrition_count"`
	AvgIncome          float64 `json:"avg_income"`
	AvgJobSatisfaction float64 `json:"avg_job_satisfaction"`
}

// AttritionRate is attrition_count/employees as a percentage.
func (s DepartmentStat) AttritionRate() float64 {
	if s.Employees == 0 {
		return 0
	}
	return float64(s.AttritionCount) / float64(s.Employees) * 100
}

// AttritionSplit counts attrition-positive and attrition-negative employees.
type AttritionSplit struct {
	Yes int64 `json:"yes"`
	No  int64 `json:"no"`
}

// RiskAssessment is the row returned by the stored risk procedure.
type RiskAssessment struct {
	EmployeeNumber int     `json:"employee_number"`
	RiskScore      float64 `json:"risk_score"`
	RiskLevel      string  `json:"risk_level"`
	Factors        string  `json:"factors"`
}
