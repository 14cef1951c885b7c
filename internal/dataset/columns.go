package dataset

// Column names as they appear in the source header (case-sensitive).
const (
	ColEmployeeNumber           = "EmployeeNumber"
	ColAge                      = "Age"
	ColGender                   = "Gender"
	ColMaritalStatus            = "MaritalStatus"
	ColEducation                = "Education"
	ColEducationField           = "EducationField"
	ColDistanceFromHome         = "DistanceFromHome"
	ColOver18                   = "Over18"
	ColEmployeeCount            = "EmployeeCount"
	ColAttrition                = "Attrition"
	ColDepartment               = "Department"
	ColJobRole                  = "JobRole"
	ColJobLevel                 = "JobLevel"
	ColJobInvolvement           = "JobInvolvement"
	ColJobSatisfaction          = "JobSatisfaction"
	ColStandardHours            = "StandardHours"
	ColBusinessTravel           = "BusinessTravel"
	ColOverTime                 = "OverTime"
	ColDailyRate                = "DailyRate"
	ColHourlyRate               = "HourlyRate"
	ColMonthlyIncome            = "MonthlyIncome"
	ColMonthlyRate              = "MonthlyRate"
	ColPercentSalaryHike        = "PercentSalaryHike"
	ColStockOptionLevel         = "StockOptionLevel"
	ColPerformanceRating        = "PerformanceRating"
	ColYearsAtCompany           = "YearsAtCompany"
	ColYearsInCurrentRole       = "YearsInCurrentRole"
	ColYearsSinceLastPromotion  = "YearsSinceLastPromotion"
	ColYearsWithCurrManager     = "YearsWithCurrManager"
	ColTotalWorkingYears        = "TotalWorkingYears"
	ColNumCompaniesWorked       = "NumCompaniesWorked"
	ColTrainingTimesLastYear    = "TrainingTimesLastYear"
	ColEnvironmentSatisfaction  = "EnvironmentSatisfaction"
	ColRelationshipSatisfaction = "RelationshipSatisfaction"
	ColWorkLifeBalance          = "WorkLifeBalance"
)

// RequiredColumns must all be present in the header.
var RequiredColumns = []string{
	ColEmployeeNumber, ColAge, ColGender, ColMaritalStatus, ColEducation,
	ColEducationField, ColDistanceFromHome, ColOver18, ColEmployeeCount, ColAttrition,
	ColDepartment, ColJobRole, ColJobLevel, ColJobInvolvement, ColJobSatisfaction,
	ColStandardHours, ColBusinessTravel, ColOverTime,
	ColDailyRate, ColHourlyRate, ColMonthlyIncome, ColMonthlyRate, ColPercentSalaryHike, ColStockOptionLevel,
	ColPerformanceRating, ColYearsAtCompany, ColYearsInCurrentRole, ColYearsSinceLastPromotion,
	ColYearsWithCurrManager, ColTotalWorkingYears, ColNumCompaniesWorked, ColTrainingTimesLastYear,
	ColEnvironmentSatisfaction, ColRelationshipSatisfaction, ColWorkLifeBalance,
}

// ZeroDefaultColumns may be null in a row; Validate replaces null with "0".
var ZeroDefaultColumns = []string{
	ColNumCompaniesWorked,
	ColYearsInCurrentRole,
	ColYearsSinceLastPromotion,
	ColYearsWithCurrManager,
	ColTrainingTimesLastYear,
}
