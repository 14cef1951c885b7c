package transform

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"

	"github.com/locvowork/attrition_datahub/internal/dataset"
	"github.com/locvowork/attrition_datahub/internal/domain"
)

var validate = validator.New()

// Decode coerces one dataset row into a SourceRecord. Any null, non-numeric
// or out-of-range value yields a *domain.RowError of kind ErrRowTransform.
func Decode(row dataset.Row) (domain.SourceRecord, error) {
	d := decoder{row: row}
	rec := domain.SourceRecord{
		Line: row.Line,

		EmployeeNumber:   d.int(dataset.ColEmployeeNumber),
		Age:              d.int(dataset.ColAge),
		Gender:           d.text(dataset.ColGender),
		MaritalStatus:    d.text(dataset.ColMaritalStatus),
		Education:        d.int(dataset.ColEducation),
		EducationField:   d.text(dataset.ColEducationField),
		DistanceFromHome: d.int(dataset.ColDistanceFromHome),
		Over18:           d.text(dataset.ColOver18),
		EmployeeCount:    d.int(dataset.ColEmployeeCount),
		Attrition:        d.text(dataset.ColAttrition),

		Department:      d.text(dataset.ColDepartment),
		JobRole:         d.text(dataset.ColJobRole),
		JobLevel:        d.int(dataset.ColJobLevel),
		JobInvolvement:  d.int(dataset.ColJobInvolvement),
		JobSatisfaction: d.int(dataset.ColJobSatisfaction),
		StandardHours:   d.int(dataset.ColStandardHours),
		BusinessTravel:  d.text(dataset.ColBusinessTravel),
		OverTime:        d.text(dataset.ColOverTime),

		DailyRate:         d.int(dataset.ColDailyRate),
		HourlyRate:        d.int(dataset.ColHourlyRate),
		MonthlyIncome:     d.int(dataset.ColMonthlyIncome),
		MonthlyRate:       d.int(dataset.ColMonthlyRate),
		PercentSalaryHike: d.int(dataset.ColPercentSalaryHike),
		StockOptionLevel:  d.int(dataset.ColStockOptionLevel),

		PerformanceRating:       d.int(dataset.ColPerformanceRating),
		YearsAtCompany:          d.int(dataset.ColYearsAtCompany),
		YearsInCurrentRole:      d.int(dataset.ColYearsInCurrentRole),
		YearsSinceLastPromotion: d.int(dataset.ColYearsSinceLastPromotion),
		YearsWithCurrManager:    d.int(dataset.ColYearsWithCurrManager),
		TotalWorkingYears:       d.int(dataset.ColTotalWorkingYears),
		NumCompaniesWorked:      d.int(dataset.ColNumCompaniesWorked),
		TrainingTimesLastYear:   d.int(dataset.ColTrainingTimesLastYear),

		EnvironmentSatisfaction:  d.int(dataset.ColEnvironmentSatisfaction),
		RelationshipSatisfaction: d.int(dataset.ColRelationshipSatisfaction),
		WorkLifeBalance:          d.int(dataset.ColWorkLifeBalance),
	}
	if d.err != nil {
		d.err.EmployeeNumber = rec.EmployeeNumber
		return rec, d.err
	}

	if err := validate.Struct(rec); err != nil {
		rowErr := &domain.RowError{Line: row.Line, EmployeeNumber: rec.EmployeeNumber, Kind: domain.ErrRowTransform, Err: err}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			rowErr.Column = verrs[0].Field()
			rowErr.Err = fmt.Errorf("failed %q check with value %v", verrs[0].Tag(), verrs[0].Value())
		}
		return rec, rowErr
	}
	return rec, nil
}

// decoder keeps the first coercion error of a row.
type decoder struct {
	row dataset.Row
	err *domain.RowError
}

func (d *decoder) fail(col string, err error) {
	if d.err == nil {
		d.err = &domain.RowError{Line: d.row.Line, Column: col, Kind: domain.ErrRowTransform, Err: err}
	}
}

func (d *decoder) text(col string) string {
	v, ok := d.row.Get(col)
	if !ok {
		d.fail(col, errors.New("value is null"))
		return ""
	}
	return NormalizeText(v)
}

func (d *decoder) int(col string) int {
	v, ok := d.row.Get(col)
	if !ok {
		d.fail(col, errors.New("value is null"))
		return 0
	}
	n, err := ParseInt(v)
	if err != nil {
		d.fail(col, err)
		return 0
	}
	return n
}

// ParseInt accepts plain integers and integral floats such as "3.0",
// which spreadsheet exports commonly produce.
func ParseInt(v string) (int, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not an integer", v)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not an integer", v)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%q is out of range", v)
	}
	return int(f), nil
}

// NormalizeText trims and NFC-normalises a categorical value so that the same
// department or role spelled with different Unicode forms compares equal.
func NormalizeText(v string) string {
	return norm.NFC.String(strings.TrimSpace(v))
}
