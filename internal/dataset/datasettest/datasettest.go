// Package datasettest builds small in-memory datasets for tests.
package datasettest

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/locvowork/attrition_datahub/internal/dataset"
)

// Values returns a complete, valid set of cells for one employee. Overrides
// replace individual cells; an override of "" makes the cell null.
func Values(employeeNumber int, overrides map[string]string) map[string]string {
	v := map[string]string{
		dataset.ColEmployeeNumber:           strconv.Itoa(employeeNumber),
		dataset.ColAge:                      "41",
		dataset.ColGender:                   "Female",
		dataset.ColMaritalStatus:            "Single",
		dataset.ColEducation:                "2",
		dataset.ColEducationField:           "Life Sciences",
		dataset.ColDistanceFromHome:         "1",
		dataset.ColOver18:                   "Y",
		dataset.ColEmployeeCount:            "1",
		dataset.ColAttrition:                "No",
		dataset.ColDepartment:               "Sales",
		dataset.ColJobRole:                  "Sales Executive",
		dataset.ColJobLevel:                 "2",
		dataset.ColJobInvolvement:           "3",
		dataset.ColJobSatisfaction:          "4",
		dataset.ColStandardHours:            "80",
		dataset.ColBusinessTravel:           "Travel_Rarely",
		dataset.ColOverTime:                 "Yes",
		dataset.ColDailyRate:                "1102",
		dataset.ColHourlyRate:               "94",
		dataset.ColMonthlyIncome:            "5993",
		dataset.ColMonthlyRate:              "19479",
		dataset.ColPercentSalaryHike:        "11",
		dataset.ColStockOptionLevel:         "0",
		dataset.ColPerformanceRating:        "3",
		dataset.ColYearsAtCompany:           "6",
		dataset.ColYearsInCurrentRole:       "4",
		dataset.ColYearsSinceLastPromotion:  "0",
		dataset.ColYearsWithCurrManager:     "5",
		dataset.ColTotalWorkingYears:        "8",
		dataset.ColNumCompaniesWorked:       "8",
		dataset.ColTrainingTimesLastYear:    "0",
		dataset.ColEnvironmentSatisfaction:  "2",
		dataset.ColRelationshipSatisfaction: "1",
		dataset.ColWorkLifeBalance:          "1",
	}
	for k, val := range overrides {
		v[k] = val
	}
	return v
}

// Build assembles a validated dataset whose rows start at line 2.
func Build(rows ...map[string]string) *dataset.Dataset {
	ds := &dataset.Dataset{Source: "test", Header: append([]string(nil), dataset.RequiredColumns...)}
	for i, r := range rows {
		ds.Rows = append(ds.Rows, dataset.NewRow(i+2, r))
	}
	if err := dataset.Validate(ds); err != nil {
		panic(err)
	}
	return ds
}

// CSV renders rows as CSV bytes with the required columns as header.
func CSV(rows ...map[string]string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(dataset.RequiredColumns)
	for _, r := range rows {
		record := make([]string, len(dataset.RequiredColumns))
		for i, col := range dataset.RequiredColumns {
			record[i] = r[col]
		}
		_ = w.Write(record)
	}
	w.Flush()
	return buf.Bytes()
}
