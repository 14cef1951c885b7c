package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Render writes rep as a human-readable text report.
func Render(w io.Writer, rep *Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "=== %s verification ===\n", rep.Store)

	fmt.Fprintln(tw, "\nRecord counts:")
	for _, c := range rep.Counts {
		fmt.Fprintf(tw, "  %s\t%d\n", c.Name, c.Count)
	}

	fmt.Fprintf(tw, "\nAttrition: Yes %d, No %d\n", rep.Attrition.Yes, rep.Attrition.No)

	if len(rep.Departments) > 0 {
		fmt.Fprintln(tw, "\nDepartment statistics:")
		fmt.Fprintln(tw, "  Department\tEmployees\tAttrition\tRate\tAvg income\tAvg job satisfaction")
		for _, d := range rep.Departments {
			fmt.Fprintf(tw, "  %s\t%d\t%d\t%.1f%%\t%.2f\t%.2f\n",
				d.Department, d.Employees, d.AttritionCount, d.AttritionRate(), d.AvgIncome, d.AvgJobSatisfaction)
		}
	}

	switch {
	case rep.Risk != nil:
		fmt.Fprintf(tw, "\nRisk assessment for employee %d: score %.2f (%s)",
			rep.Risk.EmployeeNumber, rep.Risk.RiskScore, rep.Risk.RiskLevel)
		if rep.Risk.Factors != "" {
			fmt.Fprintf(tw, ", factors: %s", rep.Risk.Factors)
		}
		fmt.Fprintln(tw)
	case rep.RiskChecked:
		fmt.Fprintln(tw, "\nRisk assessment: no result")
	case rep.Store == StoreSQL:
		fmt.Fprintln(tw, "\nRisk assessment: not available")
	}

	if s := rep.Sample; s != nil {
		risk := "null"
		if s.AttritionInfo.RiskScore != nil {
			risk = fmt.Sprintf("%.2f", *s.AttritionInfo.RiskScore)
		}
		fmt.Fprintf(tw, "\nSample employee %d: age %d, %s / %s, income %d, attrition %s, risk score %s\n",
			s.EmployeeNumber, s.PersonalInfo.Age, s.JobInfo.Department, s.JobInfo.Role,
			s.Compensation.MonthlyIncome, s.AttritionInfo.Status, risk)
	}

	if len(rep.Indexes) > 0 {
		fmt.Fprintf(tw, "\nIndexes on employees: %s\n", strings.Join(rep.Indexes, ", "))
	}

	return tw.Flush()
}
