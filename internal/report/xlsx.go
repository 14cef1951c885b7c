package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/locvowork/attrition_datahub/internal/domain"
)

// DepartmentSheet is one worksheet of the department statistics workbook.
type DepartmentSheet struct {
	Name  string
	Stats []domain.DepartmentStat
}

var departmentHeaders = []struct {
	title string
	width float64
}{
	{"Department", 28},
	{"Employees", 12},
	{"Attrition", 12},
	{"Attrition Rate", 15},
	{"Avg Monthly Income", 20},
	{"Avg Job Satisfaction", 22},
}

// WriteDepartmentWorkbook writes one sheet per entry to w as an XLSX file.
func WriteDepartmentWorkbook(w io.Writer, sheets ...DepartmentSheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	rateFmt := "0.0%"
	rateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &rateFmt})
	if err != nil {
		return fmt.Errorf("failed to create rate style: %w", err)
	}
	decimalStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("failed to create number style: %w", err)
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", sheet.Name, err)
		}
		if err := writeDepartmentSheet(f, sheet, headerStyle, rateStyle, decimalStyle); err != nil {
			return fmt.Errorf("failed to write sheet %s: %w", sheet.Name, err)
		}
	}

	return f.Write(w)
}

func writeDepartmentSheet(f *excelize.File, sheet DepartmentSheet, headerStyle, rateStyle, decimalStyle int) error {
	for i, h := range departmentHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet.Name, cell, h.title); err != nil {
			return err
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet.Name, col, col, h.width); err != nil {
			return err
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(departmentHeaders))
	if err := f.SetCellStyle(sheet.Name, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	for r, d := range sheet.Stats {
		row := r + 2
		values := []interface{}{
			d.Department,
			d.Employees,
			d.AttritionCount,
			d.AttritionRate() / 100,
			d.AvgIncome,
			d.AvgJobSatisfaction,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			if err := f.SetCellValue(sheet.Name, cell, v); err != nil {
				return err
			}
		}
		if err := f.SetCellStyle(sheet.Name, fmt.Sprintf("D%d", row), fmt.Sprintf("D%d", row), rateStyle); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet.Name, fmt.Sprintf("E%d", row), fmt.Sprintf("F%d", row), decimalStyle); err != nil {
			return err
		}
	}

	if len(sheet.Stats) > 0 {
		filterRange := fmt.Sprintf("A1:%s%d", lastCol, len(sheet.Stats)+1)
		if err := f.AutoFilter(sheet.Name, filterRange, nil); err != nil {
			return err
		}
	}
	return f.SetPanes(sheet.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
