package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/locvowork/attrition_datahub/internal/database"
	"github.com/locvowork/attrition_datahub/internal/domain"
	"github.com/locvowork/attrition_datahub/internal/logger"
	"github.com/locvowork/attrition_datahub/internal/report"
)

// ReportService exports the department statistics of whichever stores are
// configured. A nil repository skips that store.
type ReportService struct {
	sqlStats domain.SQLStatsRepository
	docStats domain.DocumentStatsRepository
}

func NewReportService(sqlStats domain.SQLStatsRepository, docStats domain.DocumentStatsRepository) *ReportService {
	return &ReportService{sqlStats: sqlStats, docStats: docStats}
}

// WriteDepartmentWorkbook writes one sheet per configured store to w.
func (s *ReportService) WriteDepartmentWorkbook(ctx context.Context, w io.Writer) error {
	var sheets []report.DepartmentSheet
	if s.sqlStats != nil {
		stats, err := s.sqlStats.DepartmentStats(ctx)
		if err != nil {
			return fmt.Errorf("failed to read SQL department stats: %w", err)
		}
		sheets = append(sheets, report.DepartmentSheet{Name: report.StoreSQL, Stats: stats})
	}
	if s.docStats != nil {
		stats, err := s.docStats.DepartmentStats(ctx)
		if err != nil {
			return fmt.Errorf("failed to read MongoDB department stats: %w", err)
		}
		sheets = append(sheets, report.DepartmentSheet{Name: report.StoreDocument, Stats: stats})
	}
	if len(sheets) == 0 {
		return fmt.Errorf("%w: no store configured", domain.ErrNotFound)
	}
	logger.DebugLog(ctx, "Exporting department workbook with %d sheets", len(sheets))
	return report.WriteDepartmentWorkbook(w, sheets...)
}

// EmployeeSearcher is the read side of the search mirror.
type EmployeeSearcher interface {
	SearchEmployees(ctx context.Context, text string, size int) ([]database.EmployeeSearchDoc, error)
}

type SearchService struct {
	searcher EmployeeSearcher
}

func NewSearchService(searcher EmployeeSearcher) *SearchService {
	return &SearchService{searcher: searcher}
}

func (s *SearchService) Search(ctx context.Context, text string, size int) ([]database.EmployeeSearchDoc, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: search text is required", domain.ErrInvalidInput)
	}
	if size > 100 {
		size = 100
	}
	return s.searcher.SearchEmployees(ctx, text, size)
}
