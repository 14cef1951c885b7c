package importer

import (
	"context"
	"fmt"

	"github.com/locvowork/attrition_datahub/internal/domain"
	"github.com/locvowork/attrition_datahub/internal/report"
)

// Verifier collects the post-import statistics of one store.
type Verifier interface {
	Collect(ctx context.Context) (*report.Report, error)
}

// Verify collects the report for a completed run and moves it to
// StateVerified. A partial report still counts as verified; its error is
// returned alongside. Aborted runs are never verified.
func Verify(ctx context.Context, s *Summary, v Verifier) (*report.Report, error) {
	if s.Aborted() {
		return nil, fmt.Errorf("%w: run %s aborted", domain.ErrVerification, s.RunID)
	}
	rep, err := v.Collect(ctx)
	if rep != nil {
		s.State = StateVerified
	}
	return rep, err
}
