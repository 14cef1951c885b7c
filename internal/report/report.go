// Package report collects and renders the post-import verification report of
// each store. Verification is diagnostic: collection errors are returned as
// domain.ErrVerification together with whatever was gathered so far.
package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/locvowork/attrition_datahub/internal/domain"
)

const (
	StoreSQL      = "SQL"
	StoreDocument = "MongoDB"
)

// Report is the verification outcome of one store.
type Report struct {
	Store       string
	Counts      []domain.TableCount
	Attrition   domain.AttritionSplit
	Departments []domain.DepartmentStat

	// RiskChecked is false when the store has no risk procedure.
	RiskChecked bool
	Risk        *domain.RiskAssessment

	Sample  *domain.EmployeeDocument
	Indexes []string
}

// SQLReporter verifies the relational store.
type SQLReporter struct {
	stats  domain.SQLStatsRepository
	sample int
}

func NewSQLReporter(stats domain.SQLStatsRepository, sampleEmployee int) *SQLReporter {
	return &SQLReporter{stats: stats, sample: sampleEmployee}
}

func (r *SQLReporter) Collect(ctx context.Context) (*Report, error) {
	rep := &Report{Store: StoreSQL}
	var err error

	if rep.Counts, err = r.stats.TableCounts(ctx); err != nil {
		return rep, verificationError("table counts", err)
	}
	if rep.Attrition, err = r.stats.AttritionSplit(ctx); err != nil {
		return rep, verificationError("attrition split", err)
	}
	if rep.Departments, err = r.stats.DepartmentStats(ctx); err != nil {
		return rep, verificationError("department stats", err)
	}
	if rep.Risk, rep.RiskChecked, err = r.stats.RiskAssessment(ctx, r.sample); err != nil {
		return rep, verificationError("risk assessment", err)
	}
	return rep, nil
}

// DocumentReporter verifies the document store.
type DocumentReporter struct {
	stats  domain.DocumentStatsRepository
	sample int
}

func NewDocumentReporter(stats domain.DocumentStatsRepository, sampleEmployee int) *DocumentReporter {
	return &DocumentReporter{stats: stats, sample: sampleEmployee}
}

func (r *DocumentReporter) Collect(ctx context.Context) (*Report, error) {
	rep := &Report{Store: StoreDocument}
	var err error

	if rep.Counts, err = r.stats.CollectionCounts(ctx); err != nil {
		return rep, verificationError("collection counts", err)
	}
	if rep.Attrition, err = r.stats.AttritionSplit(ctx); err != nil {
		return rep, verificationError("attrition split", err)
	}
	if rep.Departments, err = r.stats.DepartmentStats(ctx); err != nil {
		return rep, verificationError("department stats", err)
	}
	rep.Sample, err = r.stats.SampleEmployee(ctx, r.sample)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return rep, verificationError("sample employee", err)
	}
	if rep.Indexes, err = r.stats.EmployeeIndexes(ctx); err != nil {
		return rep, verificationError("index list", err)
	}
	return rep, nil
}

func verificationError(step string, err error) error {
	if errors.Is(err, domain.ErrVerification) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrVerification, step, err)
}
