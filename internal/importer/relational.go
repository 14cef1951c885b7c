package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/locvowork/attrition_datahub/internal/dataset"
	"github.com/locvowork/attrition_datahub/internal/domain"
	"github.com/locvowork/attrition_datahub/internal/logger"
	"github.com/locvowork/attrition_datahub/internal/transform"
)

const DefaultBatchSize = 100

// Options configures an engine run.
type Options struct {
	// Confirmer gates the clean step; nil never cleans.
	Confirmer Confirmer
	BatchSize int
}

func (o Options) batchSize() int {
	if o.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return o.BatchSize
}

func (o Options) confirm(ctx context.Context, question string) (bool, error) {
	if o.Confirmer == nil {
		return false, nil
	}
	return o.Confirmer.Confirm(ctx, question)
}

// RelationalEngine imports a validated dataset into the SQL store: optional
// clean, department pre-pass, then per-row inserts committed in batches.
type RelationalEngine struct {
	store domain.RelationalStore
	opts  Options
	now   func() time.Time
}

func NewRelationalEngine(store domain.RelationalStore, opts Options) *RelationalEngine {
	return &RelationalEngine{store: store, opts: opts, now: time.Now}
}

// Run imports ds. The returned summary is always non-nil; its Err is set when
// the run aborted on a fatal error.
func (e *RelationalEngine) Run(ctx context.Context, ds *dataset.Dataset) *Summary {
	s := &Summary{
		RunID:     uuid.NewString(),
		Target:    TargetRelational,
		State:     StateConnected,
		Total:     len(ds.Rows),
		StartedAt: e.now(),
	}
	ctx = logger.WithLogger(ctx, map[string]interface{}{"run_id": s.RunID, "target": string(s.Target)})
	defer func() { s.FinishedAt = e.now() }()

	logger.InfoLog(ctx, "Relational import started: %d rows from %s", s.Total, ds.Source)

	if err := e.clean(ctx, s); err != nil {
		s.abort(err)
		logger.ErrorLog(ctx, "Relational import aborted during clean: %v", err)
		return s
	}

	idx, err := e.loadDepartments(ctx, ds)
	if err != nil {
		s.abort(err)
		logger.ErrorLog(ctx, "Relational import aborted during department load: %v", err)
		return s
	}
	s.Departments = idx.Len()
	s.State = StateDepartmentsLoaded
	logger.InfoLog(ctx, "Loaded %d departments", idx.Len())

	if err := e.importRows(ctx, ds, idx, s); err != nil {
		s.abort(err)
		logger.ErrorLog(ctx, "Relational import aborted during row import: %v", err)
		return s
	}
	s.State = StateRowsImported
	logger.InfoLog(ctx, "Relational import finished: %d succeeded, %d failed", s.Succeeded, s.Failed)
	return s
}

func (e *RelationalEngine) clean(ctx context.Context, s *Summary) error {
	ok, err := e.opts.confirm(ctx, "Clean all relational tables before import?")
	if err != nil {
		return fmt.Errorf("%w: confirmation failed: %w", domain.ErrCleanup, err)
	}
	if !ok {
		logger.InfoLog(ctx, "Relational clean skipped")
		return nil
	}
	if err := e.store.TruncateAll(ctx); err != nil {
		return err
	}
	s.Cleaned = true
	s.State = StateCleaned
	logger.InfoLog(ctx, "Relational tables truncated")
	return nil
}

// loadDepartments upserts every distinct department name and returns the
// finished name to id mapping.
func (e *RelationalEngine) loadDepartments(ctx context.Context, ds *dataset.Dataset) (transform.DepartmentIndex, error) {
	ids := make(map[string]int64)
	for _, name := range transform.DistinctDepartments(ds) {
		id, err := e.store.UpsertDepartment(ctx, name)
		if err != nil {
			if domain.IsFatal(err) {
				return transform.DepartmentIndex{}, err
			}
			return transform.DepartmentIndex{}, fmt.Errorf("%w: %w", domain.ErrPrepare, err)
		}
		ids[name] = id
	}
	return transform.NewDepartmentIndex(ids), nil
}

func (e *RelationalEngine) importRows(ctx context.Context, ds *dataset.Dataset, idx transform.DepartmentIndex, s *Summary) (err error) {
	size := e.opts.batchSize()
	var (
		batch   domain.RowBatch
		pending int
		batchNo int
	)
	defer func() {
		if batch != nil && err != nil {
			if rbErr := batch.Rollback(); rbErr != nil {
				logger.ErrorLog(ctx, "Failed to roll back open batch: %v", rbErr)
			}
		}
	}()

	commit := func() error {
		if err := batch.Commit(); err != nil {
			return err
		}
		batchNo++
		s.Succeeded += pending
		logger.DebugLog(ctx, "Committed batch %d (%d rows, %d total)", batchNo, pending, s.Succeeded)
		batch, pending = nil, 0
		return nil
	}

	for _, row := range ds.Rows {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrConnectivity, err)
		}

		rec, err := transform.Decode(row)
		if err != nil {
			s.rowFailed(row.Line, rec.EmployeeNumber, err)
			logger.RowFailure(ctx, row.Line, rec.EmployeeNumber, err)
			continue
		}

		rr, err := transform.ToRelational(rec, idx)
		if err != nil {
			// a department that escaped the pre-pass is a bug, never a skipped row
			return err
		}

		if batch == nil {
			if batch, err = e.store.BeginBatch(ctx); err != nil {
				return err
			}
		}

		if err := batch.InsertRecord(ctx, rr); err != nil {
			var rowErr *domain.RowError
			if domain.IsFatal(err) || !errors.As(err, &rowErr) {
				return err
			}
			s.rowFailed(row.Line, rec.EmployeeNumber, err)
			logger.RowFailure(ctx, row.Line, rec.EmployeeNumber, err)
			continue
		}

		pending++
		if pending == size {
			if err := commit(); err != nil {
				return err
			}
		}
	}

	if batch != nil {
		if pending == 0 {
			return batch.Rollback()
		}
		return commit()
	}
	return nil
}
