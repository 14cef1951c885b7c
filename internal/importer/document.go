package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/locvowork/attrition_datahub/internal/dataset"
	"github.com/locvowork/attrition_datahub/internal/domain"
	"github.com/locvowork/attrition_datahub/internal/logger"
	"github.com/locvowork/attrition_datahub/internal/transform"
)

var cleanCollections = []string{
	domain.CollectionEmployees,
	domain.CollectionDepartments,
	domain.CollectionPredictions,
}

// DocumentEngine imports a validated dataset into the document store:
// optional clean, index ensure, department snapshots, then employee batches.
// Each batch is one ordered bulk insert; a rejected batch does not undo
// earlier ones.
type DocumentEngine struct {
	store  domain.DocumentStore
	mirror domain.SearchIndexer
	retry  RetryPolicy
	opts   Options
	now    func() time.Time
}

func NewDocumentEngine(store domain.DocumentStore, opts Options) *DocumentEngine {
	return &DocumentEngine{store: store, retry: DefaultRetryPolicy(), opts: opts, now: time.Now}
}

// WithSearchMirror indexes every stored employee document into idx as well.
// Mirror failures are logged and never fail the run.
func (e *DocumentEngine) WithSearchMirror(idx domain.SearchIndexer) *DocumentEngine {
	e.mirror = idx
	return e
}

// decodedRow is one dataset row after coercion; err is set when it failed.
type decodedRow struct {
	line int
	rec  domain.SourceRecord
	err  error
}

func (e *DocumentEngine) Run(ctx context.Context, ds *dataset.Dataset) *Summary {
	s := &Summary{
		RunID:     uuid.NewString(),
		Target:    TargetDocument,
		State:     StateConnected,
		Total:     len(ds.Rows),
		StartedAt: e.now(),
	}
	ctx = logger.WithLogger(ctx, map[string]interface{}{"run_id": s.RunID, "target": string(s.Target)})
	defer func() { s.FinishedAt = e.now() }()

	logger.InfoLog(ctx, "Document import started: %d rows from %s", s.Total, ds.Source)

	if err := e.clean(ctx, s); err != nil {
		s.abort(err)
		logger.ErrorLog(ctx, "Document import aborted during clean: %v", err)
		return s
	}

	if err := e.store.EnsureIndexes(ctx); err != nil {
		s.abort(err)
		logger.ErrorLog(ctx, "Document import aborted during index creation: %v", err)
		return s
	}
	s.State = StateIndexesEnsured

	rows := make([]decodedRow, len(ds.Rows))
	var records []domain.SourceRecord
	for i, row := range ds.Rows {
		rec, err := transform.Decode(row)
		rows[i] = decodedRow{line: row.Line, rec: rec, err: err}
		if err == nil {
			records = append(records, rec)
		}
	}

	now := e.now().UTC()
	depts := transform.AggregateDepartments(records, now)
	if err := e.store.InsertDepartments(ctx, depts); err != nil {
		s.abort(err)
		logger.ErrorLog(ctx, "Document import aborted writing department snapshots: %v", err)
		return s
	}
	s.Departments = len(depts)
	s.State = StateDepartmentsLoaded
	logger.InfoLog(ctx, "Inserted %d department snapshots", len(depts))

	if err := e.importBatches(ctx, rows, now, s); err != nil {
		s.abort(err)
		logger.ErrorLog(ctx, "Document import aborted during employee write: %v", err)
		return s
	}
	s.State = StateRowsImported
	logger.InfoLog(ctx, "Document import finished: %d succeeded, %d failed in %d failed batches",
		s.Succeeded, s.Failed, len(s.Batches))
	return s
}

func (e *DocumentEngine) clean(ctx context.Context, s *Summary) error {
	ok, err := e.opts.confirm(ctx, "Clean all document collections before import?")
	if err != nil {
		return fmt.Errorf("%w: confirmation failed: %w", domain.ErrCleanup, err)
	}
	if !ok {
		logger.InfoLog(ctx, "Document clean skipped")
		return nil
	}
	for _, coll := range cleanCollections {
		n, err := e.store.DeleteAll(ctx, coll)
		if err != nil {
			return err
		}
		logger.InfoLog(ctx, "Deleted %d documents from %s", n, coll)
	}
	s.Cleaned = true
	s.State = StateCleaned
	return nil
}

func (e *DocumentEngine) importBatches(ctx context.Context, rows []decodedRow, now time.Time, s *Summary) error {
	size := e.opts.batchSize()
	for start := 0; start < len(rows); start += size {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrConnectivity, err)
		}
		end := min(start+size, len(rows))
		chunk := rows[start:end]
		first, last := chunk[0].line, chunk[len(chunk)-1].line

		docs, err := buildDocuments(chunk, now)
		if err != nil {
			e.batchFailed(ctx, s, BatchResult{FirstLine: first, LastLine: last, Size: len(chunk), Err: err})
			continue
		}

		inserted, err := e.store.InsertEmployees(ctx, docs)
		s.Succeeded += inserted
		if err != nil {
			if domain.IsFatal(err) {
				return err
			}
			e.batchFailed(ctx, s, BatchResult{FirstLine: first, LastLine: last, Size: len(chunk), Inserted: inserted, Err: err})
		} else {
			logger.DebugLog(ctx, "Inserted employee batch lines %d-%d", first, last)
		}

		e.mirrorDocuments(ctx, docs[:inserted])
	}
	return nil
}

// buildDocuments fails the whole chunk when any row in it could not be decoded.
func buildDocuments(chunk []decodedRow, now time.Time) ([]domain.EmployeeDocument, error) {
	docs := make([]domain.EmployeeDocument, 0, len(chunk))
	for _, r := range chunk {
		if r.err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrBatchWrite, r.err)
		}
		docs = append(docs, transform.ToEmployeeDocument(r.rec, now))
	}
	return docs, nil
}

func (e *DocumentEngine) batchFailed(ctx context.Context, s *Summary, b BatchResult) {
	s.Failed += b.Size - b.Inserted
	s.Batches = append(s.Batches, b)
	logger.BatchFailure(ctx, b.FirstLine, b.LastLine, b.Size, b.Err)
}

func (e *DocumentEngine) mirrorDocuments(ctx context.Context, docs []domain.EmployeeDocument) {
	if e.mirror == nil || len(docs) == 0 {
		return
	}
	err := e.retry.Do(ctx, func() error { return e.mirror.IndexEmployees(ctx, docs) })
	if err != nil {
		logger.WarnLog(ctx, "Search mirror failed for %d documents: %v", len(docs), err)
	}
}
