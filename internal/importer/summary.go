package importer

import (
	"bufio"
	"fmt"
	"io"
	"time"
)

// State is a step of an import run. States only move forward.
type State string

const (
	StateConnected         State = "connected"
	StateCleaned           State = "cleaned"
	StateIndexesEnsured    State = "indexes_ensured"
	StateDepartmentsLoaded State = "departments_loaded"
	StateRowsImported      State = "rows_imported"
	StateVerified          State = "verified"
	StateAborted           State = "aborted"
)

// Target names the store an engine writes to.
type Target string

const (
	TargetRelational Target = "sql"
	TargetDocument   Target = "mongo"
)

// RowResult is the outcome of one row that did not make it into a store.
type RowResult struct {
	Line           int
	EmployeeNumber int
	Err            error
}

// BatchResult is one rejected bulk write of the document engine.
type BatchResult struct {
	FirstLine int
	LastLine  int
	Size      int
	Inserted  int
	Err       error
}

// Summary is the accounting of one engine run.
type Summary struct {
	RunID       string
	Target      Target
	State       State
	Cleaned     bool
	Departments int
	Total       int
	Succeeded   int
	Failed      int
	Rows        []RowResult
	Batches     []BatchResult
	// Err is the fatal error that aborted the run, nil otherwise.
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Aborted reports whether the run stopped before importing every row.
func (s *Summary) Aborted() bool { return s.Err != nil }

func (s *Summary) Duration() time.Duration { return s.FinishedAt.Sub(s.StartedAt) }

func (s *Summary) rowFailed(line, employeeNumber int, err error) {
	s.Failed++
	s.Rows = append(s.Rows, RowResult{Line: line, EmployeeNumber: employeeNumber, Err: err})
}

func (s *Summary) abort(err error) {
	s.State = StateAborted
	s.Err = err
}

// WriteSummary prints the run accounting followed by one line per failed row
// and rejected batch.
func WriteSummary(w io.Writer, s *Summary) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "=== %s import %s ===\n", s.Target, s.RunID)
	fmt.Fprintf(bw, "State: %s (%s)\n", s.State, s.Duration().Round(time.Millisecond))
	fmt.Fprintf(bw, "Cleaned: %t, departments: %d\n", s.Cleaned, s.Departments)
	fmt.Fprintf(bw, "Rows: %d total, %d succeeded, %d failed\n", s.Total, s.Succeeded, s.Failed)
	for _, b := range s.Batches {
		fmt.Fprintf(bw, "  batch lines %d-%d (%d rows, %d stored): %v\n", b.FirstLine, b.LastLine, b.Size, b.Inserted, b.Err)
	}
	for _, r := range s.Rows {
		fmt.Fprintf(bw, "  line %d (employee %d): %v\n", r.Line, r.EmployeeNumber, r.Err)
	}
	if s.Err != nil {
		fmt.Fprintf(bw, "Aborted: %v\n", s.Err)
	}
	return bw.Flush()
}
