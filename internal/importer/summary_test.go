package importer

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/attrition_datahub/internal/domain"
)

func TestWriteSummary(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &Summary{
		RunID:       "run-1",
		Target:      TargetDocument,
		State:       StateRowsImported,
		Departments: 3,
		Total:       5,
		Succeeded:   3,
		Failed:      2,
		Batches:     []BatchResult{{FirstLine: 4, LastLine: 5, Size: 2, Err: errors.New("dup key")}},
		StartedAt:   start,
		FinishedAt:  start.Add(1500 * time.Millisecond),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, s))
	out := buf.String()
	assert.Contains(t, out, "=== mongo import run-1 ===")
	assert.Contains(t, out, "State: rows_imported (1.5s)")
	assert.Contains(t, out, "Rows: 5 total, 3 succeeded, 2 failed")
	assert.Contains(t, out, "batch lines 4-5 (2 rows, 0 stored): dup key")
	assert.NotContains(t, out, "Aborted")
}

func TestWriteSummaryAborted(t *testing.T) {
	s := &Summary{Target: TargetRelational, Total: 2}
	s.rowFailed(2, 7, domain.ErrRowWrite)
	s.abort(domain.ErrConnectivity)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, s))
	assert.Contains(t, buf.String(), "line 2 (employee 7): ")
	assert.Contains(t, buf.String(), "Aborted: ")
	assert.True(t, s.Aborted())
}
