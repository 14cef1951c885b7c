package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLoggerCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	ctx := base.WithContext(context.Background())

	ctx = WithLogger(ctx, map[string]interface{}{"run_id": "abc", "engine": "relational"})
	RowFailure(ctx, 12, 1001, errors.New("bad value"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["run_id"])
	assert.Equal(t, "relational", entry["engine"])
	assert.Equal(t, float64(12), entry["line"])
	assert.Equal(t, float64(1001), entry["employee_number"])
	assert.Equal(t, "bad value", entry["error"])
	assert.Equal(t, "row skipped", entry["message"])
}

func TestGetLoggerFallsBackToGlobal(t *testing.T) {
	assert.Same(t, &globalLogger, getLogger(context.Background()))
}

func TestErrorLogFormatsAndAttachesError(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())

	ErrorLog(ctx, "Failed to connect to %s: %v", "mongodb", errors.New("refused"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "refused", entry["error"])
	assert.Equal(t, "Failed to connect to mongodb: refused", entry["message"])
}

func TestErrorLogWithoutArgs(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())

	ErrorLog(ctx, "Database connection is nil")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Database connection is nil", entry["message"])
	assert.NotContains(t, entry, "error")
}
