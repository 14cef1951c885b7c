package importer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/locvowork/attrition_datahub/internal/domain"
)

func TestRetryPolicyDo(t *testing.T) {
	calls := 0
	err := RetryPolicy{MaxRetries: 3, Backoff: time.Millisecond}.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = RetryPolicy{MaxRetries: 2}.Do(context.Background(), func() error {
		calls++
		return errors.New("down")
	})
	assert.EqualError(t, err, "down")
	assert.Equal(t, 3, calls)
}

func TestRetryPolicyStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryPolicy{MaxRetries: 5, Backoff: time.Hour}.Do(ctx, func() error { return errors.New("down") })
	assert.ErrorIs(t, err, context.Canceled)
}

type flakyIndexer struct {
	recordingIndexer
	failures int
}

func (f *flakyIndexer) IndexEmployees(ctx context.Context, docs []domain.EmployeeDocument) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("timeout")
	}
	return f.recordingIndexer.IndexEmployees(ctx, docs)
}

func TestDocumentEngineRetriesSearchMirror(t *testing.T) {
	mirror := &flakyIndexer{failures: 2}
	e := newTestDocumentEngine(newMemoryDocumentStore(), Options{BatchSize: 10}).WithSearchMirror(mirror)
	e.retry = RetryPolicy{MaxRetries: 2, Backoff: time.Millisecond}

	s := e.Run(context.Background(), salesAndRnD())
	assert.NoError(t, s.Err)
	assert.Equal(t, []int{1, 2, 3}, mirror.numbers)
}
