package clickhouse

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flushRecorder struct {
	mu      sync.Mutex
	batches [][]interface{}
	err     error
}

func (f *flushRecorder) flush(_ context.Context, batch []interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, batch)
	return nil
}

func (f *flushRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func TestBatchWriter_FlushOnMaxSize(t *testing.T) {
	rec := &flushRecorder{}
	bw := NewBatchWriter(BatchWriterConfig{
		FlushFunc:    rec.flush,
		TableName:    "export_events",
		MaxBatchSize: 3,
		MaxAge:       10 * time.Second, // never triggers here
	})

	ctx := context.Background()
	require.NoError(t, bw.Add(ctx, "a"))
	require.NoError(t, bw.Add(ctx, "b"))
	assert.Equal(t, 2, bw.BufferSize())

	require.NoError(t, bw.Add(ctx, "c"))

	require.Equal(t, 1, rec.count())
	assert.Len(t, rec.batches[0], 3)
	assert.Equal(t, 0, bw.BufferSize())
}

func TestBatchWriter_FlushOnTimer(t *testing.T) {
	rec := &flushRecorder{}
	bw := NewBatchWriter(BatchWriterConfig{
		FlushFunc:    rec.flush,
		TableName:    "export_events",
		MaxBatchSize: 100,
		MaxAge:       100 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bw.Start(ctx)

	require.NoError(t, bw.Add(ctx, "a"))
	require.NoError(t, bw.Add(ctx, "b"))

	time.Sleep(200 * time.Millisecond)

	assert.GreaterOrEqual(t, rec.count(), 1)
	assert.Len(t, rec.batches[0], 2)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, bw.Stop(stopCtx))
}

func TestBatchWriter_StopFlushesRemainder(t *testing.T) {
	rec := &flushRecorder{}
	bw := NewBatchWriter(BatchWriterConfig{
		FlushFunc:    rec.flush,
		TableName:    "export_events",
		MaxBatchSize: 100,
		MaxAge:       10 * time.Second,
	})

	ctx := context.Background()
	bw.Start(ctx)

	require.NoError(t, bw.Add(ctx, "pending"))

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, bw.Stop(stopCtx))

	require.Equal(t, 1, rec.count())
	assert.Len(t, rec.batches[0], 1)
}

func TestBatchWriter_EmptyFlushIsNoop(t *testing.T) {
	rec := &flushRecorder{}
	bw := NewBatchWriter(BatchWriterConfig{FlushFunc: rec.flush, TableName: "export_events"})

	require.NoError(t, bw.Flush(context.Background()))
	assert.Zero(t, rec.count())
}
