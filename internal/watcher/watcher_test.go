package watcher

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/loader"
)

type recordingIngest struct {
	mu      sync.Mutex
	batches [][]string
	err     error
}

func (r *recordingIngest) ingest(_ context.Context, paths []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)
	r.batches = append(r.batches, sorted)
	return r.err
}

func TestFlushBatchesPendingPaths(t *testing.T) {
	rec := &recordingIngest{}
	w := New(rec.ingest, loader.New(), nil)

	w.pending["/docs/a.txt"] = struct{}{}
	w.pending["/docs/b.md"] = struct{}{}
	w.flush(context.Background())

	require.Len(t, rec.batches, 1)
	assert.Equal(t, []string{"/docs/a.txt", "/docs/b.md"}, rec.batches[0])
	assert.Empty(t, w.pending, "flushed paths must not be re-ingested")
}

func TestFlushEmptyPendingSkipsIngest(t *testing.T) {
	rec := &recordingIngest{}
	w := New(rec.ingest, loader.New(), nil)

	w.flush(context.Background())
	assert.Empty(t, rec.batches)
}

func TestFlushKeepsGoingAfterIngestError(t *testing.T) {
	rec := &recordingIngest{err: errors.New("index busy")}
	w := New(rec.ingest, loader.New(), nil)

	w.pending["/docs/a.txt"] = struct{}{}
	w.flush(context.Background())

	w.pending["/docs/b.txt"] = struct{}{}
	w.flush(context.Background())
	assert.Len(t, rec.batches, 2)
}

func TestWatchRejectsMissingDirectory(t *testing.T) {
	w := New((&recordingIngest{}).ingest, loader.New(), nil)

	err := w.Watch(context.Background(), "/does/not/exist")
	assert.Error(t, err)
}
