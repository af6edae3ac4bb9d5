package sprites

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/pomodex/internal/model"
)

func spriteServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/404.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png:" + r.URL.Path))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchWritesFiles(t *testing.T) {
	var hits atomic.Int64
	srv := spriteServer(t, &hits)
	dir := t.TempDir()

	f := New(dir, WithBaseURL(srv.URL+"/"), WithConcurrency(2))
	res, err := f.Fetch(context.Background(), []model.CreatureID{1, 25, 493})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Downloaded)
	assert.Zero(t, res.Skipped)
	assert.Empty(t, res.Failed)

	data, err := os.ReadFile(Path(dir, 25))
	require.NoError(t, err)
	assert.Equal(t, "png:/25.png", string(data))
	assert.Equal(t, int64(3), hits.Load())
}

func TestFetchSkipsExisting(t *testing.T) {
	var hits atomic.Int64
	srv := spriteServer(t, &hits)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(Path(dir, 1), []byte("old"), 0o644))

	res, err := New(dir, WithBaseURL(srv.URL)).Fetch(context.Background(), []model.CreatureID{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Downloaded)
	assert.Equal(t, 1, res.Skipped)
	data, err := os.ReadFile(Path(dir, 1))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	res, err = New(dir, WithBaseURL(srv.URL), WithForce(true)).Fetch(context.Background(), []model.CreatureID{1})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Downloaded)
	data, err = os.ReadFile(Path(dir, 1))
	require.NoError(t, err)
	assert.Equal(t, "png:/1.png", string(data))
}

func TestFetchReportsFailures(t *testing.T) {
	var hits atomic.Int64
	srv := spriteServer(t, &hits)
	dir := t.TempDir()

	res, err := New(dir, WithBaseURL(srv.URL)).Fetch(context.Background(), []model.CreatureID{7, 404, 0})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Downloaded)
	assert.ElementsMatch(t, []model.CreatureID{404, 0}, res.Failed)
	_, statErr := os.Stat(Path(dir, 404))
	assert.True(t, os.IsNotExist(statErr))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFetchCancelled(t *testing.T) {
	var hits atomic.Int64
	srv := spriteServer(t, &hits)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(t.TempDir(), WithBaseURL(srv.URL)).Fetch(ctx, []model.CreatureID{1, 2, 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
