// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/archive-harvest/pkg/types"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "state", "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func summary(id string, started time.Time, results ...types.DownloadResult) types.Summary {
	return types.Summary{
		RunID:    id,
		IndexURL: "https://example.com/index.html",
		DestDir:  "downloads/" + started.Format("2006-01-02"),
		Started:  started,
		Finished: started.Add(time.Minute),
		Results:  results,
	}
}

func TestRecordAndFiles(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	started := time.Date(2025, 3, 24, 9, 0, 0, 0, time.UTC)

	s := summary("run-1", started,
		types.DownloadResult{
			Link:   types.Link{URL: "https://example.com/a.pdf", Filename: "a.pdf"},
			Path:   "downloads/2025-03-24/a.pdf",
			Bytes:  42,
			Status: types.StatusDownloaded,
		},
		types.DownloadResult{
			Link:   types.Link{URL: "https://example.com/b.pdf", Filename: "b.pdf"},
			Status: types.StatusFailed,
			Error:  "HTTP 404 from https://example.com/b.pdf",
		},
	)
	require.NoError(t, l.Record(ctx, s))

	files, err := l.Files(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.pdf", files[0].Filename)
	assert.Equal(t, int64(42), files[0].Bytes)
	assert.Equal(t, types.StatusDownloaded, files[0].Status)
	assert.Equal(t, types.StatusFailed, files[1].Status)
	assert.Contains(t, files[1].Error, "HTTP 404")

	runs, err := l.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Downloaded)
	assert.Equal(t, 1, runs[0].Failed)
	assert.True(t, runs[0].Started.Equal(started))
}

func TestRecentNewestFirst(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 18, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, l.Record(ctx, summary(id, base.AddDate(0, 0, i))))
	}

	runs, err := l.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "mid", runs[1].ID)
}

func TestRecordDuplicateRunFails(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	s := summary("dup", time.Now())

	require.NoError(t, l.Record(ctx, s))
	assert.Error(t, l.Record(ctx, s))
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Record(context.Background(), summary("kept", time.Now())))
	require.NoError(t, l.Close())

	l, err = Open(path)
	require.NoError(t, err)
	defer l.Close()

	runs, err := l.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "kept", runs[0].ID)
}
