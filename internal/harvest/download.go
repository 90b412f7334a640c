// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/pdiddy/archive-harvest/internal/httputil"
	"github.com/pdiddy/archive-harvest/pkg/types"
)

// Download fetches link into destDir/link.Filename, creating destDir if
// needed. Failures are reported in the result, never returned.
func (h *Harvester) Download(ctx context.Context, link types.Link, destDir string) types.DownloadResult {
	return h.download(ctx, link, destDir, link.Filename)
}

func (h *Harvester) download(ctx context.Context, link types.Link, dir, name string) types.DownloadResult {
	dest := filepath.Join(dir, name)
	result := types.DownloadResult{Link: link, Path: dest}

	if h.cfg.Existing != types.ExistingOverwrite {
		if info, err := h.fs.Stat(dest); err == nil && !info.IsDir() {
			result.Status = types.StatusSkipped
			result.Bytes = info.Size()
			return result
		}
	}

	n, err := h.fetchFile(ctx, link.URL, dir, dest)
	if err != nil {
		return failed(result, err)
	}
	result.Status = types.StatusDownloaded
	result.Bytes = n
	return result
}

// fetchFile streams url into dest through a temporary file in dir and
// renames it into place once the body is complete.
func (h *Harvester) fetchFile(ctx context.Context, url, dir, dest string) (int64, error) {
	if err := h.fs.MkdirAll(dir, 0o755); err != nil {
		return 0, &IOError{Op: "mkdir", Path: dir, Err: err}
	}

	req, err := httputil.NewRequest(ctx, url, h.cfg.HTTPConfig, httputil.AcceptAny)
	if err != nil {
		return 0, &NetworkError{URL: url, Err: err}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if !httputil.IsSuccess(resp.StatusCode) {
		return 0, &NetworkError{URL: url, StatusCode: resp.StatusCode}
	}

	tmp, err := afero.TempFile(h.fs, dir, ".harvest-*.tmp")
	if err != nil {
		return 0, &IOError{Op: "create", Path: dir, Err: err}
	}
	tmpPath := tmp.Name()

	w := &trackingWriter{w: tmp}
	n, copyErr := io.Copy(w, resp.Body)
	closeErr := tmp.Close()
	switch {
	case copyErr != nil && w.err != nil:
		h.fs.Remove(tmpPath)
		return 0, &IOError{Op: "write", Path: tmpPath, Err: w.err}
	case copyErr != nil:
		h.fs.Remove(tmpPath)
		return 0, &NetworkError{URL: url, Err: copyErr}
	case closeErr != nil:
		h.fs.Remove(tmpPath)
		return 0, &IOError{Op: "close", Path: tmpPath, Err: closeErr}
	}

	if err := h.fs.Rename(tmpPath, dest); err != nil {
		h.fs.Remove(tmpPath)
		return 0, &IOError{Op: "rename", Path: dest, Err: err}
	}
	return n, nil
}

// trackingWriter remembers the first write error so a failed copy can be
// attributed to the disk rather than the network.
type trackingWriter struct {
	w   io.Writer
	err error
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil && t.err == nil {
		t.err = err
	}
	return n, err
}

func failed(result types.DownloadResult, err error) types.DownloadResult {
	result.Status = types.StatusFailed
	result.Bytes = 0
	result.Err = err
	result.Error = err.Error()
	return result
}
