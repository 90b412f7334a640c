// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"

	"github.com/pdiddy/archive-harvest/internal/httputil"
)

// maxPageBytes caps how much of an HTML page is read.
const maxPageBytes = 32 << 20

// FetchIndex retrieves the index page and returns its HTML as UTF-8.
// Any failure is a *NetworkError.
func (h *Harvester) FetchIndex(ctx context.Context, url string) (string, error) {
	return h.fetchPage(ctx, url)
}

func (h *Harvester) fetchPage(ctx context.Context, url string) (string, error) {
	req, err := httputil.NewRequest(ctx, url, h.cfg.HTTPConfig, httputil.AcceptHTML)
	if err != nil {
		return "", &NetworkError{URL: url, Err: err}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if !httputil.IsSuccess(resp.StatusCode) {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return "", &NetworkError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxPageBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", &NetworkError{URL: url, Err: fmt.Errorf("detecting charset: %w", err)}
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", &NetworkError{URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}

	h.log.Debug().Str("url", url).Int("bytes", len(data)).Msg("fetched page")
	return string(data), nil
}
