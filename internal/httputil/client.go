// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP client and request helpers used by the
// harvester. Requests are single-shot: there is no retry or backoff.
package httputil

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pdiddy/archive-harvest/pkg/types"
)

// Accept headers for the two kinds of request a run makes.
const (
	AcceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	AcceptAny  = "*/*"
)

// NewClient returns an http.Client with the configured timeout whose
// transport negotiates gzip, brotli and zstd response compression.
func NewClient(cfg types.HTTPConfig) *http.Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: NewCompressionTransport(base),
	}
}

// NewRequest builds a GET request carrying the configured User-Agent and
// the given Accept header.
func NewRequest(ctx context.Context, url string, cfg types.HTTPConfig, accept string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	return req, nil
}

// IsSuccess reports whether code is a 2xx status.
func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}
