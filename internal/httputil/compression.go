// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// compressionTransport advertises gzip, br and zstd and decodes the
// response body so callers always read identity bytes.
type compressionTransport struct {
	transport http.RoundTripper
}

// NewCompressionTransport wraps base (http.DefaultTransport when nil).
func NewCompressionTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &compressionTransport{transport: base}
}

func (t *compressionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// A RoundTripper must not modify the caller's request.
	if req.Header.Get("Accept-Encoding") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Accept-Encoding", "gzip, br, zstd")
	}

	resp, err := t.transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return resp, nil
	}

	var reader io.ReadCloser
	switch contentEncoding(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, err
		}
		reader = gz
	case "br":
		reader = io.NopCloser(brotli.NewReader(resp.Body))
	case "zstd":
		zr, err := zstd.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, err
		}
		reader = zr.IOReadCloser()
	default:
		return resp, nil
	}

	resp.Body = &decodedBody{reader: reader, raw: resp.Body}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return resp, nil
}

// decodedBody closes both the decoder and the underlying body.
type decodedBody struct {
	reader io.ReadCloser
	raw    io.ReadCloser
}

func (d *decodedBody) Read(p []byte) (int, error) {
	return d.reader.Read(p)
}

func (d *decodedBody) Close() error {
	readerErr := d.reader.Close()
	rawErr := d.raw.Close()
	if readerErr != nil {
		return readerErr
	}
	return rawErr
}

// contentEncoding returns the coding named by a Content-Encoding header,
// lowercased. Stacked codings return "" and the body is passed through.
func contentEncoding(header string) string {
	header = strings.TrimSpace(header)
	if header == "" || strings.Contains(header, ",") {
		return ""
	}
	return strings.ToLower(header)
}
