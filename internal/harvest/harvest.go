// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harvest fetches a single index page, extracts links to documents
// with a given extension and downloads them one at a time into a
// date-named directory.
package harvest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/pdiddy/archive-harvest/pkg/types"
)

// Recorder persists a finished run. The ledger package implements it.
type Recorder interface {
	Record(ctx context.Context, s types.Summary) error
}

// Harvester runs the index-to-file pipeline. All of its dependencies are
// injected so tests can substitute the HTTP client and the filesystem.
type Harvester struct {
	client   *http.Client
	fs       afero.Fs
	cfg      types.HarvestConfig
	out      io.Writer
	log      zerolog.Logger
	recorder Recorder
	now      func() time.Time
}

// Option customizes a Harvester.
type Option func(*Harvester)

// WithLogger sets the diagnostics logger (default: disabled).
func WithLogger(l zerolog.Logger) Option {
	return func(h *Harvester) { h.log = l }
}

// WithRecorder stores every completed run.
func WithRecorder(r Recorder) Option {
	return func(h *Harvester) { h.recorder = r }
}

// WithClock overrides time.Now, which names the run directory.
func WithClock(now func() time.Time) Option {
	return func(h *Harvester) { h.now = now }
}

// New returns a Harvester writing progress lines to w. cfg is expected to
// have passed Validate.
func New(client *http.Client, fs afero.Fs, cfg types.HarvestConfig, w io.Writer, opts ...Option) *Harvester {
	if w == nil {
		w = io.Discard
	}
	h := &Harvester{
		client: client,
		fs:     fs,
		cfg:    cfg,
		out:    w,
		log:    zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// DestDir returns the run directory for t: OutputDir/<t in DateLayout>.
func (h *Harvester) DestDir(t time.Time) string {
	return filepath.Join(h.cfg.OutputDir, t.Format(h.cfg.DateLayout))
}

// Links fetches the index and returns the links a run would download,
// after host filtering and the optional iframe fallback.
func (h *Harvester) Links(ctx context.Context) ([]types.Link, error) {
	html, err := h.FetchIndex(ctx, h.cfg.IndexURL)
	if err != nil {
		return nil, &IndexError{URL: h.cfg.IndexURL, Err: err}
	}
	fmt.Fprintf(h.out, "Page size: %d bytes\n", len(html))

	base, err := url.Parse(h.cfg.IndexURL)
	if err != nil {
		return nil, &IndexError{URL: h.cfg.IndexURL, Err: err}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &IndexError{URL: h.cfg.IndexURL, Err: fmt.Errorf("parsing HTML: %w", err)}
	}

	links := FilterHost(linksFromDocument(doc, base, h.cfg.Extension), h.cfg.AllowedHost)
	if len(links) == 0 && h.cfg.FollowIframes {
		links = h.iframeLinks(ctx, doc, base)
	}
	return links, nil
}

// iframeLinks extracts links from each iframe on the index page. Iframe
// failures are logged and skipped; nested iframes are not followed.
func (h *Harvester) iframeLinks(ctx context.Context, doc *goquery.Document, base *url.URL) []types.Link {
	var links []types.Link
	seen := make(map[string]bool)
	for _, src := range iframeSources(doc, base) {
		fmt.Fprintf(h.out, "Checking iframe: %s\n", src)
		html, err := h.fetchPage(ctx, src)
		if err != nil {
			h.log.Warn().Err(err).Str("iframe", src).Msg("iframe fetch failed")
			continue
		}
		frameBase, _ := url.Parse(src)
		found, err := ExtractLinks(strings.NewReader(html), frameBase, h.cfg.Extension)
		if err != nil {
			h.log.Warn().Err(err).Str("iframe", src).Msg("iframe parse failed")
			continue
		}
		for _, l := range FilterHost(found, h.cfg.AllowedHost) {
			if !seen[l.URL] {
				seen[l.URL] = true
				links = append(links, l)
			}
		}
	}
	return links
}

// Run fetches the index and downloads every matching link in order.
// A failed index fetch returns an *IndexError and attempts no downloads.
// Per-file failures are recorded in the summary and the loop continues.
// Cancelling ctx stops the loop and returns the partial summary with
// ctx.Err().
func (h *Harvester) Run(ctx context.Context) (types.Summary, error) {
	started := h.now()
	summary := types.Summary{
		RunID:    uuid.NewString(),
		IndexURL: h.cfg.IndexURL,
		DestDir:  h.DestDir(started),
		Started:  started,
	}

	fmt.Fprintf(h.out, "Fetching index: %s\n", h.cfg.IndexURL)
	links, err := h.Links(ctx)
	if err != nil {
		h.log.Error().Err(err).Str("url", h.cfg.IndexURL).Msg("index fetch failed")
		summary.Finished = h.now()
		return summary, err
	}
	fmt.Fprintf(h.out, "Found %d %s links\n", len(links), h.cfg.Extension)
	if len(links) == 0 {
		fmt.Fprintln(h.out, "No matching links found. The page structure might have changed.")
		summary.Finished = h.now()
		return summary, nil
	}
	fmt.Fprintf(h.out, "Saving to: %s\n", summary.DestDir)

	names := newNamer()
	names.reserve(manifestName)

	var runErr error
	for i, link := range links {
		if ctx.Err() != nil {
			runErr = ctx.Err()
			break
		}
		if i > 0 && h.cfg.DownloadDelay > 0 {
			if err := sleep(ctx, h.cfg.DownloadDelay); err != nil {
				runErr = err
				break
			}
		}

		dir := summary.DestDir
		rel := link.Filename
		if h.cfg.ReleaseSubdirs {
			if sub := ReleaseDir(link); sub != "" {
				rel = filepath.Join(sub, link.Filename)
			}
		}
		rel = names.unique(rel)
		dir = filepath.Join(dir, filepath.Dir(rel))

		result := h.download(ctx, link, dir, filepath.Base(rel))
		h.report(rel, result)
		summary.Results = append(summary.Results, result)
	}
	summary.Finished = h.now()

	fmt.Fprintf(h.out, "\nRun summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		summary.Downloaded(), summary.Skipped(), summary.Failed(), summary.Total())

	if err := h.writeManifest(summary); err != nil {
		h.log.Warn().Err(err).Msg("writing manifest failed")
	}
	if h.recorder != nil {
		if err := h.recorder.Record(context.WithoutCancel(ctx), summary); err != nil {
			h.log.Warn().Err(err).Msg("recording run failed")
		}
	}
	return summary, runErr
}

func (h *Harvester) report(name string, r types.DownloadResult) {
	switch r.Status {
	case types.StatusDownloaded:
		fmt.Fprintf(h.out, "downloaded: %s (%d bytes)\n", name, r.Bytes)
	case types.StatusSkipped:
		fmt.Fprintf(h.out, "skipped: %s (already exists)\n", name)
	default:
		fmt.Fprintf(h.out, "failed:  %s (%v)\n", name, r.Err)
		h.log.Debug().Err(r.Err).Str("url", r.Link.URL).Msg("download failed")
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// namer hands out relative paths that are unique within one run. A repeat
// gets "-2", "-3", ... inserted before its extension.
type namer struct {
	used map[string]bool
}

func newNamer() *namer {
	return &namer{used: make(map[string]bool)}
}

func (n *namer) reserve(rel string) {
	n.used[rel] = true
}

func (n *namer) unique(rel string) string {
	if !n.used[rel] {
		n.used[rel] = true
		return rel
	}
	ext := filepath.Ext(rel)
	stem := strings.TrimSuffix(rel, ext)
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, i, ext)
		if !n.used[candidate] {
			n.used[candidate] = true
			return candidate
		}
	}
}
