// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Link is a candidate document extracted from the index page.
type Link struct {
	// Href is the attribute value exactly as it appeared in the page.
	Href string `json:"href" yaml:"href"`

	// URL is Href resolved against the page it came from.
	URL string `json:"url" yaml:"url"`

	// Filename is the unescaped final path segment of URL.
	Filename string `json:"filename" yaml:"filename"`
}

// DownloadStatus is the outcome of one download attempt.
type DownloadStatus string

const (
	StatusDownloaded DownloadStatus = "downloaded"
	StatusSkipped    DownloadStatus = "skipped"
	StatusFailed     DownloadStatus = "failed"
)

// DownloadResult records what happened to a single link.
type DownloadResult struct {
	Link Link `json:"link" yaml:"link"`

	// Path is the local file path, relative paths included as given.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Bytes is the number of bytes written (or found on disk when skipped).
	Bytes int64 `json:"bytes" yaml:"bytes"`

	Status DownloadStatus `json:"status" yaml:"status"`

	// Err is set when Status is StatusFailed.
	Err error `json:"-" yaml:"-"`

	// Error mirrors Err for serialized output.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the link ended up on disk.
func (r DownloadResult) OK() bool {
	return r.Status != StatusFailed
}

// Summary is the inspectable outcome of a run.
type Summary struct {
	RunID    string           `json:"run_id" yaml:"run_id"`
	IndexURL string           `json:"index_url" yaml:"index_url"`
	DestDir  string           `json:"dest_dir" yaml:"dest_dir"`
	Started  time.Time        `json:"started" yaml:"started"`
	Finished time.Time        `json:"finished" yaml:"finished"`
	Results  []DownloadResult `json:"results" yaml:"results"`
}

// Downloaded returns the number of files fetched in this run.
func (s Summary) Downloaded() int { return s.count(StatusDownloaded) }

// Skipped returns the number of files left in place.
func (s Summary) Skipped() int { return s.count(StatusSkipped) }

// Failed returns the number of links that could not be downloaded.
func (s Summary) Failed() int { return s.count(StatusFailed) }

// Total returns the number of links processed.
func (s Summary) Total() int { return len(s.Results) }

// HasFailures reports whether any link failed.
func (s Summary) HasFailures() bool { return s.Failed() > 0 }

// Bytes returns the total bytes written in this run.
func (s Summary) Bytes() int64 {
	var n int64
	for _, r := range s.Results {
		if r.Status == StatusDownloaded {
			n += r.Bytes
		}
	}
	return n
}

func (s Summary) count(status DownloadStatus) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}
