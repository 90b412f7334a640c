// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Defaults for a harvest run.
const (
	DefaultIndexURL   = "https://www.archives.gov/research/jfk/release-2025"
	DefaultExtension  = ".pdf"
	DefaultOutputDir  = "downloads"
	DefaultDateLayout = "2006-01-02"
	DefaultTimeout    = 30 * time.Second
	DefaultUserAgent  = "archive-harvest/0.1"
)

// ExistingPolicy decides what happens when a destination file is already on disk.
type ExistingPolicy string

const (
	// ExistingSkip leaves the file alone and reports it as skipped.
	ExistingSkip ExistingPolicy = "skip"

	// ExistingOverwrite downloads again and replaces the file.
	ExistingOverwrite ExistingPolicy = "overwrite"
)

// HTTPConfig holds shared HTTP settings used for the index fetch and downloads.
type HTTPConfig struct {
	// Timeout is the per-request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// HarvestConfig holds everything a run needs. It replaces module-level state:
// the CLI builds one and passes it into harvest.New.
type HarvestConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// IndexURL is the single page whose links are harvested.
	IndexURL string `json:"index_url" yaml:"index_url" mapstructure:"index_url"`

	// Extension filters links by the suffix of their URL path, case-insensitive.
	Extension string `json:"extension" yaml:"extension" mapstructure:"extension"`

	// OutputDir is the parent of the per-run date directory.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// DateLayout is the time layout used to name the run directory.
	DateLayout string `json:"date_layout" yaml:"date_layout" mapstructure:"date_layout"`

	// Existing selects skip or overwrite for files already on disk.
	Existing ExistingPolicy `json:"existing" yaml:"existing" mapstructure:"existing"`

	// DownloadDelay is a fixed pause between consecutive downloads (default 0).
	DownloadDelay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`

	// AllowedHost restricts links to hosts ending in this suffix. Empty allows all.
	AllowedHost string `json:"allowed_host,omitempty" yaml:"allowed_host,omitempty" mapstructure:"allowed_host"`

	// FollowIframes extracts links from iframes on the index page when the
	// page itself has none.
	FollowIframes bool `json:"follow_iframes" yaml:"follow_iframes" mapstructure:"follow_iframes"`

	// ReleaseSubdirs files each download under the last 4-digit directory
	// segment of its URL path (e.g. /0318/).
	ReleaseSubdirs bool `json:"release_subdirs" yaml:"release_subdirs" mapstructure:"release_subdirs"`

	// Ledger is the path of the SQLite run history. Empty disables it.
	Ledger string `json:"ledger,omitempty" yaml:"ledger,omitempty" mapstructure:"ledger"`

	// LogLevel is the zerolog level for diagnostics on stderr.
	LogLevel string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
}

// DefaultHarvestConfig returns a config populated with the package defaults.
func DefaultHarvestConfig() HarvestConfig {
	return HarvestConfig{
		HTTPConfig: HTTPConfig{
			Timeout:   DefaultTimeout,
			UserAgent: DefaultUserAgent,
		},
		IndexURL:   DefaultIndexURL,
		Extension:  DefaultExtension,
		OutputDir:  DefaultOutputDir,
		DateLayout: DefaultDateLayout,
		Existing:   ExistingSkip,
		LogLevel:   "info",
	}
}

// Validate normalizes the extension and rejects unusable settings.
func (c *HarvestConfig) Validate() error {
	u, err := url.Parse(c.IndexURL)
	if err != nil {
		return fmt.Errorf("invalid index_url %q: %w", c.IndexURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("index_url %q must be http or https", c.IndexURL)
	}

	ext := strings.TrimSpace(c.Extension)
	if ext == "" {
		return fmt.Errorf("extension must not be empty")
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.Extension = ext

	switch c.Existing {
	case "":
		c.Existing = ExistingSkip
	case ExistingSkip, ExistingOverwrite:
	default:
		return fmt.Errorf("existing must be %q or %q, got %q", ExistingSkip, ExistingOverwrite, c.Existing)
	}

	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if c.DateLayout == "" {
		c.DateLayout = DefaultDateLayout
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.DownloadDelay < 0 {
		return fmt.Errorf("delay must not be negative")
	}
	return nil
}
