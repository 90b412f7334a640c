// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config turns viper settings into a validated HarvestConfig and
// builds the diagnostics logger.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/pdiddy/archive-harvest/pkg/types"
)

// EnvPrefix is prepended to every environment variable, e.g.
// ARCHIVE_HARVEST_INDEX_URL.
const EnvPrefix = "ARCHIVE_HARVEST"

// SetDefaults registers every key with its default so that environment
// variables are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := types.DefaultHarvestConfig()
	v.SetDefault("index_url", d.IndexURL)
	v.SetDefault("extension", d.Extension)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("date_layout", d.DateLayout)
	v.SetDefault("existing", string(d.Existing))
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("delay", d.DownloadDelay)
	v.SetDefault("allowed_host", d.AllowedHost)
	v.SetDefault("follow_iframes", d.FollowIframes)
	v.SetDefault("release_subdirs", d.ReleaseSubdirs)
	v.SetDefault("ledger", d.Ledger)
	v.SetDefault("log_level", d.LogLevel)
}

// Setup points v at the config file (cfgFile, or archive-harvest.yaml in
// the working directory or ~/.config/archive-harvest) and the environment.
// It returns the config file used, or "" when none was found.
func Setup(v *viper.Viper, cfgFile string) (string, error) {
	SetDefaults(v)

	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return "", fmt.Errorf("reading config: %w", err)
		}
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("archive-harvest")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "archive-harvest"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && (errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)) {
			return "", nil
		}
		return "", fmt.Errorf("reading config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is
// not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load decodes v into a HarvestConfig and validates it.
func Load(v *viper.Viper) (types.HarvestConfig, error) {
	cfg := types.DefaultHarvestConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// NewLogger returns a console zerolog logger on w at the given level.
// An unknown level falls back to info and logs a warning.
func NewLogger(level string, w io.Writer) zerolog.Logger {
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:     w,
		NoColor: !isTerminal(w),
	}).With().Timestamp().Logger()

	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(level)
		if err != nil {
			logger.Warn().Str("invalid_level", level).Msg("Invalid log level, using default 'info'")
		} else {
			lvl = parsed
		}
	}
	return logger.Level(lvl)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
