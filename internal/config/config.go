// Package config provides centralized configuration for the recbutton
// server. Values come from an optional TOML file, overridden by
// environment variables, with sensible defaults for everything.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all server configuration values.
type Config struct {
	// Host and Port form the HTTP listen address.
	Host string `toml:"host"`
	Port string `toml:"port"`

	// DBPath is the path to the SQLite history database file.
	DBPath string `toml:"db_path"`

	// OutputDir is the directory generated clips are written to.
	OutputDir string `toml:"output_dir"`

	// KodiURL is the Kodi JSON-RPC endpoint. When empty, a stub player
	// is used instead.
	KodiURL string `toml:"kodi_url"`

	// KodiUser and KodiPass are optional basic auth credentials for the
	// JSON-RPC endpoint.
	KodiUser string `toml:"kodi_user"`
	KodiPass string `toml:"kodi_pass"`

	// MBPerMin is the clip quality budget in megabytes per minute of
	// output. The effective bitrate is clamped to the source's own.
	MBPerMin int `toml:"mb_per_min"`

	// Autodelete enables the retention sweep at startup.
	Autodelete bool `toml:"autodelete"`

	// DeleteAfterDays is the retention age for the sweep.
	DeleteAfterDays int `toml:"delete_after_days"`

	// KeepRenamedFiles exempts user-renamed clips from the sweep.
	KeepRenamedFiles bool `toml:"keep_renamed_files"`

	// FFmpegPath and FFprobePath override the tool lookup on PATH.
	FFmpegPath  string `toml:"ffmpeg_path"`
	FFprobePath string `toml:"ffprobe_path"`

	// HTTPTimeout is the timeout for outgoing player requests.
	HTTPTimeout time.Duration `toml:"-"`

	// CORSOrigin is the allowed CORS origin. Defaults to "*".
	CORSOrigin string `toml:"cors_origin"`
}

func defaults() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            "8123",
		DBPath:          "history.db",
		OutputDir:       "output",
		MBPerMin:        20,
		DeleteAfterDays: 30,
		HTTPTimeout:     10 * time.Second,
		CORSOrigin:      "*",
	}
}

// Load reads configuration from the TOML file at path (or
// $RECBUTTON_CONFIG when path is empty), then applies environment
// variable overrides. A missing file is not an error; defaults apply.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path == "" {
		path = os.Getenv("RECBUTTON_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.Host = envOr("HOST", cfg.Host)
	cfg.Port = envOr("PORT", cfg.Port)
	cfg.DBPath = envOr("DB_PATH", cfg.DBPath)
	cfg.OutputDir = envOr("OUTPUT_DIR", cfg.OutputDir)
	cfg.KodiURL = envOr("KODI_URL", cfg.KodiURL)
	cfg.KodiUser = envOr("KODI_USER", cfg.KodiUser)
	cfg.KodiPass = envOr("KODI_PASS", cfg.KodiPass)
	cfg.MBPerMin = envInt("MB_PER_MIN", cfg.MBPerMin)
	cfg.Autodelete = envBool("AUTODELETE", cfg.Autodelete)
	cfg.DeleteAfterDays = envInt("DELETE_AFTER_DAYS", cfg.DeleteAfterDays)
	cfg.KeepRenamedFiles = envBool("KEEP_RENAMED_FILES", cfg.KeepRenamedFiles)
	cfg.FFmpegPath = envOr("FFMPEG_PATH", cfg.FFmpegPath)
	cfg.FFprobePath = envOr("FFPROBE_PATH", cfg.FFprobePath)
	cfg.HTTPTimeout = envDuration("HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.CORSOrigin = envOr("CORS_ORIGIN", cfg.CORSOrigin)

	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
