// Package config loads the application configuration: a TOML file with
// AUDIOLIB_* environment variable overrides. All paths are injected through
// the config; nothing is derived from the user's home directory.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/Bertii1/Audio-Recording-Library/internal/speech"
)

type Config struct {
	// DatabasePath is the SQLite file holding the library metadata.
	DatabasePath string `toml:"database_path"`
	// ModelsDir holds downloaded speech model files.
	ModelsDir string `toml:"models_dir"`
	// ExportDir is the default destination for exported audio and transcripts.
	ExportDir string `toml:"export_dir"`

	Transcription speech.Config `toml:"transcription"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
}

func (c *Config) SetDefaults() {
	if c.DatabasePath == "" {
		c.DatabasePath = "library.db"
	}
	if c.ModelsDir == "" {
		c.ModelsDir = "models"
	}
	if c.ExportDir == "" {
		c.ExportDir = "exports"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.Transcription.SetDefaults()
	if c.Transcription.ModelsDir == "" {
		c.Transcription.ModelsDir = c.ModelsDir
	}
}

func (c Config) IsValid() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DatabasePath cannot be empty")
	}
	if c.ModelsDir == "" {
		return fmt.Errorf("ModelsDir cannot be empty")
	}
	if c.ExportDir == "" {
		return fmt.Errorf("ExportDir cannot be empty")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if err := c.Transcription.IsValid(); err != nil {
		return fmt.Errorf("invalid Transcription config: %w", err)
	}
	return nil
}

// ParseLogLevel maps the config string to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LogLevel %q", level)
	}
}

// Load reads the TOML file at path (skipped if path is empty or the file
// doesn't exist), applies environment overrides and defaults, and validates.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config file: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.SetDefaults()
	if err := cfg.IsValid(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("AUDIOLIB_DATABASE_PATH", &c.DatabasePath)
	setString("AUDIOLIB_MODELS_DIR", &c.ModelsDir)
	setString("AUDIOLIB_EXPORT_DIR", &c.ExportDir)
	setString("AUDIOLIB_LOG_LEVEL", &c.LogLevel)
	setString("AUDIOLIB_LANGUAGE", &c.Transcription.Language)
	setString("AUDIOLIB_DEVICE", &c.Transcription.Device)
	setString("AUDIOLIB_COMPUTE_TYPE", &c.Transcription.ComputeType)

	if v := os.Getenv("AUDIOLIB_BACKEND"); v != "" {
		c.Transcription.Backend = speech.Backend(v)
	}
	if v := os.Getenv("AUDIOLIB_MODEL_SIZE"); v != "" {
		c.Transcription.ModelSize = speech.ModelSize(v)
	}
	if v := os.Getenv("AUDIOLIB_NUM_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Transcription.NumThreads = n
		}
	}
}
