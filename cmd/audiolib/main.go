package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Bertii1/Audio-Recording-Library/internal/cli"
	"github.com/Bertii1/Audio-Recording-Library/internal/config"
	"github.com/Bertii1/Audio-Recording-Library/internal/library"
	"github.com/Bertii1/Audio-Recording-Library/internal/store"
)

func slogReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.SourceKey {
		source := a.Value.Any().(*slog.Source)
		source.File = filepath.Base(source.File)
	}
	return a
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := os.Getenv("AUDIOLIB_CONFIG")
	if cfgPath == "" {
		cfgPath = "audiolib.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource:   true,
		Level:       level,
		ReplaceAttr: slogReplaceAttr,
	}))
	slog.SetDefault(logger)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create database dir: %w", err)
		}
	}
	s, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer s.Close()

	deps := &cli.Dependencies{
		Store:   s,
		Library: library.NewManager(s),
		Config:  &cfg,
	}

	return cli.NewRootCmd(deps).Execute()
}
