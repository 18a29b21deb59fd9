// Package speech wraps the speech-to-text model capability behind a small
// interface with pluggable backends.
package speech

import (
	"context"
	"errors"
	"fmt"
	"runtime"
)

type ModelSize string

const (
	ModelSizeTiny    ModelSize = "tiny"
	ModelSizeBase    ModelSize = "base"
	ModelSizeSmall   ModelSize = "small"
	ModelSizeMedium  ModelSize = "medium"
	ModelSizeLargeV3 ModelSize = "large-v3"
)

func (m ModelSize) IsValid() bool {
	switch m {
	case ModelSizeTiny, ModelSizeBase, ModelSizeSmall, ModelSizeMedium, ModelSizeLargeV3:
		return true
	default:
		return false
	}
}

type Backend string

const (
	BackendWhisperCPP    Backend = "whisper.cpp"
	BackendFasterWhisper Backend = "faster-whisper"
)

func (b Backend) IsValid() bool {
	switch b {
	case BackendWhisperCPP, BackendFasterWhisper:
		return true
	default:
		return false
	}
}

// ErrBackendUnavailable marks a configuration/installation problem: the
// selected speech backend is not usable on this machine, as opposed to a
// specific run failing.
var ErrBackendUnavailable = errors.New("speech backend unavailable")

type Config struct {
	Backend   Backend   `toml:"backend"`
	ModelSize ModelSize `toml:"model_size"`
	// ModelsDir holds the GGML model files and the silero VAD model.
	ModelsDir string `toml:"models_dir"`
	// Language is a hint; empty or "auto" lets the model detect it.
	Language    string `toml:"language"`
	Device      string `toml:"device"`
	ComputeType string `toml:"compute_type"`
	NumThreads  int    `toml:"num_threads"`
	BeamSize    int    `toml:"beam_size"`
	VADFilter   bool   `toml:"vad_filter"`
}

func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendWhisperCPP
	}
	if c.ModelSize == "" {
		c.ModelSize = ModelSizeBase
	}
	if c.Language == "" {
		c.Language = "auto"
	}
	if c.Device == "" {
		c.Device = "cpu"
	}
	if c.ComputeType == "" {
		c.ComputeType = "int8"
	}
	if c.NumThreads == 0 {
		c.NumThreads = max(1, runtime.NumCPU()/2)
	}
	if c.BeamSize == 0 {
		c.BeamSize = 5
	}
}

func (c Config) IsValid() error {
	if c == (Config{}) {
		return fmt.Errorf("invalid empty config")
	}
	if !c.Backend.IsValid() {
		return fmt.Errorf("invalid Backend %q", c.Backend)
	}
	if !c.ModelSize.IsValid() {
		return fmt.Errorf("invalid ModelSize %q", c.ModelSize)
	}
	if numCPU := runtime.NumCPU(); c.NumThreads < 1 || c.NumThreads > numCPU {
		return fmt.Errorf("invalid NumThreads: should be in the range [1, %d]", numCPU)
	}
	if c.BeamSize < 1 {
		return fmt.Errorf("invalid BeamSize: should be a positive number")
	}
	return nil
}

// detectLanguage reports whether the model should autodetect the language.
func (c Config) detectLanguage() bool {
	return c.Language == "" || c.Language == "auto"
}

// Segment is one (start, end, text) tuple in model emission order, with
// timestamps in seconds.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// SegmentFunc receives segments as the model yields them. Returning a non-nil
// error asks the backend to stop; the error is propagated from Transcribe.
type SegmentFunc func(Segment) error

// Transcriber runs a speech model over an audio file. onDuration is invoked
// once with the total audio duration in seconds before the first segment;
// the detected language is returned on completion.
type Transcriber interface {
	Transcribe(ctx context.Context, path string, onDuration func(seconds float64), onSegment SegmentFunc) (string, error)
	Close() error
}

// NewTranscriber validates cfg and instantiates the configured backend.
func NewTranscriber(cfg Config) (Transcriber, error) {
	cfg.SetDefaults()
	if err := cfg.IsValid(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	switch cfg.Backend {
	case BackendFasterWhisper:
		return newFasterWhisper(cfg)
	default:
		return newWhisperCPP(cfg)
	}
}
