package speech

import (
	"bufio"
	"context"
	"encoding/json"
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

//go:embed assets/faster_whisper.py
var fwScript []byte

// fwEvent is one JSON line from the helper. Timestamps are decoded as
// decimals so the 2-decimal values survive the trip exactly.
type fwEvent struct {
	Type     string          `json:"type"`
	Language string          `json:"language"`
	Duration decimal.Decimal `json:"duration"`
	Start    decimal.Decimal `json:"start"`
	End      decimal.Decimal `json:"end"`
	Text     string          `json:"text"`
	Message  string          `json:"message"`
}

// fasterWhisper shells out to a python helper that streams faster-whisper
// segments as JSON lines on stdout.
type fasterWhisper struct {
	cfg    Config
	python string
}

func newFasterWhisper(cfg Config) (Transcriber, error) {
	python := os.Getenv("AUDIOLIB_PYTHON")
	if python == "" {
		python = "python3"
	}
	if _, err := exec.LookPath(python); err != nil {
		return nil, fmt.Errorf("%w: %s not found in PATH", ErrBackendUnavailable, python)
	}
	return &fasterWhisper{cfg: cfg, python: python}, nil
}

func (f *fasterWhisper) Close() error {
	return nil
}

func (f *fasterWhisper) Transcribe(ctx context.Context, path string, onDuration func(float64), onSegment SegmentFunc) (string, error) {
	scriptPath := filepath.Join(os.TempDir(), "audiolib_faster_whisper.py")
	if err := os.WriteFile(scriptPath, fwScript, 0o755); err != nil {
		return "", fmt.Errorf("failed to write helper script: %w", err)
	}
	defer os.Remove(scriptPath)

	args := []string{
		scriptPath,
		"--audio", path,
		"--model", string(f.cfg.ModelSize),
		"--device", f.cfg.Device,
		"--compute-type", f.cfg.ComputeType,
		"--beam-size", fmt.Sprintf("%d", f.cfg.BeamSize),
	}
	if !f.cfg.detectLanguage() {
		args = append(args, "--language", f.cfg.Language)
	}
	if f.cfg.VADFilter {
		args = append(args, "--vad")
	}

	cmd := exec.CommandContext(ctx, f.python, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start helper: %w", err)
	}

	var lang string
	var cbErr error
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ev fwEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			return lang, fmt.Errorf("failed to parse helper output: %w", err)
		}

		switch ev.Type {
		case "info":
			lang = ev.Language
			if onDuration != nil {
				onDuration(ev.Duration.InexactFloat64())
			}
		case "segment":
			cbErr = onSegment(Segment{
				Start: ev.Start.InexactFloat64(),
				End:   ev.End.InexactFloat64(),
				Text:  ev.Text,
			})
		case "error":
			_ = cmd.Wait()
			return lang, mapHelperError(ev.Message)
		}
		if cbErr != nil {
			break
		}
	}

	if cbErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return lang, cbErr
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return lang, ctx.Err()
		}
		return lang, mapHelperError(strings.TrimSpace(stderr.String()))
	}
	return lang, nil
}

// mapHelperError distinguishes "faster-whisper is not installed" from a
// failure of this particular run.
func mapHelperError(msg string) error {
	if strings.Contains(msg, "ModuleNotFoundError") || strings.Contains(msg, "No module named") {
		return fmt.Errorf("%w: faster-whisper is not installed (pip install faster-whisper)", ErrBackendUnavailable)
	}
	if msg == "" {
		msg = "unknown error"
	}
	return fmt.Errorf("faster-whisper helper failed: %s", msg)
}
