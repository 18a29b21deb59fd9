//go:build whisper_cpp

package speech

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	whisperpkg "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/Bertii1/Audio-Recording-Library/internal/codec"
)

// whisper.cpp operates on 16kHz mono PCM.
const whisperSampleRate = 16000

type whisperCPP struct {
	cfg   Config
	model whisperpkg.Model
}

func newWhisperCPP(cfg Config) (Transcriber, error) {
	modelFile := filepath.Join(cfg.ModelsDir, fmt.Sprintf("ggml-%s.bin", cfg.ModelSize))
	if _, err := os.Stat(modelFile); err != nil {
		return nil, fmt.Errorf("%w: missing model file %q", ErrBackendUnavailable, modelFile)
	}

	model, err := whisperpkg.New(modelFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load model file: %w", err)
	}

	slog.Debug("whisper model loaded",
		slog.String("file", modelFile), slog.String("size", string(cfg.ModelSize)))

	return &whisperCPP{cfg: cfg, model: model}, nil
}

func (w *whisperCPP) Close() error {
	if w.model == nil {
		return fmt.Errorf("model is not initialized")
	}
	err := w.model.Close()
	w.model = nil
	return err
}

func (w *whisperCPP) Transcribe(ctx context.Context, path string, onDuration func(float64), onSegment SegmentFunc) (string, error) {
	buf, err := codec.Decode(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to decode audio: %w", err)
	}
	pcm := buf.Resample(whisperSampleRate)
	samples := pcm.Samples()
	total := pcm.Duration().Seconds()

	if onDuration != nil {
		onDuration(total)
	}

	regions := []speechRegion{{start: 0, end: total}}
	if w.cfg.VADFilter {
		detected, err := detectSpeechRegions(w.cfg.ModelsDir, samples, whisperSampleRate)
		if err != nil {
			slog.Warn("VAD filtering unavailable, transcribing full audio", slog.String("err", err.Error()))
		} else {
			regions = detected
		}
	}

	var lang string
	for _, reg := range regions {
		if err := ctx.Err(); err != nil {
			return lang, err
		}

		s := int(reg.start * whisperSampleRate)
		e := int(reg.end * whisperSampleRate)
		if e > len(samples) {
			e = len(samples)
		}
		if s >= e {
			continue
		}

		wctx, err := w.model.NewContext()
		if err != nil {
			return lang, fmt.Errorf("failed to create context: %w", err)
		}
		wctx.SetThreads(uint(w.cfg.NumThreads))
		wctx.SetBeamSize(w.cfg.BeamSize)
		language := w.cfg.Language
		if w.cfg.detectLanguage() {
			language = "auto"
		}
		if err := wctx.SetLanguage(language); err != nil {
			return lang, fmt.Errorf("failed to set language: %w", err)
		}

		offset := reg.start
		var cbErr error
		segCB := func(seg whisperpkg.Segment) {
			if cbErr != nil {
				return
			}
			cbErr = onSegment(Segment{
				Start: offset + seg.Start.Seconds(),
				End:   offset + seg.End.Seconds(),
				Text:  seg.Text,
			})
		}
		// Cancellation between encoder runs; whisper cannot be interrupted
		// mid-inference-step.
		encoderBegin := func() bool {
			return ctx.Err() == nil && cbErr == nil
		}

		if err := wctx.Process(samples[s:e], encoderBegin, segCB, nil); err != nil {
			return lang, fmt.Errorf("failed to process audio: %w", err)
		}
		if cbErr != nil {
			return lang, cbErr
		}

		if l := wctx.DetectedLanguage(); l != "" {
			lang = l
		} else if lang == "" {
			lang = wctx.Language()
		}
	}

	return lang, nil
}
