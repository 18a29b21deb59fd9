// Package editor implements non-destructive audio editing over in-memory
// buffers with bounded snapshot undo/redo.
//
// An Editor is meant to be driven serially by a single caller; it performs no
// internal locking.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Bertii1/Audio-Recording-Library/internal/audio"
	"github.com/Bertii1/Audio-Recording-Library/internal/codec"
)

// DefaultNormalizeDBFS is the loudness target used when none is given.
const DefaultNormalizeDBFS = -20.0

// ErrNoBuffer is returned by every mutating operation when no audio is loaded.
var ErrNoBuffer = errors.New("no audio loaded")

type Editor struct {
	buf    audio.Buffer
	loaded bool
	path   string
	hist   history
}

func New() *Editor {
	return &Editor{}
}

// Load decodes the file at path and makes it the current buffer, discarding
// any previous buffer and its entire edit history.
func (e *Editor) Load(ctx context.Context, path string) error {
	buf, err := codec.Decode(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to load %q: %w", filepath.Base(path), err)
	}
	e.buf = buf
	e.loaded = true
	e.path = path
	e.hist.reset()
	return nil
}

func (e *Editor) IsLoaded() bool { return e.loaded }

func (e *Editor) Path() string { return e.path }

// Buffer returns the current buffer value.
func (e *Editor) Buffer() audio.Buffer { return e.buf }

func (e *Editor) Duration() time.Duration { return e.buf.Duration() }

func (e *Editor) CanUndo() bool { return e.hist.canUndo() }
func (e *Editor) CanRedo() bool { return e.hist.canRedo() }

// Undo restores the most recent snapshot, donating the current buffer to the
// redo stack. It reports whether anything changed.
func (e *Editor) Undo() bool {
	if !e.loaded {
		return false
	}
	prev, ok := e.hist.popUndo(e.buf)
	if !ok {
		return false
	}
	e.buf = prev
	return true
}

// Redo restores the most recently undone state, donating the current buffer
// to the undo stack. It reports whether anything changed.
func (e *Editor) Redo() bool {
	if !e.loaded {
		return false
	}
	next, ok := e.hist.popRedo(e.buf)
	if !ok {
		return false
	}
	e.buf = next
	return true
}

// Trim replaces the buffer with the sub-range [start, end). Out-of-range
// bounds are clamped to the buffer duration.
func (e *Editor) Trim(start, end time.Duration) error {
	if !e.loaded {
		return ErrNoBuffer
	}
	e.hist.record("trim", e.buf)
	e.buf = e.buf.Slice(start, end)
	return nil
}

// Cut removes the range [start, end), joining what surrounds it.
func (e *Editor) Cut(start, end time.Duration) error {
	if !e.loaded {
		return ErrNoBuffer
	}
	e.hist.record("cut", e.buf)
	before := e.buf.Slice(0, start)
	after := e.buf.Slice(end, e.buf.Duration())
	e.buf = before.Concat(after)
	return nil
}

// Split cuts the buffer at the given points and returns the consecutive
// parts. Points are deduplicated, sorted and restricted to the open interval
// (0, duration); with no valid points the whole buffer is returned as a
// single part. Split records no history: the current buffer is not mutated.
func (e *Editor) Split(points []time.Duration) []audio.Buffer {
	if !e.loaded {
		return nil
	}

	uniq := make(map[time.Duration]struct{}, len(points))
	for _, p := range points {
		uniq[p] = struct{}{}
	}
	sorted := make([]time.Duration, 0, len(uniq))
	for p := range uniq {
		sorted = append(sorted, p)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	dur := e.buf.Duration()
	var parts []audio.Buffer
	prev := time.Duration(0)
	for _, p := range sorted {
		if p <= 0 || p >= dur {
			continue
		}
		parts = append(parts, e.buf.Slice(prev, p))
		prev = p
	}
	parts = append(parts, e.buf.Slice(prev, dur))
	return parts
}

// Normalize applies the uniform gain that brings the buffer loudness to
// targetDBFS. A fully silent buffer is left as is.
func (e *Editor) Normalize(targetDBFS float64) error {
	if !e.loaded {
		return ErrNoBuffer
	}
	e.hist.record("normalize", e.buf)
	current := e.buf.DBFS()
	if math.IsInf(current, -1) {
		return nil
	}
	e.buf = e.buf.ApplyGain(targetDBFS - current)
	return nil
}

// ChangeVolume applies a uniform gain of db decibels.
func (e *Editor) ChangeVolume(db float64) error {
	if !e.loaded {
		return ErrNoBuffer
	}
	e.hist.record("volume", e.buf)
	e.buf = e.buf.ApplyGain(db)
	return nil
}

// Export encodes the current buffer to path. History is never touched.
func (e *Editor) Export(ctx context.Context, path string, format codec.Format, bitrate string) error {
	if !e.loaded {
		return ErrNoBuffer
	}
	return codec.Encode(ctx, e.buf, path, format, bitrate)
}

// ExportParts encodes each part to outputDir as baseName_partNNN.format,
// 1-indexed. A part that fails to encode is skipped; the returned slice holds
// only the paths that were written.
func (e *Editor) ExportParts(ctx context.Context, parts []audio.Buffer, outputDir, baseName string, format codec.Format) []string {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		slog.Error("failed to create output dir", slog.String("dir", outputDir), slog.String("err", err.Error()))
		return nil
	}

	var paths []string
	for i, part := range parts {
		name := fmt.Sprintf("%s_part%03d.%s", baseName, i+1, format)
		path := filepath.Join(outputDir, name)
		if err := codec.Encode(ctx, part, path, format, ""); err != nil {
			slog.Error("failed to export part", slog.String("path", path), slog.String("err", err.Error()))
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

// WaveformSummary returns the peak summary of the current buffer, or nil when
// nothing is loaded.
func (e *Editor) WaveformSummary(numPoints int) []float64 {
	if !e.loaded {
		return nil
	}
	return e.buf.WaveformSummary(numPoints)
}
