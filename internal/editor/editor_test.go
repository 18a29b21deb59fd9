package editor

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Bertii1/Audio-Recording-Library/internal/audio"
	"github.com/Bertii1/Audio-Recording-Library/internal/codec"
)

// loadedEditor returns an editor holding a mono buffer of the given duration
// at 1kHz, bypassing the codec layer.
func loadedEditor(t *testing.T, dur time.Duration, val float32) *Editor {
	t.Helper()
	frames := int(dur.Seconds() * 1000)
	samples := make([]float32, frames)
	for i := range samples {
		samples[i] = val
	}
	e := New()
	e.buf = audio.New(samples, 1000, 1)
	e.loaded = true
	return e
}

func TestUnloadedEditor(t *testing.T) {
	e := New()

	require.False(t, e.IsLoaded())
	require.ErrorIs(t, e.Trim(0, time.Second), ErrNoBuffer)
	require.ErrorIs(t, e.Cut(0, time.Second), ErrNoBuffer)
	require.ErrorIs(t, e.Normalize(DefaultNormalizeDBFS), ErrNoBuffer)
	require.ErrorIs(t, e.ChangeVolume(3), ErrNoBuffer)
	require.ErrorIs(t, e.Export(context.Background(), "/tmp/out.wav", codec.FormatWAV, ""), ErrNoBuffer)
	require.Nil(t, e.Split([]time.Duration{time.Second}))
	require.Nil(t, e.WaveformSummary(800))
	require.False(t, e.Undo())
	require.False(t, e.Redo())
}

func TestLoadFailureLeavesEditorUntouched(t *testing.T) {
	e := New()
	err := e.Load(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	require.Error(t, err)
	require.False(t, e.IsLoaded())
}

func TestTrimAndUndo(t *testing.T) {
	e := loadedEditor(t, 10*time.Second, 0.5)

	require.NoError(t, e.Trim(2*time.Second, 8*time.Second))
	require.Equal(t, 6*time.Second, e.Duration())

	require.True(t, e.Undo())
	require.Equal(t, 10*time.Second, e.Duration())
}

func TestTrimClampsBounds(t *testing.T) {
	e := loadedEditor(t, 10*time.Second, 0.5)
	require.NoError(t, e.Trim(-5*time.Second, time.Hour))
	require.Equal(t, 10*time.Second, e.Duration())
}

func TestCut(t *testing.T) {
	e := loadedEditor(t, 10*time.Second, 0.5)
	require.NoError(t, e.Cut(time.Second, 3*time.Second))
	require.Equal(t, 8*time.Second, e.Duration())
}

func TestSplit(t *testing.T) {
	t.Run("two interior points", func(t *testing.T) {
		e := loadedEditor(t, 10*time.Second, 0.5)
		parts := e.Split([]time.Duration{3 * time.Second, 7 * time.Second})
		require.Len(t, parts, 3)
		require.Equal(t, 3*time.Second, parts[0].Duration())
		require.Equal(t, 4*time.Second, parts[1].Duration())
		require.Equal(t, 3*time.Second, parts[2].Duration())
	})

	t.Run("points outside are discarded, duplicates collapse", func(t *testing.T) {
		e := loadedEditor(t, 10*time.Second, 0.5)
		parts := e.Split([]time.Duration{
			-time.Second, 0, 5 * time.Second, 5 * time.Second, 10 * time.Second, time.Hour,
		})
		require.Len(t, parts, 2)
		require.Equal(t, 5*time.Second, parts[0].Duration())
		require.Equal(t, 5*time.Second, parts[1].Duration())
	})

	t.Run("no valid points yields whole buffer", func(t *testing.T) {
		e := loadedEditor(t, 10*time.Second, 0.5)
		parts := e.Split(nil)
		require.Len(t, parts, 1)
		require.Equal(t, 10*time.Second, parts[0].Duration())
	})

	t.Run("durations sum to original", func(t *testing.T) {
		e := loadedEditor(t, 10*time.Second, 0.5)
		parts := e.Split([]time.Duration{
			1500 * time.Millisecond, 4200 * time.Millisecond, 9999 * time.Millisecond,
		})
		var total time.Duration
		for _, p := range parts {
			total += p.Duration()
		}
		require.Equal(t, e.Duration(), total)
	})

	t.Run("does not record history", func(t *testing.T) {
		e := loadedEditor(t, 10*time.Second, 0.5)
		_ = e.Split([]time.Duration{5 * time.Second})
		require.False(t, e.CanUndo())
	})
}

func TestNormalize(t *testing.T) {
	t.Run("applies exact gain difference", func(t *testing.T) {
		// A constant signal at 10^(-10/20) sits at exactly -10 dBFS RMS;
		// normalizing to -20 must apply exactly -10 dB of gain.
		e := loadedEditor(t, time.Second, float32(math.Pow(10, -10.0/20)))
		require.InDelta(t, -10.0, e.Buffer().DBFS(), 0.001)

		require.NoError(t, e.Normalize(-20.0))
		require.InDelta(t, -20.0, e.Buffer().DBFS(), 0.001)
		// Applied gain was exactly target - current = -10 dB.
		require.InDelta(t, float64(e.Buffer().Samples()[0]),
			math.Pow(10, -10.0/20)*math.Pow(10, -10.0/20), 0.0001)
	})

	t.Run("silent buffer is untouched", func(t *testing.T) {
		e := loadedEditor(t, time.Second, 0)
		require.NoError(t, e.Normalize(-20.0))
		require.Equal(t, float32(0), e.Buffer().Samples()[0])
		require.True(t, e.CanUndo())
	})
}

func TestChangeVolume(t *testing.T) {
	e := loadedEditor(t, time.Second, 0.25)
	require.NoError(t, e.ChangeVolume(6.0))
	require.InDelta(t, 0.4989, float64(e.Buffer().Samples()[0]), 0.001)
	require.True(t, e.Undo())
	require.Equal(t, float32(0.25), e.Buffer().Samples()[0])
}

func TestUndoRedoInverses(t *testing.T) {
	e := loadedEditor(t, 10*time.Second, 0.5)

	require.NoError(t, e.Trim(0, 5*time.Second))
	require.NoError(t, e.Cut(time.Second, 2*time.Second))
	require.Equal(t, 4*time.Second, e.Duration())

	// undo(); redo() restores the pre-undo state.
	require.True(t, e.Undo())
	require.Equal(t, 5*time.Second, e.Duration())
	require.True(t, e.Redo())
	require.Equal(t, 4*time.Second, e.Duration())

	// redo(); undo() restores the pre-redo state.
	require.True(t, e.Undo())
	require.True(t, e.Undo())
	require.Equal(t, 10*time.Second, e.Duration())
	require.False(t, e.Undo())
}

func TestUndoRestoresBitIdenticalBuffer(t *testing.T) {
	e := loadedEditor(t, 2*time.Second, 0.3)
	original := e.Buffer().Samples()

	require.NoError(t, e.ChangeVolume(-3))
	require.NoError(t, e.Trim(0, time.Second))
	require.NoError(t, e.Normalize(-20))

	require.True(t, e.Undo())
	require.True(t, e.Undo())
	require.True(t, e.Undo())
	require.Equal(t, original, e.Buffer().Samples())
}

func TestUndoBound(t *testing.T) {
	e := loadedEditor(t, 60*time.Second, 0.5)

	// 25 edits on a fresh buffer with bound 20: exactly 20 undos succeed.
	for i := 0; i < 25; i++ {
		require.NoError(t, e.Trim(0, e.Duration()-time.Second))
	}
	require.Equal(t, 35*time.Second, e.Duration())

	succeeded := 0
	for i := 0; i < 25; i++ {
		if e.Undo() {
			succeeded++
		}
	}
	require.Equal(t, MaxUndo, succeeded)
	// Only the most recent 20 edits were retained.
	require.Equal(t, 55*time.Second, e.Duration())

	// Further undo calls keep failing without altering the buffer.
	require.False(t, e.Undo())
	require.Equal(t, 55*time.Second, e.Duration())
}

func TestNewEditClearsRedo(t *testing.T) {
	e := loadedEditor(t, 10*time.Second, 0.5)

	require.NoError(t, e.Trim(0, 5*time.Second))
	require.True(t, e.Undo())
	require.True(t, e.CanRedo())

	require.NoError(t, e.Cut(0, time.Second))
	require.False(t, e.CanRedo())
	require.False(t, e.Redo())
}

func TestLoadResetsHistory(t *testing.T) {
	e := loadedEditor(t, 10*time.Second, 0.5)
	require.NoError(t, e.Trim(0, 5*time.Second))
	require.True(t, e.CanUndo())

	path := filepath.Join(t.TempDir(), "next.wav")
	require.NoError(t, e.Export(context.Background(), path, codec.FormatWAV, ""))

	require.NoError(t, e.Load(context.Background(), path))
	require.False(t, e.CanUndo())
	require.False(t, e.CanRedo())
}

func TestExportParts(t *testing.T) {
	e := loadedEditor(t, 6*time.Second, 0.5)
	parts := e.Split([]time.Duration{2 * time.Second, 4 * time.Second})
	require.Len(t, parts, 3)

	dir := t.TempDir()
	paths := e.ExportParts(context.Background(), parts, dir, "take", codec.FormatWAV)
	require.Len(t, paths, 3)
	require.Equal(t, filepath.Join(dir, "take_part001.wav"), paths[0])
	require.Equal(t, filepath.Join(dir, "take_part002.wav"), paths[1])
	require.Equal(t, filepath.Join(dir, "take_part003.wav"), paths[2])
}

func TestExportPartsSkipsFailures(t *testing.T) {
	e := loadedEditor(t, 4*time.Second, 0.5)
	parts := e.Split([]time.Duration{2 * time.Second})
	// An empty part cannot be encoded and must be skipped.
	parts = append([]audio.Buffer{{}}, parts...)

	paths := e.ExportParts(context.Background(), parts, t.TempDir(), "take", codec.FormatWAV)
	require.Len(t, paths, 2)
	require.Contains(t, paths[0], "take_part002.wav")
}
