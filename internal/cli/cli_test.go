package cli

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Bertii1/Audio-Recording-Library/internal/audio"
	"github.com/Bertii1/Audio-Recording-Library/internal/codec"
	"github.com/Bertii1/Audio-Recording-Library/internal/config"
	"github.com/Bertii1/Audio-Recording-Library/internal/library"
	"github.com/Bertii1/Audio-Recording-Library/internal/speech"
	"github.com/Bertii1/Audio-Recording-Library/internal/store"
)

func newTestDeps(t *testing.T) *Dependencies {
	t.Helper()
	dir := t.TempDir()

	s, err := store.Open(filepath.Join(dir, "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	cfg := config.Config{
		DatabasePath: filepath.Join(dir, "library.db"),
		ModelsDir:    filepath.Join(dir, "models"),
		ExportDir:    filepath.Join(dir, "exports"),
	}
	cfg.SetDefaults()

	return &Dependencies{
		Store:   s,
		Library: library.NewManager(s),
		Config:  &cfg,
	}
}

func writeTestWAV(t *testing.T, path string) {
	t.Helper()
	samples := make([]float32, 44100)
	for i := range samples {
		samples[i] = float32(i%100) / 200
	}
	buf := audio.New(samples, 44100, 1)
	require.NoError(t, codec.Encode(context.Background(), buf, path, codec.FormatWAV, ""))
}

func runCmd(t *testing.T, deps *Dependencies, args ...string) (string, error) {
	t.Helper()
	return runCmdCtx(t, context.Background(), deps, args...)
}

func runCmdCtx(t *testing.T, ctx context.Context, deps *Dependencies, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd(deps)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func TestImportListRemove(t *testing.T) {
	deps := newTestDeps(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "meeting.wav")
	writeTestWAV(t, path)

	out, err := runCmd(t, deps, "import", path, "--tag", "work")
	require.NoError(t, err)
	require.Contains(t, out, "1 file(s) imported")

	out, err = runCmd(t, deps, "list")
	require.NoError(t, err)
	require.Contains(t, out, "meeting")
	require.Contains(t, out, "work")

	t.Run("filter by tag", func(t *testing.T) {
		out, err := runCmd(t, deps, "list", "--tag", "personal")
		require.NoError(t, err)
		require.Contains(t, out, "no recordings found")
	})

	t.Run("remove", func(t *testing.T) {
		_, err := runCmd(t, deps, "remove", "1")
		require.NoError(t, err)

		out, err := runCmd(t, deps, "list")
		require.NoError(t, err)
		require.Contains(t, out, "no recordings found")
	})
}

func TestEditTrim(t *testing.T) {
	deps := newTestDeps(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "meeting.wav")
	writeTestWAV(t, path)

	_, err := runCmd(t, deps, "import", path)
	require.NoError(t, err)

	outPath := filepath.Join(dir, "trimmed.wav")
	out, err := runCmd(t, deps, "edit", "trim", "1",
		"--start", "0s", "--end", "500ms", "--out", outPath)
	require.NoError(t, err)
	require.Contains(t, out, "exported "+outPath)

	buf, err := codec.Decode(context.Background(), outPath)
	require.NoError(t, err)
	require.Equal(t, 22050, buf.NumFrames())
}

func TestWaveform(t *testing.T) {
	deps := newTestDeps(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "meeting.wav")
	writeTestWAV(t, path)

	_, err := runCmd(t, deps, "import", path)
	require.NoError(t, err)

	out, err := runCmd(t, deps, "waveform", "1", "--points", "10")
	require.NoError(t, err)
	require.NotEmpty(t, out)
}

func TestFinishRunErr(t *testing.T) {
	t.Run("cancelled run is a clean exit", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, finishRunErr(&out, context.Canceled))
		require.Contains(t, out.String(), "transcription cancelled")
	})

	t.Run("backend unavailable", func(t *testing.T) {
		var out bytes.Buffer
		err := finishRunErr(&out, fmt.Errorf("%w: not built in", speech.ErrBackendUnavailable))
		require.ErrorIs(t, err, speech.ErrBackendUnavailable)
		require.Contains(t, err.Error(), "transcription is not available")
	})

	t.Run("runtime failure passes through", func(t *testing.T) {
		var out bytes.Buffer
		wantErr := fmt.Errorf("transcription failed: boom")
		require.Equal(t, wantErr, finishRunErr(&out, wantErr))
	})
}

func TestInvalidID(t *testing.T) {
	deps := newTestDeps(t)
	_, err := runCmd(t, deps, "remove", "abc")
	require.Error(t, err)
}
