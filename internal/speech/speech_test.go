package speech

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigIsValid(t *testing.T) {
	tcs := []struct {
		name string
		cfg  Config
		err  string
	}{
		{
			name: "empty config",
			err:  "invalid empty config",
		},
		{
			name: "invalid backend",
			cfg: Config{
				Backend:    "azure",
				ModelSize:  ModelSizeBase,
				NumThreads: 1,
				BeamSize:   5,
			},
			err: `invalid Backend "azure"`,
		},
		{
			name: "invalid model size",
			cfg: Config{
				Backend:    BackendWhisperCPP,
				ModelSize:  "huge",
				NumThreads: 1,
				BeamSize:   5,
			},
			err: `invalid ModelSize "huge"`,
		},
		{
			name: "invalid threads",
			cfg: Config{
				Backend:    BackendWhisperCPP,
				ModelSize:  ModelSizeBase,
				NumThreads: runtime.NumCPU() + 1,
				BeamSize:   5,
			},
			err: fmt.Sprintf("invalid NumThreads: should be in the range [1, %d]", runtime.NumCPU()),
		},
		{
			name: "invalid beam size",
			cfg: Config{
				Backend:    BackendWhisperCPP,
				ModelSize:  ModelSizeBase,
				NumThreads: 1,
				BeamSize:   -1,
			},
			err: "invalid BeamSize: should be a positive number",
		},
		{
			name: "valid",
			cfg: Config{
				Backend:    BackendFasterWhisper,
				ModelSize:  ModelSizeLargeV3,
				NumThreads: 1,
				BeamSize:   5,
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.IsValid()
			if tc.err != "" {
				require.EqualError(t, err, tc.err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfigSetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()

	require.Equal(t, BackendWhisperCPP, cfg.Backend)
	require.Equal(t, ModelSizeBase, cfg.ModelSize)
	require.Equal(t, "auto", cfg.Language)
	require.Equal(t, "cpu", cfg.Device)
	require.Equal(t, "int8", cfg.ComputeType)
	require.Equal(t, 5, cfg.BeamSize)
	require.GreaterOrEqual(t, cfg.NumThreads, 1)
	require.NoError(t, cfg.IsValid())
}

func TestConfigDetectLanguage(t *testing.T) {
	require.True(t, Config{}.detectLanguage())
	require.True(t, Config{Language: "auto"}.detectLanguage())
	require.False(t, Config{Language: "it"}.detectLanguage())
}

func TestMapHelperError(t *testing.T) {
	require.ErrorIs(t, mapHelperError("ModuleNotFoundError: No module named 'faster_whisper'"), ErrBackendUnavailable)
	require.NotErrorIs(t, mapHelperError("cuda out of memory"), ErrBackendUnavailable)
	require.Error(t, mapHelperError(""))
}
