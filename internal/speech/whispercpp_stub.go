//go:build !whisper_cpp

package speech

import "fmt"

// Without the whisper_cpp build tag the native backend is not compiled in;
// only the faster-whisper subprocess backend can be used.
func newWhisperCPP(_ Config) (Transcriber, error) {
	return nil, fmt.Errorf("%w: binary was built without whisper.cpp support, rebuild with -tags whisper_cpp or use the %q backend",
		ErrBackendUnavailable, BackendFasterWhisper)
}
