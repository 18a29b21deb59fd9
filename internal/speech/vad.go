//go:build whisper_cpp

package speech

import (
	"fmt"
	"log/slog"
	"path/filepath"

	sv "github.com/streamer45/silero-vad-go/speech"
)

const (
	vadModelFile            = "silero_vad.onnx"
	vadWindowSizeInSamples  = 512
	vadThreshold            = 0.5
	vadMinSilenceDurationMs = 150
	vadMinSpeechDurationMs  = 200
	vadSilencePadMs         = 32
)

// speechRegion is a contiguous run of detected speech, in seconds from the
// start of the audio.
type speechRegion struct {
	start float64
	end   float64
}

// detectSpeechRegions runs the silero VAD over mono PCM and returns the
// speech spans. Timestamps emitted by whisper for a region are later offset
// by the region start, which is how non-speech audio gets skipped without
// shifting the transcript timeline.
func detectSpeechRegions(modelsDir string, samples []float32, sampleRate int) ([]speechRegion, error) {
	sd, err := sv.NewDetector(sv.DetectorConfig{
		ModelPath:            filepath.Join(modelsDir, vadModelFile),
		SampleRate:           sampleRate,
		WindowSize:           vadWindowSizeInSamples,
		Threshold:            vadThreshold,
		MinSilenceDurationMs: vadMinSilenceDurationMs,
		MinSpeechDurationMs:  vadMinSpeechDurationMs,
		SilencePadMs:         vadSilencePadMs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create speech detector: %w", err)
	}
	defer func() {
		if err := sd.Destroy(); err != nil {
			slog.Error("failed to destroy speech detector", slog.String("err", err.Error()))
		}
	}()

	segs, err := sd.Detect(samples)
	if err != nil {
		return nil, fmt.Errorf("speech detection failed: %w", err)
	}

	total := float64(len(samples)) / float64(sampleRate)
	regions := make([]speechRegion, 0, len(segs))
	for _, s := range segs {
		end := s.SpeechEndAt
		if end <= s.SpeechStartAt {
			// Speech still ongoing at end of audio.
			end = total
		}
		regions = append(regions, speechRegion{start: s.SpeechStartAt, end: end})
	}
	return regions, nil
}
