package codec

import (
	"fmt"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/Bertii1/Audio-Recording-Library/internal/audio"
)

func decodeWAV(path string) (audio.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to open wav file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return audio.Buffer{}, fmt.Errorf("invalid wav file %q", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to read wav data: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return audio.Buffer{}, fmt.Errorf("empty wav file %q", path)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	max := float32(int(1) << (bitDepth - 1))

	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) / max
	}

	rate := int(dec.SampleRate)
	channels := int(dec.NumChans)
	if buf.Format != nil {
		if rate == 0 {
			rate = buf.Format.SampleRate
		}
		if channels == 0 {
			channels = buf.Format.NumChannels
		}
	}
	if rate == 0 || channels == 0 {
		return audio.Buffer{}, fmt.Errorf("wav file %q has no format information", path)
	}

	return audio.New(samples, rate, channels), nil
}

func encodeWAV(buf audio.Buffer, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create wav file: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, buf.SampleRate(), 16, buf.Channels(), 1)

	samples := buf.Samples()
	data := make([]int, len(samples))
	for i, s := range samples {
		v := int(s * 32767)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		data[i] = v
	}

	ib := &gaudio.IntBuffer{
		Format: &gaudio.Format{
			NumChannels: buf.Channels(),
			SampleRate:  buf.SampleRate(),
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(ib); err != nil {
		return fmt.Errorf("failed to write wav data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize wav file: %w", err)
	}
	return nil
}
