// Package codec implements the audio decode/encode capability. WAV files are
// handled natively; every other supported container goes through an ffmpeg
// subprocess.
package codec

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Bertii1/Audio-Recording-Library/internal/audio"
)

type Format string

const (
	FormatMP3  Format = "mp3"
	FormatWAV  Format = "wav"
	FormatM4A  Format = "m4a"
	FormatFLAC Format = "flac"
	FormatOGG  Format = "ogg"
)

func (f Format) IsValid() bool {
	switch f {
	case FormatMP3, FormatWAV, FormatM4A, FormatFLAC, FormatOGG:
		return true
	default:
		return false
	}
}

// ParseFormat normalizes a user supplied format name or file extension.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	if !f.IsValid() {
		return "", fmt.Errorf("unsupported audio format %q", s)
	}
	return f, nil
}

// FormatForPath derives the format from a file extension.
func FormatForPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// IsAudioPath reports whether the file extension is a supported container.
func IsAudioPath(path string) bool {
	_, err := FormatForPath(path)
	return err == nil
}

// Decode reads the file at path into a Buffer.
func Decode(ctx context.Context, path string) (audio.Buffer, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return audio.Buffer{}, err
	}
	if format == FormatWAV {
		return decodeWAV(path)
	}
	return ffmpegDecode(ctx, path)
}

// Encode writes buf to path in the given format. The bitrate hint (e.g.
// "192k") only applies to mp3 output.
func Encode(ctx context.Context, buf audio.Buffer, path string, format Format, bitrate string) error {
	if buf.IsEmpty() {
		return fmt.Errorf("cannot encode an empty buffer")
	}
	if !format.IsValid() {
		return fmt.Errorf("unsupported audio format %q", format)
	}
	if format == FormatWAV {
		return encodeWAV(buf, path)
	}
	return ffmpegEncode(ctx, buf, path, format, bitrate)
}

// Info describes an audio file without keeping its samples around.
type Info struct {
	Duration   time.Duration
	SampleRate int
	Channels   int
}

// Probe decodes the file and reports its characteristics.
func Probe(ctx context.Context, path string) (Info, error) {
	buf, err := Decode(ctx, path)
	if err != nil {
		return Info{}, err
	}
	return Info{
		Duration:   buf.Duration(),
		SampleRate: buf.SampleRate(),
		Channels:   buf.Channels(),
	}, nil
}
