package codec

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Bertii1/Audio-Recording-Library/internal/audio"
)

// FFmpegAvailable reports whether the ffmpeg binary can be found in PATH.
func FFmpegAvailable() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

func runFFmpeg(ctx context.Context, args ...string) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if len(msg) > 512 {
			msg = msg[len(msg)-512:]
		}
		return fmt.Errorf("ffmpeg failed: %w: %s", err, msg)
	}
	return nil
}

// ffmpegDecode converts the input to a temporary PCM wav file and decodes
// that, preserving the source sample rate and channel count.
func ffmpegDecode(ctx context.Context, path string) (audio.Buffer, error) {
	tmp, err := os.CreateTemp("", "audiolib-decode-*.wav")
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := runFFmpeg(ctx, "-y", "-i", path, "-acodec", "pcm_s16le", "-f", "wav", tmpPath); err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to decode %q: %w", filepath.Base(path), err)
	}

	return decodeWAV(tmpPath)
}

// ffmpegEncode writes buf to a temporary wav file and lets ffmpeg produce the
// requested container.
func ffmpegEncode(ctx context.Context, buf audio.Buffer, path string, format Format, bitrate string) error {
	tmp, err := os.CreateTemp("", "audiolib-encode-*.wav")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := encodeWAV(buf, tmpPath); err != nil {
		return err
	}

	args := []string{"-y", "-i", tmpPath}
	if format == FormatMP3 && bitrate != "" {
		args = append(args, "-b:a", bitrate)
	}
	args = append(args, "-f", muxerFor(format), path)

	if err := runFFmpeg(ctx, args...); err != nil {
		return fmt.Errorf("failed to encode %q: %w", filepath.Base(path), err)
	}
	return nil
}

func muxerFor(format Format) string {
	// m4a is an mp4 container as far as ffmpeg muxers go.
	if format == FormatM4A {
		return "mp4"
	}
	return string(format)
}
