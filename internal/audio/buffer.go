// Package audio provides the in-memory representation of decoded audio.
//
// A Buffer is treated as a value: every transformation returns a new Buffer
// and never mutates the receiver, so snapshots handed to the edit history
// stay frozen.
package audio

import (
	"math"
	"time"
)

// Buffer holds interleaved 32-bit float PCM samples in the [-1, 1] range.
// The zero value is an empty, unloaded buffer.
type Buffer struct {
	samples  []float32
	rate     int
	channels int
}

func New(samples []float32, rate, channels int) Buffer {
	if rate <= 0 || channels <= 0 || len(samples) == 0 {
		return Buffer{}
	}
	return Buffer{samples: samples, rate: rate, channels: channels}
}

func (b Buffer) IsEmpty() bool {
	return len(b.samples) == 0
}

// Samples returns the underlying interleaved samples. Callers must treat the
// returned slice as read-only.
func (b Buffer) Samples() []float32 {
	return b.samples
}

func (b Buffer) SampleRate() int {
	return b.rate
}

func (b Buffer) Channels() int {
	return b.channels
}

// NumFrames returns the number of sample frames (one sample per channel).
func (b Buffer) NumFrames() int {
	if b.channels == 0 {
		return 0
	}
	return len(b.samples) / b.channels
}

func (b Buffer) Duration() time.Duration {
	if b.rate == 0 {
		return 0
	}
	return time.Duration(b.NumFrames()) * time.Second / time.Duration(b.rate)
}

// frameAt converts an offset into a frame index clamped to [0, NumFrames].
// Integer arithmetic keeps offsets that fall exactly on a frame boundary from
// truncating one frame short.
func (b Buffer) frameAt(d time.Duration) int {
	if d < 0 {
		return 0
	}
	f := int(int64(d) * int64(b.rate) / int64(time.Second))
	if n := b.NumFrames(); f > n {
		return n
	}
	return f
}

// Slice returns the sub-range [start, end). Out-of-range offsets are clamped
// to the buffer bounds; an inverted range yields an empty buffer.
func (b Buffer) Slice(start, end time.Duration) Buffer {
	if b.IsEmpty() {
		return Buffer{}
	}
	s := b.frameAt(start) * b.channels
	e := b.frameAt(end) * b.channels
	if s >= e {
		return Buffer{}
	}
	out := make([]float32, e-s)
	copy(out, b.samples[s:e])
	return Buffer{samples: out, rate: b.rate, channels: b.channels}
}

// Concat appends other after b. Both buffers must share sample rate and
// channel count; an empty side passes through unchanged.
func (b Buffer) Concat(other Buffer) Buffer {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}
	out := make([]float32, 0, len(b.samples)+len(other.samples))
	out = append(out, b.samples...)
	out = append(out, other.samples...)
	return Buffer{samples: out, rate: b.rate, channels: b.channels}
}

// ApplyGain returns a copy with a uniform gain of db decibels applied to
// every sample, clipped to the [-1, 1] range.
func (b Buffer) ApplyGain(db float64) Buffer {
	if b.IsEmpty() {
		return Buffer{}
	}
	factor := float32(math.Pow(10, db/20))
	out := make([]float32, len(b.samples))
	for i, s := range b.samples {
		v := s * factor
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		out[i] = v
	}
	return Buffer{samples: out, rate: b.rate, channels: b.channels}
}

// DBFS returns the RMS loudness in decibels relative to full scale.
// A silent or empty buffer yields -Inf.
func (b Buffer) DBFS() float64 {
	if b.IsEmpty() {
		return math.Inf(-1)
	}
	var sum float64
	for _, s := range b.samples {
		sum += float64(s) * float64(s)
	}
	rms := math.Sqrt(sum / float64(len(b.samples)))
	if rms == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(rms)
}

// Mono downmixes to a single channel by averaging the channels of each frame.
func (b Buffer) Mono() Buffer {
	if b.IsEmpty() || b.channels == 1 {
		return b
	}
	frames := b.NumFrames()
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < b.channels; c++ {
			sum += b.samples[i*b.channels+c]
		}
		out[i] = sum / float32(b.channels)
	}
	return Buffer{samples: out, rate: b.rate, channels: 1}
}

// Resample converts a mono buffer to the given rate using linear
// interpolation. Multi-channel buffers are downmixed first.
func (b Buffer) Resample(rate int) Buffer {
	if b.IsEmpty() || rate <= 0 {
		return Buffer{}
	}
	m := b.Mono()
	if m.rate == rate {
		return m
	}
	ratio := float64(rate) / float64(m.rate)
	outLen := int(float64(len(m.samples)) * ratio)
	if outLen < 1 {
		outLen = 1
	}
	out := make([]float32, outLen)
	for i := range out {
		srcPos := float64(i) / ratio
		i0 := int(srcPos)
		if i0 >= len(m.samples)-1 {
			out[i] = m.samples[len(m.samples)-1]
			continue
		}
		frac := float32(srcPos - float64(i0))
		out[i] = m.samples[i0] + (m.samples[i0+1]-m.samples[i0])*frac
	}
	return Buffer{samples: out, rate: rate, channels: 1}
}
