package audio

// WaveformSummary reduces the buffer to at most numPoints peak values in the
// [0, 1] range for one-shot visualization. Stereo audio is downmixed by
// taking the left channel (even-indexed samples); peaks are normalized by the
// global maximum so the loudest chunk is exactly 1.0.
func (b Buffer) WaveformSummary(numPoints int) []float64 {
	if b.IsEmpty() || numPoints <= 0 {
		return nil
	}

	samples := b.samples
	if b.channels == 2 {
		mono := make([]float32, 0, (len(samples)+1)/2)
		for i := 0; i < len(samples); i += 2 {
			mono = append(mono, samples[i])
		}
		samples = mono
	}

	chunkSize := len(samples) / numPoints
	if chunkSize < 1 {
		chunkSize = 1
	}

	var points []float64
	for i := 0; i < len(samples); i += chunkSize {
		end := i + chunkSize
		if end > len(samples) {
			end = len(samples)
		}
		var peak float64
		for _, s := range samples[i:end] {
			v := float64(s)
			if v < 0 {
				v = -v
			}
			if v > peak {
				peak = v
			}
		}
		points = append(points, peak)
	}

	var max float64
	for _, p := range points {
		if p > max {
			max = p
		}
	}
	if max > 0 {
		for i := range points {
			points[i] /= max
		}
	}

	if len(points) > numPoints {
		points = points[:numPoints]
	}
	return points
}
