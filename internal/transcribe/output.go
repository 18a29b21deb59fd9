package transcribe

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// srtTS converts seconds into the HH:MM:SS,mmm subtitle timestamp format.
func srtTS(seconds float64) string {
	ts := int64(math.Round(seconds * 1000))
	if ts < 0 {
		ts = 0
	}

	sMs := int64(1000)
	mMs := 60 * sMs
	hMs := 60 * mMs

	h := ts / hMs
	m := (ts - (h * hMs)) / mMs
	s := ((ts - (h * hMs)) - m*mMs) / sMs
	ms := ((ts - (h * hMs)) - m*mMs) - s*sMs

	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// Text writes the full text verbatim.
func (r Result) Text(w io.Writer) error {
	if _, err := io.WriteString(w, r.FullText); err != nil {
		return fmt.Errorf("failed to write: %w", err)
	}
	return nil
}

// SRT writes sequential subtitle blocks, one per segment, 1-indexed.
func (r Result) SRT(w io.Writer) error {
	for i, s := range r.Segments {
		_, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n", i+1, srtTS(s.Start), srtTS(s.End), s.Text)
		if err != nil {
			return fmt.Errorf("failed to write: %w", err)
		}
	}
	return nil
}

// JSON writes the full result. HTML escaping is disabled so non-ASCII text
// is preserved exactly.
func (r Result) JSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode: %w", err)
	}
	return nil
}
