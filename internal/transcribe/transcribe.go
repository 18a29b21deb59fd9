// Package transcribe holds transcription value types, the asynchronous
// transcription engine and the transcript export formats.
package transcribe

import "strings"

// Segment is a contiguous span of transcribed speech. Timestamps are in
// seconds, rounded to two decimals, with End >= Start; segments are produced
// and stored in non-decreasing Start order.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is the immutable outcome of one successful transcription run. A
// later run over the same audio supersedes it wholesale.
type Result struct {
	FullText string    `json:"full_text"`
	Language string    `json:"language"`
	Model    string    `json:"model"`
	Segments []Segment `json:"segments"`
}

// joinText assembles the full text as the segment texts joined by single
// spaces.
func joinText(segments []Segment) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = s.Text
	}
	return strings.Join(parts, " ")
}
