package transcribe

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSRTTS(t *testing.T) {
	require.Equal(t, "00:00:00,000", srtTS(0))
	require.Equal(t, "00:00:01,000", srtTS(1))
	require.Equal(t, "00:00:00,999", srtTS(0.999))
	require.Equal(t, "00:00:01,100", srtTS(1.1))
	require.Equal(t, "00:01:10,000", srtTS(70))
	require.Equal(t, "00:01:02,200", srtTS(62.2))
	require.Equal(t, "01:00:00,000", srtTS(3600))
	require.Equal(t, "01:45:45,045", srtTS(6345.045))
	require.Equal(t, "00:00:00,000", srtTS(-1))
}

func TestResultText(t *testing.T) {
	r := Result{FullText: "ciao a tutti"}
	var sb strings.Builder
	require.NoError(t, r.Text(&sb))
	require.Equal(t, "ciao a tutti", sb.String())
}

func TestResultSRT(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var sb strings.Builder
		require.NoError(t, Result{}.SRT(&sb))
		require.Empty(t, sb.String())
	})

	t.Run("blocks", func(t *testing.T) {
		r := Result{
			Segments: []Segment{
				{Start: 0, End: 2.5, Text: "first line"},
				{Start: 2.5, End: 70.25, Text: "second line"},
			},
		}
		var sb strings.Builder
		require.NoError(t, r.SRT(&sb))

		expected := "1\n" +
			"00:00:00,000 --> 00:00:02,500\n" +
			"first line\n\n" +
			"2\n" +
			"00:00:02,500 --> 00:01:10,250\n" +
			"second line\n\n"
		require.Equal(t, expected, sb.String())
	})
}

func TestResultJSON(t *testing.T) {
	r := Result{
		FullText: "perché è così",
		Language: "it",
		Model:    "base",
		Segments: []Segment{{Start: 0, End: 1.5, Text: "perché è così"}},
	}

	var sb strings.Builder
	require.NoError(t, r.JSON(&sb))
	out := sb.String()

	// Non-ASCII text must survive verbatim, not as \u escapes.
	require.Contains(t, out, "perché è così")
	require.NotContains(t, out, `\u`)

	var back Result
	require.NoError(t, json.Unmarshal([]byte(out), &back))
	require.Equal(t, r, back)
}

func TestJoinText(t *testing.T) {
	require.Equal(t, "", joinText(nil))
	require.Equal(t, "a b c", joinText([]Segment{{Text: "a"}, {Text: "b"}, {Text: "c"}}))
}
