package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Bertii1/Audio-Recording-Library/internal/editor"
)

// waveformGlyphs maps normalized peaks onto terminal block characters.
var waveformGlyphs = []rune("▁▂▃▄▅▆▇█")

func NewWaveformCmd(deps *Dependencies) *cobra.Command {
	var points int

	cmd := &cobra.Command{
		Use:   "waveform <id>",
		Short: "Print a peak summary of a recording's waveform",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAudioID(args[0])
			if err != nil {
				return err
			}
			f, err := deps.Store.GetAudio(cmd.Context(), id)
			if err != nil {
				return err
			}

			e := editor.New()
			if err := e.Load(cmd.Context(), f.Path); err != nil {
				return err
			}

			peaks := e.WaveformSummary(points)
			var b strings.Builder
			for _, p := range peaks {
				idx := int(p * float64(len(waveformGlyphs)-1))
				b.WriteRune(waveformGlyphs[idx])
			}
			fmt.Fprintln(cmd.OutOrStdout(), b.String())
			return nil
		},
	}

	cmd.Flags().IntVar(&points, "points", 80, "number of peak points")

	return cmd
}
