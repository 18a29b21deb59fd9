package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Bertii1/Audio-Recording-Library/internal/codec"
	"github.com/Bertii1/Audio-Recording-Library/internal/speech"
)

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			check := func(name string, ok bool, detail string) {
				mark := "ok"
				if !ok {
					mark = "MISSING"
				}
				fmt.Fprintf(out, "%-24s %-8s %s\n", name, mark, detail)
			}

			if codec.FFmpegAvailable() {
				check("ffmpeg", true, "installed (mp3/m4a/flac/ogg supported)")
			} else {
				check("ffmpeg", false, "not found; only wav files will work")
			}

			if fi, err := os.Stat(deps.Config.ModelsDir); err == nil && fi.IsDir() {
				check("models directory", true, deps.Config.ModelsDir)

				modelFile := filepath.Join(deps.Config.ModelsDir,
					fmt.Sprintf("ggml-%s.bin", deps.Config.Transcription.ModelSize))
				if _, err := os.Stat(modelFile); err == nil {
					check("speech model", true, modelFile)
				} else {
					check("speech model", false, modelFile+" not found")
				}
			} else {
				check("models directory", false, deps.Config.ModelsDir+" does not exist")
			}

			t, err := speech.NewTranscriber(deps.Config.Transcription)
			if err != nil {
				check("speech backend", false, err.Error())
			} else {
				t.Close()
				check("speech backend", true, string(deps.Config.Transcription.Backend))
			}

			if _, err := os.Stat(deps.Config.DatabasePath); err == nil {
				check("database", true, deps.Config.DatabasePath)
			} else {
				check("database", true, deps.Config.DatabasePath+" (will be created)")
			}

			return nil
		},
	}
}
