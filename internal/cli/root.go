// Package cli wires the library, editor and transcription engine into cobra
// commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/Bertii1/Audio-Recording-Library/internal/config"
	"github.com/Bertii1/Audio-Recording-Library/internal/library"
	"github.com/Bertii1/Audio-Recording-Library/internal/store"
)

type Dependencies struct {
	Store   *store.Store
	Library *library.Manager
	Config  *config.Config
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "audiolib",
		Short:         "Manage, edit and transcribe a library of audio recordings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewImportCmd(deps))
	rootCmd.AddCommand(NewListCmd(deps))
	rootCmd.AddCommand(NewRemoveCmd(deps))
	rootCmd.AddCommand(NewRenameCmd(deps))
	rootCmd.AddCommand(NewTagCmd(deps))
	rootCmd.AddCommand(NewEditCmd(deps))
	rootCmd.AddCommand(NewTranscribeCmd(deps))
	rootCmd.AddCommand(NewShowTranscriptCmd(deps))
	rootCmd.AddCommand(NewWaveformCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))

	return rootCmd
}
