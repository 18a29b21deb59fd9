package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Bertii1/Audio-Recording-Library/internal/library"
)

func NewImportCmd(deps *Dependencies) *cobra.Command {
	var tags []string

	cmd := &cobra.Command{
		Use:   "import <path>...",
		Short: "Import audio files or folders into the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var imported int

			for _, path := range args {
				fi, err := os.Stat(path)
				if err != nil {
					return fmt.Errorf("failed to stat %q: %w", path, err)
				}

				if fi.IsDir() {
					files, err := deps.Library.ImportFolder(ctx, path)
					if err != nil {
						return err
					}
					for _, f := range files {
						for _, tag := range tags {
							if err := deps.Store.TagAudio(ctx, f.ID, tag); err != nil {
								return err
							}
						}
						fmt.Fprintf(cmd.OutOrStdout(), "imported %s (id %d)\n", f.Path, f.ID)
						imported++
					}
					continue
				}

				f, err := deps.Library.ImportFile(ctx, path)
				if errors.Is(err, library.ErrDuplicate) {
					fmt.Fprintf(cmd.OutOrStdout(), "skipped %s: already in library (id %d)\n", path, f.ID)
					continue
				}
				if err != nil {
					return err
				}
				for _, tag := range tags {
					if err := deps.Store.TagAudio(ctx, f.ID, tag); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %s (id %d)\n", f.Path, f.ID)
				imported++
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d file(s) imported\n", imported)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag(s) to apply to imported files")

	return cmd
}
