package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func parseAudioID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid audio id %q", arg)
	}
	return id, nil
}

func NewRemoveCmd(deps *Dependencies) *cobra.Command {
	var deleteFile bool

	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a recording from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAudioID(args[0])
			if err != nil {
				return err
			}
			if err := deps.Library.Remove(cmd.Context(), id, deleteFile); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed recording %d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&deleteFile, "delete-file", false, "also delete the audio file on disk")

	return cmd
}

func NewRenameCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <new-name>",
		Short: "Rename a recording on disk and in the library",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAudioID(args[0])
			if err != nil {
				return err
			}
			f, err := deps.Library.Rename(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "renamed to %s\n", f.Path)
			return nil
		},
	}
}

func NewTagCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage recording tags",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <id> <tag>...",
		Short: "Add tags to a recording",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAudioID(args[0])
			if err != nil {
				return err
			}
			for _, tag := range args[1:] {
				if err := deps.Store.TagAudio(cmd.Context(), id, tag); err != nil {
					return err
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id> <tag>...",
		Short: "Remove tags from a recording",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAudioID(args[0])
			if err != nil {
				return err
			}
			for _, tag := range args[1:] {
				if err := deps.Store.UntagAudio(cmd.Context(), id, tag); err != nil {
					return err
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, err := deps.Store.ListTags(cmd.Context())
			if err != nil {
				return err
			}
			for _, t := range tags {
				fmt.Fprintln(cmd.OutOrStdout(), t.Name)
			}
			return nil
		},
	})

	return cmd
}
