package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func NewListCmd(deps *Dependencies) *cobra.Command {
	var (
		query string
		tag   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List library recordings, optionally filtered by search query or tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := deps.Store.SearchAudio(cmd.Context(), query, tag)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no recordings found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tFORMAT\tDURATION\tTRANSCRIBED\tTAGS")
			for _, f := range files {
				tags, err := deps.Store.TagsForAudio(cmd.Context(), f.ID)
				if err != nil {
					return err
				}
				names := make([]string, 0, len(tags))
				for _, t := range tags {
					names = append(names, t.Name)
				}

				transcribed := "no"
				if f.IsTranscribed {
					transcribed = "yes"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					f.ID, f.Title, f.Format,
					f.Duration.Round(time.Second), transcribed, strings.Join(names, ","))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "match against titles and transcript text")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "only recordings carrying this tag")

	return cmd
}
