package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Bertii1/Audio-Recording-Library/internal/speech"
	"github.com/Bertii1/Audio-Recording-Library/internal/transcribe"
)

// finishRunErr maps a terminal run error onto the command outcome.
// Interrupting a run is a normal way to stop it, not a failure; a missing
// backend gets an actionable message.
func finishRunErr(w io.Writer, err error) error {
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(w, "transcription cancelled")
		return nil
	}
	if errors.Is(err, speech.ErrBackendUnavailable) {
		return fmt.Errorf("transcription is not available: %w", err)
	}
	return err
}

func NewTranscribeCmd(deps *Dependencies) *cobra.Command {
	var (
		txtOut  string
		srtOut  string
		jsonOut string
	)

	cmd := &cobra.Command{
		Use:   "transcribe <id>",
		Short: "Transcribe a recording and store the transcript",
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

			// Ctrl-C cancels the run; the engine stops between segments.
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			engine := transcribe.NewEngine(deps.Config.Transcription)
			run := engine.Start(ctx, f.Path)

			for ev := range run.Events() {
				switch ev.Type {
				case transcribe.EventProgress:
					fmt.Fprintf(cmd.OutOrStdout(), "progress: %d%%\n", ev.Progress)
				case transcribe.EventSegment:
					fmt.Fprintf(cmd.OutOrStdout(), "[%7.2f - %7.2f] %s\n",
						ev.Segment.Start, ev.Segment.End, ev.Segment.Text)
				case transcribe.EventError:
					// The run error is reported below.
				}
			}
			<-run.Done()

			if err := run.Err(); err != nil {
				return finishRunErr(cmd.OutOrStdout(), err)
			}

			res := run.Result()
			if err := deps.Store.ReplaceTranscript(cmd.Context(), id, *res); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "transcribed %s (%d segments, language %s)\n",
				f.Title, len(res.Segments), res.Language)

			writeOut := func(path string, write func(*os.File) error) error {
				if path == "" {
					return nil
				}
				if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
					return fmt.Errorf("failed to create output dir: %w", err)
				}
				out, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				if err := write(out); err != nil {
					out.Close()
					return err
				}
				if err := out.Close(); err != nil {
					return fmt.Errorf("failed to close output file: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
				return nil
			}

			if err := writeOut(txtOut, func(f *os.File) error { return res.Text(f) }); err != nil {
				return err
			}
			if err := writeOut(srtOut, func(f *os.File) error { return res.SRT(f) }); err != nil {
				return err
			}
			return writeOut(jsonOut, func(f *os.File) error { return res.JSON(f) })
		},
	}

	cmd.Flags().StringVar(&txtOut, "txt", "", "also export the transcript as plain text to this path")
	cmd.Flags().StringVar(&srtOut, "srt", "", "also export the transcript as SRT subtitles to this path")
	cmd.Flags().StringVar(&jsonOut, "json", "", "also export the transcript as JSON to this path")

	return cmd
}

func NewShowTranscriptCmd(deps *Dependencies) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "transcript <id>",
		Short: "Print the stored transcript of a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAudioID(args[0])
			if err != nil {
				return err
			}
			res, err := deps.Store.GetTranscript(cmd.Context(), id)
			if err != nil {
				return err
			}
			switch strings.ToLower(format) {
			case "txt":
				return res.Text(cmd.OutOrStdout())
			case "srt":
				return res.SRT(cmd.OutOrStdout())
			case "json":
				return res.JSON(cmd.OutOrStdout())
			default:
				return fmt.Errorf("invalid format %q", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "txt", "output format: txt, srt or json")

	return cmd
}
