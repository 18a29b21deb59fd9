package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Bertii1/Audio-Recording-Library/internal/codec"
	"github.com/Bertii1/Audio-Recording-Library/internal/editor"
)

// loadEditor resolves the recording and loads it into a fresh editor.
func loadEditor(cmd *cobra.Command, deps *Dependencies, idArg string) (*editor.Editor, string, error) {
	id, err := parseAudioID(idArg)
	if err != nil {
		return nil, "", err
	}
	f, err := deps.Store.GetAudio(cmd.Context(), id)
	if err != nil {
		return nil, "", err
	}
	e := editor.New()
	if err := e.Load(cmd.Context(), f.Path); err != nil {
		return nil, "", err
	}
	return e, f.Path, nil
}

// exportEdited writes the edited buffer to out, defaulting to a "_edited"
// sibling of the source file under the configured export directory.
func exportEdited(cmd *cobra.Command, deps *Dependencies, e *editor.Editor, srcPath, out string) error {
	if out == "" {
		base := filepath.Base(srcPath)
		ext := filepath.Ext(base)
		out = filepath.Join(deps.Config.ExportDir,
			strings.TrimSuffix(base, ext)+"_edited"+ext)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	format, err := codec.FormatForPath(out)
	if err != nil {
		return err
	}
	if err := e.Export(cmd.Context(), out, format, ""); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %s\n", out)
	return nil
}

func NewEditCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit a recording and export the result",
	}

	var (
		start time.Duration
		end   time.Duration
		out   string
	)

	trimCmd := &cobra.Command{
		Use:   "trim <id>",
		Short: "Keep only the span between --start and --end",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, src, err := loadEditor(cmd, deps, args[0])
			if err != nil {
				return err
			}
			if err := e.Trim(start, end); err != nil {
				return err
			}
			return exportEdited(cmd, deps, e, src, out)
		},
	}
	trimCmd.Flags().DurationVar(&start, "start", 0, "span start (e.g. 1m30s)")
	trimCmd.Flags().DurationVar(&end, "end", 0, "span end")
	trimCmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	trimCmd.MarkFlagRequired("end")
	cmd.AddCommand(trimCmd)

	var (
		cutStart time.Duration
		cutEnd   time.Duration
		cutOut   string
	)
	cutCmd := &cobra.Command{
		Use:   "cut <id>",
		Short: "Remove the span between --start and --end",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, src, err := loadEditor(cmd, deps, args[0])
			if err != nil {
				return err
			}
			if err := e.Cut(cutStart, cutEnd); err != nil {
				return err
			}
			return exportEdited(cmd, deps, e, src, cutOut)
		},
	}
	cutCmd.Flags().DurationVar(&cutStart, "start", 0, "span start")
	cutCmd.Flags().DurationVar(&cutEnd, "end", 0, "span end")
	cutCmd.Flags().StringVarP(&cutOut, "out", "o", "", "output file")
	cutCmd.MarkFlagRequired("end")
	cmd.AddCommand(cutCmd)

	var (
		gain    float64
		gainOut string
	)
	volumeCmd := &cobra.Command{
		Use:   "volume <id>",
		Short: "Apply a gain in dB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, src, err := loadEditor(cmd, deps, args[0])
			if err != nil {
				return err
			}
			if err := e.ChangeVolume(gain); err != nil {
				return err
			}
			return exportEdited(cmd, deps, e, src, gainOut)
		},
	}
	volumeCmd.Flags().Float64Var(&gain, "gain", 0, "gain in dB (negative attenuates)")
	volumeCmd.Flags().StringVarP(&gainOut, "out", "o", "", "output file")
	volumeCmd.MarkFlagRequired("gain")
	cmd.AddCommand(volumeCmd)

	var (
		target  float64
		normOut string
	)
	normalizeCmd := &cobra.Command{
		Use:   "normalize <id>",
		Short: "Normalize loudness to a target dBFS",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, src, err := loadEditor(cmd, deps, args[0])
			if err != nil {
				return err
			}
			if err := e.Normalize(target); err != nil {
				return err
			}
			return exportEdited(cmd, deps, e, src, normOut)
		},
	}
	normalizeCmd.Flags().Float64Var(&target, "target", editor.DefaultNormalizeDBFS, "target level in dBFS")
	normalizeCmd.Flags().StringVarP(&normOut, "out", "o", "", "output file")
	cmd.AddCommand(normalizeCmd)

	var (
		points []time.Duration
		outDir string
	)
	splitCmd := &cobra.Command{
		Use:   "split <id>",
		Short: "Split at the given points and export each part",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, src, err := loadEditor(cmd, deps, args[0])
			if err != nil {
				return err
			}
			parts := e.Split(points)
			fmt.Fprintf(cmd.OutOrStdout(), "split into %d part(s)\n", len(parts))

			if outDir == "" {
				outDir = deps.Config.ExportDir
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("failed to create export dir: %w", err)
			}
			format, _ := codec.FormatForPath(src)
			base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
			written := e.ExportParts(cmd.Context(), parts, outDir, base, format)
			for _, p := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "exported %s\n", p)
			}
			return nil
		},
	}
	splitCmd.Flags().DurationSliceVar(&points, "at", nil, "split point (repeatable, e.g. --at 1m30s)")
	splitCmd.Flags().StringVar(&outDir, "out-dir", "", "output directory")
	splitCmd.MarkFlagRequired("at")
	cmd.AddCommand(splitCmd)

	return cmd
}
