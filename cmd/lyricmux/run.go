package main

import (
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"lyricmux/internal/batch"
	"lyricmux/internal/config"
	"lyricmux/internal/history"
	"lyricmux/internal/logging"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		dirFlag       string
		lyricsDirFlag string
		coverDirFlag  string
		encodingFlag  string
		keepLyrics    bool
		useGPU        bool
		skipLyrics    bool
		dryRun        bool
		skipTagged    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Embed lyrics and cover art into an audio directory",
		Long: `Run one embedding batch: match lyric and cover files against the audio
directory by filename, remux each match with ffmpeg, and atomically replace
the originals. Flags override the corresponding configuration values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			flags := cmd.Flags()

			if flags.Changed("dir") {
				expanded, err := config.ExpandPath(dirFlag)
				if err != nil {
					return fmt.Errorf("resolve audio directory: %w", err)
				}
				cfg.Paths.AudioDir = expanded
			}
			if flags.Changed("lyrics-dir") {
				expanded, err := config.ExpandPath(lyricsDirFlag)
				if err != nil {
					return fmt.Errorf("resolve lyrics directory: %w", err)
				}
				cfg.Paths.LyricsDir = expanded
			}
			if flags.Changed("cover-dir") {
				expanded, err := config.ExpandPath(coverDirFlag)
				if err != nil {
					return fmt.Errorf("resolve cover directory: %w", err)
				}
				cfg.Paths.CoverDir = expanded
			}
			if flags.Changed("encoding") {
				cfg.Lyrics.Encoding = encodingFlag
			}
			if flags.Changed("keep-lyrics") {
				cfg.Lyrics.KeepOriginal = keepLyrics
			}
			if flags.Changed("use-gpu") {
				cfg.FFmpeg.UseGPU = useGPU
			}
			if flags.Changed("skip-lyrics") {
				cfg.Lyrics.Skip = skipLyrics
			}
			if flags.Changed("dry-run") {
				cfg.Run.DryRun = dryRun
			}
			if flags.Changed("skip-tagged") {
				cfg.Run.SkipTagged = skipTagged
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			result, runErr := batch.Run(runCtx, cfg, logger)
			if result != nil {
				printRunSummary(cmd.OutOrStdout(), cfg, result)
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&dirFlag, "dir", "d", "", "Audio directory to process")
	cmd.Flags().StringVarP(&lyricsDirFlag, "lyrics-dir", "l", "", "Directory holding .lrc files (default: the audio directory)")
	cmd.Flags().StringVarP(&coverDirFlag, "cover-dir", "C", "", "Directory holding cover images (unset disables covers)")
	cmd.Flags().StringVarP(&encodingFlag, "encoding", "e", "", "Lyric text encoding (default gb2312)")
	cmd.Flags().BoolVarP(&keepLyrics, "keep-lyrics", "k", false, "Keep matched lyric files after embedding")
	cmd.Flags().BoolVarP(&useGPU, "use-gpu", "g", false, "Use hardware acceleration when the encoder supports it")
	cmd.Flags().BoolVarP(&skipLyrics, "skip-lyrics", "s", false, "Embed covers only, ignore lyric files")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print mux plans without modifying anything")
	cmd.Flags().BoolVar(&skipTagged, "skip-tagged", false, "Skip files already carrying both a lyrics tag and a picture")

	return cmd
}

func printRunSummary(out io.Writer, cfg *config.Config, result *batch.RunResult) {
	if cfg.Run.DryRun {
		planned := 0
		for _, f := range result.Files {
			if f.Outcome == history.OutcomePlanned {
				planned++
			}
		}
		fmt.Fprintf(out, "Dry run: planned %d of %d files (%d skipped)\n", planned, result.Total, result.Skipped)
	} else {
		fmt.Fprintf(out, "Processed %d of %d files (%d skipped, %d failed)\n",
			result.Processed, result.Total, result.Skipped, result.Failed)
	}
	if result.Accel.Requested {
		fmt.Fprintf(out, "Hardware acceleration: %s\n", result.Accel.Detail)
	}

	var rows [][]string
	for _, f := range result.Files {
		if f.Outcome == history.OutcomeFailed {
			rows = append(rows, []string{filepath.Base(f.Path), f.Detail})
		}
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable([]string{"File", "Error"}, rows, nil))
	}
}
