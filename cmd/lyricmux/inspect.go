package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"lyricmux/internal/config"
	"lyricmux/internal/media/tags"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "inspect <file>...",
		Short:       "Show lyrics and pictures embedded in audio files",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for i, arg := range args {
				path, err := config.ExpandPath(arg)
				if err != nil {
					return fmt.Errorf("resolve path %q: %w", arg, err)
				}
				report, err := tags.Inspect(path)
				if err != nil {
					return fmt.Errorf("inspect %s: %w", arg, err)
				}

				if i > 0 {
					fmt.Fprintln(out)
				}
				for _, line := range renderSectionHeader(report.Path, colorize) {
					fmt.Fprintln(out, line)
				}
				printReport(out, report)
			}
			return nil
		},
	}
}

func printReport(out io.Writer, report tags.Report) {
	fmt.Fprintf(out, "Format: %s\n", strings.ToUpper(report.Format))

	if len(report.Lyrics) == 0 && len(report.Pictures) == 0 {
		fmt.Fprintln(out, "No lyrics or pictures embedded")
		return
	}

	var rows [][]string
	for _, l := range report.Lyrics {
		detail := make([]string, 0, 2)
		if l.Language != "" {
			detail = append(detail, "language "+l.Language)
		}
		if l.Descriptor != "" {
			detail = append(detail, "descriptor "+l.Descriptor)
		}
		rows = append(rows, []string{
			"lyrics",
			strings.Join(detail, ", "),
			fmt.Sprintf("%d chars", l.Characters),
		})
	}
	for _, p := range report.Pictures {
		detail := p.Type
		if p.MIME != "" {
			detail += " (" + p.MIME + ")"
		}
		if p.Description != "" {
			detail += ", " + p.Description
		}
		rows = append(rows, []string{
			"picture",
			detail,
			fmt.Sprintf("%d bytes", p.SizeBytes),
		})
	}

	fmt.Fprintln(out, renderTable(
		[]string{"Tag", "Detail", "Size"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	))
}
