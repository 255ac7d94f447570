package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lyricmux/internal/config"
	"lyricmux/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	var dirFlag string

	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Check external tools and directory access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			if cmd.Flags().Changed("dir") {
				expanded, err := config.ExpandPath(dirFlag)
				if err != nil {
					return fmt.Errorf("resolve audio directory: %w", err)
				}
				cfg.Paths.AudioDir = expanded
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}

			failed := 0
			for _, result := range preflight.RunAll(cfg) {
				kind := statusOK
				if !result.Passed {
					kind = statusError
					failed++
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			if failed > 0 {
				return fmt.Errorf("%d preflight checks failed", failed)
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}

	cmd.Flags().StringVarP(&dirFlag, "dir", "d", "", "Audio directory to check")
	return cmd
}
