package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slidevox/internal/deps"
	"slidevox/internal/media/ffmpeg"
	"slidevox/internal/preflight"
	"slidevox/internal/transcode"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check external tools, encoders, and directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			out := cmd.OutOrStdout()

			binaries := preflight.CheckSystemDeps(cfg)
			runner := ffmpeg.NewRunner(cfg.FFmpegBinary(), cfg.Paths.WorkDir)
			encoders := deps.CheckEncoders(cmd.Context(), runner, transcode.Encoders())

			var rows [][]string
			for _, s := range append(binaries, encoders...) {
				detail := s.Detail
				if detail == "" {
					detail = s.Command
				}
				rows = append(rows, []string{s.Name, yesNo(s.Available), yesNo(!s.Optional), detail})
			}
			writeTable(out, []string{"Dependency", "Available", "Required", "Detail"}, rows, nil)

			checks := preflight.RunAll(cmd.Context(), cfg)
			rows = rows[:0]
			for _, r := range checks {
				rows = append(rows, []string{r.Name, yesNo(r.Passed), r.Detail})
			}
			writeTable(out, []string{"Check", "Passed", "Detail"}, rows, nil)

			missing := deps.Missing(binaries)
			failed := preflight.Failed(checks)
			if len(missing) > 0 || len(failed) > 0 {
				return fmt.Errorf("check failed: %d missing dependencies, %d failed checks", len(missing), len(failed))
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}
