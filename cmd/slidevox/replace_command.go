package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"slidevox/internal/config"
	"slidevox/internal/replacement"
	"slidevox/internal/transcode"
	"slidevox/internal/workflow"
)

func newReplaceCommand(ctx *commandContext) *cobra.Command {
	var (
		assetsDir string
		outputDir string
		locale    string
		workers   int
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "replace <deck>...",
		Short: "Replace slide narration with localized recordings",
		Long: `Copy each deck into the output directory and replace the narration of every
slide that has a matching recording in the deck's locale directory.

The target locale is read from the deck file name
(<name>_<target>_<source>_<suffix>.pptx) unless --locale is given. Recordings
are matched by the "_Slide {n}_" fragment in their file names.

Examples:
  slidevox replace Intro_deDE_enUS_Final.pptx
  slidevox replace decks/*.pptx --workers 4
  slidevox replace Intro.pptx --locale frFR --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if err := applyPathOverrides(cfg, assetsDir, outputDir); err != nil {
				return err
			}
			_, logger, err := ctx.logger()
			if err != nil {
				return err
			}
			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			runner := workflow.New(cfg, transcode.New(cfg, logger), store, logger)
			result, runErr := runner.Run(cmd.Context(), args, workflow.Options{
				Locale:  locale,
				DryRun:  dryRun,
				Workers: workers,
			})
			if result != nil {
				printRunSummary(cmd, result)
			}
			if runErr != nil {
				return fmt.Errorf("replace: %w", runErr)
			}
			if failed := result.Count(workflow.DocumentFailed); failed > 0 {
				return fmt.Errorf("%d of %d decks failed; see run %s", failed, len(result.Documents), result.RunID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&assetsDir, "assets", "", "Override paths.assets_dir")
	cmd.Flags().StringVar(&outputDir, "output", "", "Override paths.output_dir")
	cmd.Flags().StringVar(&locale, "locale", "", "Use this locale directory instead of resolving it from file names")
	cmd.Flags().IntVar(&workers, "workers", 0, "Override batch.workers")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Match and decide without writing output")
	return cmd
}

func applyPathOverrides(cfg *config.Config, assetsDir, outputDir string) error {
	if dir := strings.TrimSpace(assetsDir); dir != "" {
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return fmt.Errorf("resolve --assets: %w", err)
		}
		cfg.Paths.AssetsDir = expanded
	}
	if dir := strings.TrimSpace(outputDir); dir != "" {
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return fmt.Errorf("resolve --output: %w", err)
		}
		cfg.Paths.OutputDir = expanded
	}
	return nil
}

func printRunSummary(cmd *cobra.Command, result *workflow.RunResult) {
	out := cmd.OutOrStdout()

	headers := []string{"Deck", "Slide", "Slot", "State", "Mode", "Reason", "Recording"}
	var rows [][]string
	for _, doc := range result.Documents {
		deck := filepath.Base(doc.Source)
		if len(doc.Report.Outcomes) == 0 {
			rows = append(rows, []string{deck, "-", "-", string(doc.Status), "", doc.Reason, ""})
			continue
		}
		for _, o := range doc.Report.Outcomes {
			rows = append(rows, []string{
				deck,
				strconv.Itoa(o.ShowIndex),
				strconv.FormatUint(uint64(o.SlotID), 10),
				string(o.State),
				string(o.Mode),
				o.Reason,
				baseOrEmpty(o.AssetPath),
			})
		}
	}
	writeTable(out, headers, rows, []columnAlignment{alignLeft, alignRight, alignRight})

	label := "Run"
	if result.DryRun {
		label = "Dry run"
	}
	fmt.Fprintf(out, "%s %s: %d processed, %d unchanged, %d skipped, %d failed\n",
		label,
		result.RunID,
		result.Count(workflow.DocumentProcessed),
		result.Count(workflow.DocumentUnchanged),
		result.Count(workflow.DocumentSkipped),
		result.Count(workflow.DocumentFailed),
	)
	for _, doc := range result.Documents {
		if doc.Output != "" && doc.Report.Count(replacement.StateWritten) > 0 {
			fmt.Fprintf(out, "Wrote %s\n", doc.Output)
		}
	}
}

func baseOrEmpty(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}
