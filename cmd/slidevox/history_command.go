package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"slidevox/internal/ledger"
)

const historyTimeLayout = "2006-01-02 15:04:05"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List past runs or the slot outcomes of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("run ledger is disabled (ledger.enabled = false)")
			}
			defer store.Close()

			if len(args) == 1 {
				return printRunDetail(cmd, store, args[0])
			}
			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					r.ID,
					formatStamp(r.StartedAt),
					r.Status,
					strconv.Itoa(r.Documents),
					strconv.Itoa(r.Failed),
					yesNo(r.DryRun),
				})
			}
			writeTable(out, []string{"Run", "Started", "Status", "Decks", "Failed", "Dry run"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight})
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list")
	return cmd
}

func printRunDetail(cmd *cobra.Command, store *ledger.Store, runID string) error {
	run, err := store.GetRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}
	docs, err := store.Documents(cmd.Context(), runID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (%s) started %s\n", run.ID, run.Status, formatStamp(run.StartedAt))
	if run.ErrorMessage != "" {
		fmt.Fprintf(out, "Error: %s\n", run.ErrorMessage)
	}

	var rows [][]string
	for _, doc := range docs {
		deck := filepath.Base(doc.SourcePath)
		if len(doc.Slots) == 0 {
			rows = append(rows, []string{deck, doc.Locale, doc.Status, "-", "", "", doc.Reason, ""})
			continue
		}
		for _, s := range doc.Slots {
			rows = append(rows, []string{
				deck,
				doc.Locale,
				doc.Status,
				strconv.Itoa(s.ShowIndex),
				s.State,
				s.Mode,
				s.Reason,
				baseOrEmpty(s.AssetPath),
			})
		}
	}
	writeTable(out, []string{"Deck", "Locale", "Deck status", "Slide", "State", "Mode", "Reason", "Recording"}, rows, nil)
	return nil
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(historyTimeLayout)
}
