package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"slidevox/internal/language"
	"slidevox/internal/logging"
	"slidevox/internal/pptx"
	"slidevox/internal/services"
	"slidevox/internal/slots"
	"slidevox/internal/textutil"
	"slidevox/internal/workflow"
)

const notePreviewRunes = 60

func newSlotsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "slots <deck>",
		Short: "List the narration slots of a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, err := pptx.Open(args[0], false)
			if err != nil {
				return err
			}
			defer pkg.Close()

			items, err := slots.Extract(pkg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No slides carry speaker notes")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for _, s := range items {
				rows = append(rows, []string{
					strconv.Itoa(s.ShowIndex),
					strconv.FormatUint(uint64(s.SlotID), 10),
					textutil.Preview(s.NoteText, notePreviewRunes),
				})
			}
			writeTable(out, []string{"Slide", "Slot", "Notes"}, rows, []columnAlignment{alignRight, alignRight})
			return nil
		},
	}
}

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var locale string

	cmd := &cobra.Command{
		Use:   "match <deck>",
		Short: "Show which recording each narration slot would receive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			runner := workflow.New(cfg, nil, nil, logging.NewNop())
			plan, err := runner.Plan(cmd.Context(), args[0], locale)
			if err != nil {
				if plan != nil && errors.Is(err, services.ErrNotFound) {
					return fmt.Errorf("no recordings for %s: %s does not exist", language.DisplayName(plan.Locale.Tag), plan.AssetDir)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Locale: %s (%s)\n", plan.Locale.Tag, plan.AssetDir)
			ambiguous := make(map[uint32][]string, len(plan.Matches.Ambiguities))
			for _, a := range plan.Matches.Ambiguities {
				ambiguous[a.SlotID] = a.Assets
			}
			rows := make([][]string, 0, len(plan.Slots))
			for _, s := range plan.Slots {
				status, recording := "unmatched", ""
				if asset, ok := plan.Matches.Lookup(s.SlotID); ok {
					status, recording = "matched", filepath.Base(asset)
				} else if assets, ok := ambiguous[s.SlotID]; ok {
					status = "ambiguous"
					names := make([]string, 0, len(assets))
					for _, a := range assets {
						names = append(names, filepath.Base(a))
					}
					recording = strings.Join(names, ", ")
				}
				rows = append(rows, []string{
					strconv.Itoa(s.ShowIndex),
					strconv.FormatUint(uint64(s.SlotID), 10),
					status,
					recording,
				})
			}
			writeTable(out, []string{"Slide", "Slot", "Status", "Recording"}, rows, []columnAlignment{alignRight, alignRight})
			fmt.Fprintf(out, "%d of %d slots matched from %d recordings\n", len(plan.Matches.Candidates), len(plan.Slots), len(plan.Assets))
			return nil
		},
	}
	cmd.Flags().StringVar(&locale, "locale", "", "Use this locale directory instead of resolving it from the file name")
	return cmd
}
