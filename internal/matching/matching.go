// Package matching pairs narration slots with replacement recordings by the
// "_Slide {n}_" file name convention.
package matching

import (
	"path/filepath"
	"strconv"
	"strings"

	"slidevox/internal/config"
	"slidevox/internal/slots"
)

// Candidate is the recording chosen for one slot.
type Candidate struct {
	SlotID    uint32
	ShowIndex int
	AssetPath string
}

// Ambiguity records a slot left unmatched under the strict policy.
type Ambiguity struct {
	SlotID    uint32
	ShowIndex int
	Assets    []string
}

// Result is the outcome of matching one document.
type Result struct {
	Candidates  []Candidate
	Ambiguities []Ambiguity
	bySlot      map[uint32]string
}

// Lookup returns the asset chosen for a slot.
func (r Result) Lookup(slotID uint32) (string, bool) {
	path, ok := r.bySlot[slotID]
	return path, ok
}

// Token returns the file name fragment that identifies show index n.
func Token(showIndex int) string {
	return "_Slide " + strconv.Itoa(showIndex) + "_"
}

// Match applies the tie-break policy to every slot. Assets are considered in
// the order given. An unknown policy behaves like config.TieBreakFirst.
//
// Matching is locale-agnostic: the caller selects the locale's asset
// directory and passes its listing here. Match only looks for the
// "_Slide {n}_" token in each base name and breaks ties.
func Match(items []slots.Slot, assetPaths []string, tieBreak string) Result {
	res := Result{bySlot: make(map[uint32]string, len(items))}
	for _, slot := range items {
		token := Token(slot.ShowIndex)
		var hits []string
		for _, asset := range assetPaths {
			if strings.Contains(filepath.Base(asset), token) {
				hits = append(hits, asset)
			}
		}
		if len(hits) == 0 {
			continue
		}

		chosen := hits[0]
		switch tieBreak {
		case config.TieBreakShortest:
			for _, hit := range hits[1:] {
				if len(filepath.Base(hit)) < len(filepath.Base(chosen)) {
					chosen = hit
				}
			}
		case config.TieBreakStrict:
			if len(hits) > 1 {
				res.Ambiguities = append(res.Ambiguities, Ambiguity{SlotID: slot.SlotID, ShowIndex: slot.ShowIndex, Assets: hits})
				continue
			}
		}

		res.Candidates = append(res.Candidates, Candidate{SlotID: slot.SlotID, ShowIndex: slot.ShowIndex, AssetPath: chosen})
		res.bySlot[slot.SlotID] = chosen
	}
	return res
}
