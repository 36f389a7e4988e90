package matching_test

import (
	"testing"

	"slidevox/internal/config"
	"slidevox/internal/matching"
	"slidevox/internal/slots"
)

func sampleSlots() []slots.Slot {
	return []slots.Slot{
		{SlotID: 256, ShowIndex: 1, NoteText: "a"},
		{SlotID: 257, ShowIndex: 2, NoteText: "b"},
		{SlotID: 300, ShowIndex: 10, NoteText: "c"},
	}
}

func TestMatchFirstWinsInInputOrder(t *testing.T) {
	assetList := []string{
		"/a/deDE/Narration_Slide 1_take2.wav",
		"/a/deDE/Narration_Slide 1_take1.wav",
		"/a/deDE/Narration_Slide 10_final.wav",
	}
	res := matching.Match(sampleSlots(), assetList, config.TieBreakFirst)

	if got, _ := res.Lookup(256); got != assetList[0] {
		t.Fatalf("slot 256 -> %q", got)
	}
	if _, ok := res.Lookup(257); ok {
		t.Fatal("slot 257 should be unmatched")
	}
	if got, _ := res.Lookup(300); got != assetList[2] {
		t.Fatalf("slot 300 -> %q", got)
	}
	if len(res.Candidates) != 2 || res.Candidates[0].ShowIndex != 1 || res.Candidates[1].ShowIndex != 10 {
		t.Fatalf("unexpected candidates %+v", res.Candidates)
	}
}

func TestMatchTokenRequiresDelimiters(t *testing.T) {
	res := matching.Match(sampleSlots()[:1], []string{"/x/Narration_Slide 10_a.wav", "/x/Narration_Slide 01_a.wav", "/x/Slide 1_a.wav"}, config.TieBreakFirst)
	if len(res.Candidates) != 0 {
		t.Fatalf("expected no match for slide 1, got %+v", res.Candidates)
	}
}

func TestMatchIgnoresLocaleInNames(t *testing.T) {
	assetList := []string{
		"/assets/frFR/Intro_enUS_Slide 1_x.wav",
		"/assets/frFR/Slide 2_deDE_Slide 2_y.wav",
	}
	res := matching.Match(sampleSlots(), assetList, config.TieBreakFirst)
	if got, _ := res.Lookup(256); got != assetList[0] {
		t.Fatalf("slot 256 -> %q", got)
	}
	if got, _ := res.Lookup(257); got != assetList[1] {
		t.Fatalf("slot 257 -> %q", got)
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	assetList := []string{"/x/N_Slide 2_b.wav", "/x/N_Slide 2_a.wav", "/x/N_Slide 1_a.wav"}
	first := matching.Match(sampleSlots(), assetList, config.TieBreakFirst)
	for i := 0; i < 20; i++ {
		again := matching.Match(sampleSlots(), assetList, config.TieBreakFirst)
		if len(again.Candidates) != len(first.Candidates) {
			t.Fatal("candidate count changed between runs")
		}
		for j := range first.Candidates {
			if again.Candidates[j] != first.Candidates[j] {
				t.Fatalf("candidate %d changed: %+v vs %+v", j, again.Candidates[j], first.Candidates[j])
			}
		}
	}
}

func TestMatchShortestAndStrict(t *testing.T) {
	assetList := []string{"/x/Narration_Slide 1_take12.wav", "/x/N_Slide 1_a.wav", "/x/Q_Slide 1_b.wav"}

	shortest := matching.Match(sampleSlots(), assetList, config.TieBreakShortest)
	if got, _ := shortest.Lookup(256); got != "/x/N_Slide 1_a.wav" {
		t.Fatalf("shortest picked %q", got)
	}

	strict := matching.Match(sampleSlots(), assetList, config.TieBreakStrict)
	if _, ok := strict.Lookup(256); ok {
		t.Fatal("strict should leave ambiguous slot unmatched")
	}
	if len(strict.Ambiguities) != 1 || len(strict.Ambiguities[0].Assets) != 3 {
		t.Fatalf("unexpected ambiguities %+v", strict.Ambiguities)
	}
}
