package deps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"slidevox/internal/media/ffmpeg"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "  ", Optional: true},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for unset command: %q", results[2].Detail)
	}

	missing := Missing(results)
	if len(missing) != 1 || missing[0].Name != "Missing" {
		t.Fatalf("Missing() = %#v", missing)
	}
}

type fakeInspector map[string][]ffmpeg.Format

func (f fakeInspector) SupportedFormats(_ context.Context, encoder string) ([]ffmpeg.Format, error) {
	if encoder == "broken" {
		return nil, errors.New("boom")
	}
	return f[encoder], nil
}

func TestCheckEncoders(t *testing.T) {
	inspector := fakeInspector{
		"aac": {{SampleRate: 44100, Channels: 1}, {SampleRate: 44100, Channels: 2}, {SampleRate: 48000, Channels: 2}},
	}
	results := CheckEncoders(context.Background(), inspector, []string{"aac", "libmp3lame", "broken"})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].Available || !strings.Contains(results[0].Detail, "44100, 48000") {
		t.Fatalf("unexpected aac status %#v", results[0])
	}
	if results[1].Available || !results[1].Optional {
		t.Fatalf("expected libmp3lame unavailable and optional, got %#v", results[1])
	}
	if results[2].Available || !strings.Contains(results[2].Detail, "boom") {
		t.Fatalf("expected capability failure detail, got %#v", results[2])
	}
}
