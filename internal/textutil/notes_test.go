package textutil

import "testing"

func TestNormalizeNote(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"collapse whitespace", "  Intro\n\n  _Slide 1_\tnarration ", "Intro _Slide 1_ narration"},
		{"nfc", "Cafe\u0301", "Caf\u00e9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeNote(tt.in); got != tt.want {
				t.Fatalf("NormalizeNote(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello wonderful world", 10, "hello w..."},
		{"trims before ellipsis", "hello world", 9, "hello..."},
		{"no limit", "a  b", 0, "a b"},
		{"tiny limit", "abcdef", 2, "ab"},
		{"runes", "Übersicht über alles", 8, "Übers..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Preview(tt.in, tt.limit); got != tt.want {
				t.Fatalf("Preview(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
			}
		})
	}
}
