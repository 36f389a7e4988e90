package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"slidevox/internal/testsupport"
)

const aacHelp = `Encoder aac [AAC (Advanced Audio Coding)]:
    General capabilities: delay small
    Threading capabilities: none
    Supported sample rates: 96000 88200 64000 48000 44100 32000 24000 22050 16000 12000 11025 8000 7350
    Supported sample formats: fltp
AAC encoder AVOptions:
  -aac_coder         <int>        E...A...... Coding algorithm (from 0 to 2) (default fast)
`

const mp3Help = `Encoder libmp3lame [libmp3lame MP3 (MPEG audio layer 3)]:
    General capabilities: delay small
    Threading capabilities: none
    Supported sample rates: 44100 48000 32000 22050 24000 16000 11025 12000 8000
    Supported sample formats: s32p fltp s16p
    Supported channel layouts: mono stereo
`

func TestParseEncoderHelpAAC(t *testing.T) {
	formats := ParseEncoderHelp(aacHelp)
	if len(formats) != 13*2 {
		t.Fatalf("expected 26 formats, got %d", len(formats))
	}
	if formats[0] != (Format{SampleRate: 96000, Channels: 1}) || formats[1] != (Format{SampleRate: 96000, Channels: 2}) {
		t.Fatalf("unexpected leading formats %v", formats[:2])
	}
}

func TestParseEncoderHelpLayouts(t *testing.T) {
	formats := ParseEncoderHelp(mp3Help)
	if len(formats) != 9*2 {
		t.Fatalf("expected 18 formats, got %d", len(formats))
	}
	if formats[0].SampleRate != 44100 || formats[2].SampleRate != 48000 {
		t.Fatalf("rate order not preserved: %v", formats[:4])
	}
}

func TestParseEncoderHelpSurroundLayouts(t *testing.T) {
	out := "Encoder x [x]:\n    Supported sample rates: 48000\n    Supported channel layouts: mono stereo 5.1(side) 5.1 7.1\n"
	formats := ParseEncoderHelp(out)
	want := []Format{{48000, 1}, {48000, 2}, {48000, 6}, {48000, 8}}
	if len(formats) != len(want) {
		t.Fatalf("formats = %v, want %v", formats, want)
	}
	for i := range want {
		if formats[i] != want[i] {
			t.Fatalf("formats = %v, want %v", formats, want)
		}
	}
}

func TestParseEncoderHelpUnknownEncoder(t *testing.T) {
	if got := ParseEncoderHelp("Codec 'nope' is not recognized by FFmpeg.\n"); len(got) != 0 {
		t.Fatalf("expected no formats, got %v", got)
	}
}

func TestParseEncoderHelpDefaultsRates(t *testing.T) {
	formats := ParseEncoderHelp("Encoder pcm_s16le [PCM signed 16-bit little-endian]:\n    Supported sample formats: s16\n")
	if len(formats) != len(defaultRates)*len(defaultChannels) {
		t.Fatalf("unexpected formats %v", formats)
	}
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	return testsupport.StubBinary(t, t.TempDir(), "ffmpeg", body)
}

func TestSupportedFormatsCachesPerEncoder(t *testing.T) {
	dir := t.TempDir()
	counter := filepath.Join(dir, "calls")
	script := writeScript(t, "echo x >> "+counter+"\ncat <<'EOF'\n"+mp3Help+"EOF\n")
	runner := NewRunner(script, dir)

	for i := 0; i < 3; i++ {
		formats, err := runner.SupportedFormats(context.Background(), "libmp3lame")
		if err != nil {
			t.Fatalf("SupportedFormats: %v", err)
		}
		if len(formats) != 18 {
			t.Fatalf("expected 18 formats, got %d", len(formats))
		}
	}
	data, err := os.ReadFile(counter)
	if err != nil {
		t.Fatalf("read counter: %v", err)
	}
	if string(data) != "x\n" {
		t.Fatalf("expected one ffmpeg invocation, got %q", data)
	}
}

func TestSupportedFormatsMissingBinary(t *testing.T) {
	runner := NewRunner(filepath.Join(t.TempDir(), "no-such-ffmpeg"), t.TempDir())
	formats, err := runner.SupportedFormats(context.Background(), "aac")
	if err != nil {
		t.Fatalf("SupportedFormats: %v", err)
	}
	if len(formats) != 0 {
		t.Fatalf("expected empty capability, got %v", formats)
	}
}
