package ffmpeg

import (
	"context"
	"encoding/binary"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func requireFFmpeg(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not available")
	}
	return path
}

func TestSessionEncodesAAC(t *testing.T) {
	bin := requireFFmpeg(t)
	runner := NewRunner(bin, t.TempDir())
	session, err := runner.StartSession(context.Background(), SessionOptions{
		Encoder: "aac", Container: "ipod", Extension: "m4a", Bitrate: "96k", SampleRate: 44100, Channels: 1,
	})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	defer session.Abort()

	chunk := make([]byte, 44100*2)
	for i := 0; i < 44100; i++ {
		binary.LittleEndian.PutUint16(chunk[i*2:], uint16(int16((i%100)*100)))
	}
	if err := session.Write(chunk); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := session.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(data) < 100 || string(data[4:8]) != "ftyp" {
		t.Fatalf("expected mp4 output, got %d bytes", len(data))
	}
}

func TestSessionAbortRemovesScratch(t *testing.T) {
	bin := requireFFmpeg(t)
	work := t.TempDir()
	runner := NewRunner(bin, work)
	session, err := runner.StartSession(context.Background(), SessionOptions{
		Encoder: "aac", Container: "adts", Extension: "aac", SampleRate: 48000, Channels: 2,
	})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	session.Abort()
	session.Abort()

	entries, err := os.ReadDir(work)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty work dir, found %d entries", len(entries))
	}
}

func emptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty work dir, found %v", entries)
	}
}

func TestStubSessionArgumentsAndScratchCleanup(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	bin := writeScript(t, `printf '%s\n' "$@" > `+argsFile+`
for a; do last=$a; done
cat > /dev/null
printf encoded > "$last"`)
	work := filepath.Join(dir, "work")
	runner := NewRunner(bin, work)

	session, err := runner.StartSession(context.Background(), SessionOptions{
		Encoder: "aac", Container: "ipod", Extension: ".m4a", Bitrate: "96k", SampleRate: 22050, Channels: 2,
	})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if err := session.Write(make([]byte, 64)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := session.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if string(data) != "encoded" {
		t.Fatalf("output = %q", data)
	}
	if _, err := session.Close(); err == nil {
		t.Fatal("expected error on second Close")
	}
	emptyDir(t, work)

	raw, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	args := strings.Split(strings.TrimSpace(string(raw)), "\n")
	want := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "s16le", "-ar", "22050", "-ac", "2", "-i", "pipe:0", "-vn",
		"-c:a", "aac", "-b:a", "96k", "-movflags", "+faststart", "-f", "ipod",
	}
	if len(args) != len(want)+1 {
		t.Fatalf("args = %q", args)
	}
	for i, w := range want {
		if args[i] != w {
			t.Fatalf("arg %d = %q, want %q (all: %q)", i, args[i], w, args)
		}
	}
	out := args[len(args)-1]
	if filepath.Dir(out) != work || !strings.HasPrefix(filepath.Base(out), "encode-") || filepath.Ext(out) != ".m4a" {
		t.Fatalf("unexpected output path %q", out)
	}
}

func TestStubSessionCloseReportsFailure(t *testing.T) {
	work := t.TempDir()
	bin := writeScript(t, "cat > /dev/null\necho 'encoder exploded' >&2\nexit 3")
	session, err := NewRunner(bin, work).StartSession(context.Background(), SessionOptions{
		Encoder: "libmp3lame", Container: "mp3", Extension: "mp3", SampleRate: 44100, Channels: 1,
	})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if err := session.Write(make([]byte, 32)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	_, err = session.Close()
	if err == nil || !strings.Contains(err.Error(), "encoder exploded") {
		t.Fatalf("expected stderr in Close error, got %v", err)
	}
	session.Abort()
	emptyDir(t, work)
}

func TestStubSessionCloseRejectsEmptyOutput(t *testing.T) {
	work := t.TempDir()
	bin := writeScript(t, "cat > /dev/null")
	session, err := NewRunner(bin, work).StartSession(context.Background(), SessionOptions{
		Encoder: "aac", Container: "adts", Extension: "aac", SampleRate: 48000, Channels: 1,
	})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if _, err := session.Close(); err == nil || !strings.Contains(err.Error(), "empty output") {
		t.Fatalf("expected empty output error, got %v", err)
	}
	emptyDir(t, work)
}

func TestStubSessionAbortRemovesScratch(t *testing.T) {
	work := t.TempDir()
	bin := writeScript(t, "cat > /dev/null")
	session, err := NewRunner(bin, work).StartSession(context.Background(), SessionOptions{
		Encoder: "aac", Container: "adts", Extension: "aac", SampleRate: 48000, Channels: 2,
	})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if err := session.Write(make([]byte, 32)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	session.Abort()
	session.Abort()
	if err := session.Write(make([]byte, 2)); err == nil {
		t.Fatal("expected write after abort to fail")
	}
	emptyDir(t, work)
}

func TestStartSessionRejectsInvalidFormat(t *testing.T) {
	work := t.TempDir()
	_, err := NewRunner(writeScript(t, "exit 0"), work).StartSession(context.Background(), SessionOptions{Encoder: "aac"})
	if err == nil {
		t.Fatal("expected invalid format error")
	}
	emptyDir(t, work)
}
