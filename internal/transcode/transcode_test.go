package transcode_test

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"slidevox/internal/media/ffmpeg"
	"slidevox/internal/media/ffprobe"
	"slidevox/internal/services"
	"slidevox/internal/testsupport"
	"slidevox/internal/transcode"
)

type fakeSession struct {
	enc     *fakeEncoder
	chunks  [][]byte
	closed  bool
	aborted bool
}

func (s *fakeSession) Write(pcm []byte) error {
	s.chunks = append(s.chunks, append([]byte(nil), pcm...))
	return s.enc.writeErr
}

func (s *fakeSession) Close() ([]byte, error) {
	s.closed = true
	return []byte("encoded"), s.enc.closeErr
}

func (s *fakeSession) Abort() {
	if !s.closed {
		s.aborted = true
	}
}

type fakeEncoder struct {
	formats  []ffmpeg.Format
	opts     ffmpeg.SessionOptions
	session  *fakeSession
	writeErr error
	closeErr error
}

func (e *fakeEncoder) SupportedFormats(context.Context, string) ([]ffmpeg.Format, error) {
	return e.formats, nil
}

func (e *fakeEncoder) StartSession(_ context.Context, opts ffmpeg.SessionOptions) (transcode.EncodeSession, error) {
	e.opts = opts
	e.session = &fakeSession{enc: e}
	return e.session, nil
}

func m4a(t *testing.T) transcode.Target {
	t.Helper()
	target, ok := transcode.TargetFor("audio/mp4")
	if !ok {
		t.Fatal("audio/mp4 should be recognized")
	}
	return target
}

func TestSelectFormatNearestRateFirstTie(t *testing.T) {
	supported := []ffmpeg.Format{{SampleRate: 32000, Channels: 2}, {SampleRate: 48000, Channels: 2}, {SampleRate: 44100, Channels: 1}}
	got, err := transcode.SelectFormat(supported, 40000, 2)
	if err != nil {
		t.Fatalf("SelectFormat: %v", err)
	}
	if got.SampleRate != 32000 {
		t.Fatalf("expected first of tied entries (32000), got %d", got.SampleRate)
	}

	got, err = transcode.SelectFormat([]ffmpeg.Format{{SampleRate: 48000, Channels: 2}, {SampleRate: 32000, Channels: 2}}, 40000, 2)
	if err != nil {
		t.Fatalf("SelectFormat: %v", err)
	}
	if got.SampleRate != 48000 {
		t.Fatalf("expected enumeration order to break tie, got %d", got.SampleRate)
	}

	got, err = transcode.SelectFormat(supported, 44100, 1)
	if err != nil || got.SampleRate != 44100 {
		t.Fatalf("expected exact match, got %v %v", got, err)
	}
}

func TestSelectFormatChannelMismatch(t *testing.T) {
	_, err := transcode.SelectFormat([]ffmpeg.Format{{SampleRate: 48000, Channels: 2}}, 48000, 6)
	if !errors.Is(err, services.ErrUnsupportedChannelLayout) {
		t.Fatalf("expected ErrUnsupportedChannelLayout, got %v", err)
	}
}

func TestTranscodeResamplesAndChunks(t *testing.T) {
	enc := &fakeEncoder{formats: []ffmpeg.Format{{SampleRate: 48000, Channels: 2}, {SampleRate: 32000, Channels: 2}}}
	tc := transcode.NewWithEncoder(enc, nil, transcode.Options{AACBitrate: "96k", ChunkSeconds: 1}, nil)

	res, err := tc.Transcode(context.Background(), testsupport.SineWAV(44100, 2, 2.5), m4a(t))
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if string(res.Data) != "encoded" {
		t.Fatalf("unexpected data %q", res.Data)
	}
	if !res.Resampled || res.Output.SampleRate != 48000 || enc.opts.SampleRate != 48000 {
		t.Fatalf("expected resample to 48000, got %+v opts %+v", res, enc.opts)
	}
	if enc.opts.Encoder != "aac" || enc.opts.Container != "ipod" || enc.opts.Bitrate != "96k" {
		t.Fatalf("unexpected session options %+v", enc.opts)
	}
	chunks := enc.session.chunks
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks for 2.5s, got %d", len(chunks))
	}
	if len(chunks[0]) != 48000*2*2 || len(chunks[2]) != 48000*2*2/2 {
		t.Fatalf("unexpected chunk sizes %d, %d", len(chunks[0]), len(chunks[2]))
	}
	if enc.session.aborted {
		t.Fatal("closed session should not be aborted")
	}
}

func TestTranscodeCodecUnavailable(t *testing.T) {
	tc := transcode.NewWithEncoder(&fakeEncoder{}, nil, transcode.Options{}, nil)
	_, err := tc.Transcode(context.Background(), testsupport.SineWAV(44100, 1, 0.1), m4a(t))
	if !errors.Is(err, services.ErrCodecUnavailable) {
		t.Fatalf("expected ErrCodecUnavailable, got %v", err)
	}
	if services.ScopeOf(err) != services.ScopeRun {
		t.Fatalf("expected run scope, got %s", services.ScopeOf(err))
	}
}

func TestTranscodeInvalidSource(t *testing.T) {
	enc := &fakeEncoder{formats: []ffmpeg.Format{{SampleRate: 44100, Channels: 1}}}
	tc := transcode.NewWithEncoder(enc, nil, transcode.Options{}, nil)
	_, err := tc.Transcode(context.Background(), []byte("definitely not a wave file, just text padding"), m4a(t))
	if !errors.Is(err, services.ErrInvalidSourceAudio) {
		t.Fatalf("expected ErrInvalidSourceAudio, got %v", err)
	}
	if enc.session != nil {
		t.Fatal("encoder session should not start for invalid input")
	}
}

func TestTranscodeEncoderFailureAborts(t *testing.T) {
	enc := &fakeEncoder{formats: []ffmpeg.Format{{SampleRate: 44100, Channels: 1}}, writeErr: errors.New("broken pipe")}
	tc := transcode.NewWithEncoder(enc, nil, transcode.Options{}, nil)
	_, err := tc.Transcode(context.Background(), testsupport.SineWAV(44100, 1, 0.5), m4a(t))
	if !errors.Is(err, services.ErrEncodingFailed) {
		t.Fatalf("expected ErrEncodingFailed, got %v", err)
	}
	if !enc.session.aborted {
		t.Fatal("expected session abort on failure")
	}
}

type rejectVerifier struct{}

func (rejectVerifier) Verify(context.Context, []byte, string, ffprobe.Expectation) error {
	return errors.New("no audio stream")
}

func TestTranscodeVerificationFailure(t *testing.T) {
	enc := &fakeEncoder{formats: []ffmpeg.Format{{SampleRate: 44100, Channels: 1}}}
	tc := transcode.NewWithEncoder(enc, rejectVerifier{}, transcode.Options{}, nil)
	_, err := tc.Transcode(context.Background(), testsupport.SineWAV(44100, 1, 0.2), m4a(t))
	if !errors.Is(err, services.ErrEncodingFailed) {
		t.Fatalf("expected ErrEncodingFailed, got %v", err)
	}
}

func TestTargetFor(t *testing.T) {
	cases := map[string]string{
		"audio/x-wav":               "wav",
		"audio/mp4":                 "aac-mp4",
		"audio/x-m4a":               "aac-mp4",
		"audio/aac":                 "aac-adts",
		"audio/mpeg":                "mp3",
		"Audio/MP4; codecs=mp4a.40": "aac-mp4",
	}
	for ct, want := range cases {
		got, ok := transcode.TargetFor(ct)
		if !ok || got.Name != want {
			t.Errorf("TargetFor(%q) = %+v, %v; want %s", ct, got, ok, want)
		}
	}
	if _, ok := transcode.TargetFor("video/mp4"); ok {
		t.Fatal("video/mp4 must not be recognized")
	}
	if wavTarget, _ := transcode.TargetFor("audio/wav"); !wavTarget.Passthrough {
		t.Fatal("wav target should pass through")
	}
}

func TestTranscodeRoundTripDuration(t *testing.T) {
	ffmpegBin, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not available")
	}
	ffprobeBin, err := exec.LookPath("ffprobe")
	if err != nil {
		t.Skip("ffprobe not available")
	}
	work := t.TempDir()
	enc := transcode.RunnerEncoder{Runner: ffmpeg.NewRunner(ffmpegBin, work)}
	tc := transcode.NewWithEncoder(enc, transcode.FFprobeVerifier{Binary: ffprobeBin, WorkDir: work}, transcode.Options{AACBitrate: "128k"}, nil)

	formats, err := enc.SupportedFormats(context.Background(), "aac")
	if err != nil || len(formats) == 0 {
		t.Skip("aac encoder not available")
	}

	res, err := tc.Transcode(context.Background(), testsupport.SineWAV(44100, 1, 2), m4a(t))
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	out := filepath.Join(work, "out.m4a")
	if err := os.WriteFile(out, res.Data, 0o644); err != nil {
		t.Fatalf("write output: %v", err)
	}
	info, err := ffprobe.Inspect(context.Background(), ffprobeBin, out)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if diff := math.Abs(info.DurationSeconds() - 2.0); diff > 0.05 {
		t.Fatalf("duration %.3fs differs from input by %.3fs", info.DurationSeconds(), diff)
	}
}

func TestPCMChunkSizeMatchesOneSecond(t *testing.T) {
	enc := &fakeEncoder{formats: []ffmpeg.Format{{SampleRate: 16000, Channels: 1}}}
	tc := transcode.NewWithEncoder(enc, nil, transcode.Options{}, nil)
	samples := make([]int16, 16000)
	for i := range samples {
		samples[i] = int16(i)
	}
	if _, err := tc.Transcode(context.Background(), testsupport.PCM16WAV(16000, 1, samples), m4a(t)); err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if len(enc.session.chunks) != 1 || len(enc.session.chunks[0]) != 32000 {
		t.Fatalf("unexpected chunks %d", len(enc.session.chunks))
	}
	if got := int16(binary.LittleEndian.Uint16(enc.session.chunks[0][2:])); got != 1 {
		t.Fatalf("second sample = %d", got)
	}
}

func TestEncodersListsDistinctSortedNames(t *testing.T) {
	got := transcode.Encoders()
	if len(got) != 2 || got[0] != "aac" || got[1] != "libmp3lame" {
		t.Fatalf("Encoders() = %v", got)
	}
}
