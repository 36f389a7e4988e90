package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Format is one sample rate and channel count an encoder accepts.
type Format struct {
	SampleRate int
	Channels   int
}

func (f Format) String() string {
	return fmt.Sprintf("%d Hz x %d", f.SampleRate, f.Channels)
}

// Rates used when an encoder does not advertise a sample rate list.
var defaultRates = []int{48000, 44100, 32000, 24000, 22050, 16000, 11025, 8000}

var defaultChannels = []int{1, 2}

var layoutChannels = map[string]int{
	"mono":      1,
	"stereo":    2,
	"2.1":       3,
	"3.0":       3,
	"quad":      4,
	"4.0":       4,
	"4.1":       5,
	"5.0":       5,
	"5.1":       6,
	"6.0":       6,
	"6.1":       7,
	"7.0":       7,
	"7.1":       8,
	"hexagonal": 6,
	"octagonal": 8,
	"downmix":   2,
}

// Runner executes ffmpeg for capability queries and encode sessions.
type Runner struct {
	Binary  string
	WorkDir string

	mu    sync.Mutex
	cache map[string][]Format
}

// NewRunner returns a Runner for binary that writes scratch files to workDir.
func NewRunner(binary, workDir string) *Runner {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &Runner{Binary: binary, WorkDir: workDir, cache: map[string][]Format{}}
}

// SupportedFormats lists the pairs the named encoder accepts, rates in the
// order ffmpeg reports them. An unknown encoder or a missing ffmpeg binary
// yields an empty list.
func (r *Runner) SupportedFormats(ctx context.Context, encoder string) ([]Format, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache == nil {
		r.cache = map[string][]Format{}
	}
	if formats, ok := r.cache[encoder]; ok {
		return formats, nil
	}

	cmd := exec.CommandContext(ctx, r.Binary, "-hide_banner", "-h", "encoder="+encoder)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			r.cache[encoder] = nil
			return nil, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("ffmpeg encoder query: %w: %s", err, strings.TrimSpace(stderr.String()))
		}
	}

	formats := ParseEncoderHelp(stdout.String() + "\n" + stderr.String())
	r.cache[encoder] = formats
	return formats, nil
}

// ParseEncoderHelp extracts the accepted formats from "ffmpeg -h encoder=X"
// output. Output without an "Encoder" header describes an unknown encoder.
func ParseEncoderHelp(output string) []Format {
	known := false
	var rates, channels []int
	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "Encoder "):
			known = true
		case strings.HasPrefix(line, "Supported sample rates:"):
			for _, field := range strings.Fields(strings.TrimPrefix(line, "Supported sample rates:")) {
				if rate, err := strconv.Atoi(field); err == nil && rate > 0 {
					rates = append(rates, rate)
				}
			}
		case strings.HasPrefix(line, "Supported channel layouts:"):
			channels = parseLayouts(strings.TrimPrefix(line, "Supported channel layouts:"))
		}
	}
	if !known {
		return nil
	}
	if len(rates) == 0 {
		rates = defaultRates
	}
	if len(channels) == 0 {
		channels = defaultChannels
	}
	formats := make([]Format, 0, len(rates)*len(channels))
	for _, rate := range rates {
		for _, ch := range channels {
			formats = append(formats, Format{SampleRate: rate, Channels: ch})
		}
	}
	return formats
}

func parseLayouts(list string) []int {
	seen := map[int]bool{}
	var out []int
	for _, field := range strings.Fields(list) {
		name := strings.ToLower(field)
		if idx := strings.Index(name, "("); idx > 0 && layoutChannels[name] == 0 {
			name = name[:idx]
		}
		n, ok := layoutChannels[name]
		if !ok || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
