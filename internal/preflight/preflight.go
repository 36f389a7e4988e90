package preflight

import (
	"context"
	"fmt"

	"slidevox/internal/config"
	"slidevox/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// minFreeBytes is the free space the output directory must offer.
const minFreeBytes = 64 << 20

// RunAll executes the directory checks a batch run depends on.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckReadable("Assets directory", cfg.Paths.AssetsDir),
		CheckFreeSpace("Output free space", cfg.Paths.OutputDir, minFreeBytes),
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// CheckSystemDeps evaluates the external binaries for the given config. The
// CLI check command and the batch runner share this list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for narration transcoding",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Verifies encoded narration payloads",
			Optional:    !cfg.Transcode.VerifyOutput,
		},
	}
	return deps.CheckBinaries(requirements)
}

// Summary renders a result for single-line output.
func (r Result) Summary() string {
	state := "OK"
	if !r.Passed {
		state = "FAIL"
	}
	return fmt.Sprintf("%-20s %-4s %s", r.Name, state, r.Detail)
}
