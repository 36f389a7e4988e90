package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	AssetsDir string `toml:"assets_dir"`
	OutputDir string `toml:"output_dir"`
	WorkDir   string `toml:"work_dir"`
	LogDir    string `toml:"log_dir"`
}

// Matching controls how discovered recordings are paired with slots.
type Matching struct {
	// TieBreak selects the winner when several assets match one slot:
	// "first" (input order), "shortest" (shortest file name), or "strict"
	// (ambiguity leaves the slot unmatched).
	TieBreak  string `toml:"tie_break"`
	AssetGlob string `toml:"asset_glob"`
}

// Replacement controls per-slot skip and abort policies.
type Replacement struct {
	MinAssetBytes int `toml:"min_asset_bytes"`
	// OnCodecUnavailable is one of "skip", "passthrough", or "abort".
	OnCodecUnavailable    string `toml:"on_codec_unavailable"`
	AbortOnTranscodeError bool   `toml:"abort_on_transcode_error"`
	// StrictLocale fails a deck whose name does not carry a locale instead of
	// skipping it.
	StrictLocale bool `toml:"strict_locale"`
}

// Transcode contains encoder settings.
type Transcode struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	AACBitrate    string `toml:"aac_bitrate"`
	MP3Bitrate    string `toml:"mp3_bitrate"`
	VerifyOutput  bool   `toml:"verify_output"`
	ChunkSeconds  int    `toml:"chunk_seconds"`
}

// Batch contains configuration for multi-deck runs.
type Batch struct {
	Workers                int `toml:"workers"`
	DocumentTimeoutSeconds int `toml:"document_timeout_seconds"`
}

// Ledger contains configuration for the run history database.
type Ledger struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Notifications contains ntfy settings. An empty topic disables
// notifications.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for slidevox.
//
// Configuration sections by subsystem:
//   - Paths: locale asset root, output, scratch, and log directories
//   - Matching: asset discovery glob and tie-break policy
//   - Replacement: suspect-asset threshold and skip/abort policies
//   - Transcode: ffmpeg/ffprobe binaries and encoder settings
//   - Batch: worker count and per-deck timeout
//   - Ledger: SQLite run history
//   - Notifications: ntfy run summaries
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Matching      Matching      `toml:"matching"`
	Replacement   Replacement   `toml:"replacement"`
	Transcode     Transcode     `toml:"transcode"`
	Batch         Batch         `toml:"batch"`
	Ledger        Ledger        `toml:"ledger"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/slidevox/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/slidevox/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("slidevox.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a replacement run writes into.
// The assets directory is read-only input and is never created.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.WorkDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Ledger.Enabled && strings.TrimSpace(c.Ledger.Path) != "" {
		if err := os.MkdirAll(filepath.Dir(c.Ledger.Path), 0o755); err != nil {
			return fmt.Errorf("create ledger directory: %w", err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for encoding.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Transcode.FFmpegBinary); bin != "" {
		return bin
	}
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable used for output verification.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Transcode.FFprobeBinary); bin != "" {
		return bin
	}
	return "ffprobe"
}

// DocumentTimeout returns the per-deck deadline, or zero when unbounded.
func (c *Config) DocumentTimeout() time.Duration {
	if c.Batch.DocumentTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Batch.DocumentTimeoutSeconds) * time.Second
}

// LocaleAssetDir returns the directory holding recordings for a locale code.
func (c *Config) LocaleAssetDir(locale string) string {
	return filepath.Join(c.Paths.AssetsDir, locale)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultWorkDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "slidevox", "work")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/slidevox/work"
	}
	return filepath.Join(home, ".cache", "slidevox", "work")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
