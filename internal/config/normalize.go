package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMatching()
	c.normalizeReplacement()
	c.normalizeTranscode()
	c.normalizeBatch()
	if err := c.normalizeLedger(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("SLIDEVOX_ASSETS_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.AssetsDir = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("SLIDEVOX_OUTPUT_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.OutputDir = strings.TrimSpace(value)
	}
	var err error
	if c.Paths.AssetsDir, err = expandPath(c.Paths.AssetsDir); err != nil {
		return fmt.Errorf("paths.assets_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir()
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMatching() {
	c.Matching.TieBreak = strings.ToLower(strings.TrimSpace(c.Matching.TieBreak))
	if c.Matching.TieBreak == "" {
		c.Matching.TieBreak = defaultTieBreak
	}
	c.Matching.AssetGlob = strings.TrimSpace(c.Matching.AssetGlob)
	if c.Matching.AssetGlob == "" {
		c.Matching.AssetGlob = defaultAssetGlob
	}
}

func (c *Config) normalizeReplacement() {
	c.Replacement.OnCodecUnavailable = strings.ToLower(strings.TrimSpace(c.Replacement.OnCodecUnavailable))
	if c.Replacement.OnCodecUnavailable == "" {
		c.Replacement.OnCodecUnavailable = defaultOnCodecUnavailable
	}
}

func (c *Config) normalizeTranscode() {
	c.Transcode.FFmpegBinary = strings.TrimSpace(c.Transcode.FFmpegBinary)
	c.Transcode.FFprobeBinary = strings.TrimSpace(c.Transcode.FFprobeBinary)
	c.Transcode.AACBitrate = strings.TrimSpace(c.Transcode.AACBitrate)
	if c.Transcode.AACBitrate == "" {
		c.Transcode.AACBitrate = defaultAACBitrate
	}
	c.Transcode.MP3Bitrate = strings.TrimSpace(c.Transcode.MP3Bitrate)
	if c.Transcode.MP3Bitrate == "" {
		c.Transcode.MP3Bitrate = defaultMP3Bitrate
	}
	if c.Transcode.ChunkSeconds <= 0 {
		c.Transcode.ChunkSeconds = defaultChunkSeconds
	}
}

func (c *Config) normalizeBatch() {
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = defaultBatchWorkers
	}
	if c.Batch.DocumentTimeoutSeconds < 0 {
		c.Batch.DocumentTimeoutSeconds = 0
	}
}

func (c *Config) normalizeLedger() error {
	if strings.TrimSpace(c.Ledger.Path) == "" {
		c.Ledger.Path = defaultLedgerPath
	}
	var err error
	if c.Ledger.Path, err = expandPath(c.Ledger.Path); err != nil {
		return fmt.Errorf("ledger.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
