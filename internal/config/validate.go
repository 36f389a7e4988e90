package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateReplacement(); err != nil {
		return err
	}
	if err := c.validateTranscode(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.AssetsDir) == "" {
		return errors.New("paths.assets_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if filepath.Clean(c.Paths.AssetsDir) == filepath.Clean(c.Paths.OutputDir) {
		return errors.New("paths.output_dir must differ from paths.assets_dir")
	}
	return nil
}

func (c *Config) validateMatching() error {
	switch c.Matching.TieBreak {
	case TieBreakFirst, TieBreakShortest, TieBreakStrict:
	default:
		return fmt.Errorf("matching.tie_break must be one of %q, %q, %q (got %q)", TieBreakFirst, TieBreakShortest, TieBreakStrict, c.Matching.TieBreak)
	}
	if _, err := filepath.Match(c.Matching.AssetGlob, "sample"); err != nil {
		return fmt.Errorf("matching.asset_glob: %w", err)
	}
	return nil
}

func (c *Config) validateReplacement() error {
	if c.Replacement.MinAssetBytes < MinSuspectAssetBytes {
		return fmt.Errorf("replacement.min_asset_bytes must be >= %d (got %d)", MinSuspectAssetBytes, c.Replacement.MinAssetBytes)
	}
	switch c.Replacement.OnCodecUnavailable {
	case CodecPolicySkip, CodecPolicyPassthrough, CodecPolicyAbort:
	default:
		return fmt.Errorf("replacement.on_codec_unavailable must be one of %q, %q, %q (got %q)", CodecPolicySkip, CodecPolicyPassthrough, CodecPolicyAbort, c.Replacement.OnCodecUnavailable)
	}
	return nil
}

func (c *Config) validateTranscode() error {
	if c.Transcode.ChunkSeconds <= 0 {
		return errors.New("transcode.chunk_seconds must be positive")
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.Workers <= 0 {
		return errors.New("batch.workers must be positive")
	}
	if c.Batch.DocumentTimeoutSeconds < 0 {
		return errors.New("batch.document_timeout_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	if !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic must be an http(s) URL (got %q)", topic)
	}
	return nil
}
