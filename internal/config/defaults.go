package config

const (
	defaultAssetsDir              = "~/slidevox/assets"
	defaultOutputDir              = "~/slidevox/output"
	defaultLogDir                 = "~/.local/share/slidevox/logs"
	defaultLedgerPath             = "~/.local/share/slidevox/ledger.db"
	defaultLogRetentionDays       = 30
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultTieBreak               = TieBreakFirst
	defaultAssetGlob              = "*.wav"
	defaultMinAssetBytes          = MinSuspectAssetBytes
	defaultOnCodecUnavailable     = CodecPolicySkip
	defaultAACBitrate             = "128k"
	defaultMP3Bitrate             = "128k"
	defaultChunkSeconds           = 1
	defaultBatchWorkers           = 2
	defaultDocumentTimeoutSeconds = 600
	defaultNtfyTimeoutSeconds     = 10
)

// MinSuspectAssetBytes is the floor for replacement.min_asset_bytes. Smaller
// recordings are always placeholders and are never written.
const MinSuspectAssetBytes = 100

// Tie-break policies for assets that match the same slot.
const (
	TieBreakFirst    = "first"
	TieBreakShortest = "shortest"
	TieBreakStrict   = "strict"
)

// Policies applied when the platform cannot encode a payload's codec.
const (
	CodecPolicySkip        = "skip"
	CodecPolicyPassthrough = "passthrough"
	CodecPolicyAbort       = "abort"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			AssetsDir: defaultAssetsDir,
			OutputDir: defaultOutputDir,
			WorkDir:   defaultWorkDir(),
			LogDir:    defaultLogDir,
		},
		Matching: Matching{
			TieBreak:  defaultTieBreak,
			AssetGlob: defaultAssetGlob,
		},
		Replacement: Replacement{
			MinAssetBytes:      defaultMinAssetBytes,
			OnCodecUnavailable: defaultOnCodecUnavailable,
		},
		Transcode: Transcode{
			FFmpegBinary:  "ffmpeg",
			FFprobeBinary: "ffprobe",
			AACBitrate:    defaultAACBitrate,
			MP3Bitrate:    defaultMP3Bitrate,
			VerifyOutput:  true,
			ChunkSeconds:  defaultChunkSeconds,
		},
		Batch: Batch{
			Workers:                defaultBatchWorkers,
			DocumentTimeoutSeconds: defaultDocumentTimeoutSeconds,
		},
		Ledger: Ledger{
			Enabled: true,
			Path:    defaultLedgerPath,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
