package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrStorage       = errors.New("storage failure")
	ErrPackageBusy   = errors.New("package is locked by another writer")

	ErrMalformedPackage         = errors.New("malformed package")
	ErrUnresolvableLocale       = errors.New("unresolvable locale")
	ErrCodecUnavailable         = errors.New("codec unavailable")
	ErrUnsupportedChannelLayout = errors.New("unsupported channel layout")
	ErrInvalidSourceAudio       = errors.New("invalid source audio")
	ErrEncodingFailed           = errors.New("encoding failed")
	ErrNoMediaAttached          = errors.New("no media attached")
	ErrSuspectAsset             = errors.New("suspect asset")
)

// Scope describes how far a failure propagates.
type Scope int

const (
	// ScopeSlot failures skip one narration slot.
	ScopeSlot Scope = iota
	// ScopeDocument failures skip the remainder of one deck.
	ScopeDocument
	// ScopeRun failures stop the batch.
	ScopeRun
)

func (s Scope) String() string {
	switch s {
	case ScopeSlot:
		return "slot"
	case ScopeDocument:
		return "document"
	case ScopeRun:
		return "run"
	default:
		return "unknown"
	}
}

// Wrap builds an error message that includes document context while tagging it
// with the provided marker for later scope classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, document, operation, message string, err error) error {
	detail := buildDetail(document, operation, message)
	if marker == nil {
		marker = ErrStorage
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ScopeOf maps a pipeline error to the widest unit of work it invalidates.
func ScopeOf(err error) Scope {
	switch {
	case err == nil:
		return ScopeSlot
	case errors.Is(err, ErrCodecUnavailable), errors.Is(err, ErrConfiguration):
		return ScopeRun
	case errors.Is(err, ErrUnsupportedChannelLayout),
		errors.Is(err, ErrInvalidSourceAudio),
		errors.Is(err, ErrEncodingFailed),
		errors.Is(err, ErrNoMediaAttached),
		errors.Is(err, ErrSuspectAsset):
		return ScopeSlot
	default:
		return ScopeDocument
	}
}

// Informational reports whether err marks an expected skip rather than a fault.
func Informational(err error) bool {
	return errors.Is(err, ErrNoMediaAttached) || errors.Is(err, ErrSuspectAsset)
}

// ReasonCode returns a stable snake_case label for the marker carried by err.
func ReasonCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedPackage):
		return "malformed_package"
	case errors.Is(err, ErrUnresolvableLocale):
		return "unresolvable_locale"
	case errors.Is(err, ErrCodecUnavailable):
		return "codec_unavailable"
	case errors.Is(err, ErrUnsupportedChannelLayout):
		return "unsupported_channel_layout"
	case errors.Is(err, ErrInvalidSourceAudio):
		return "invalid_source_audio"
	case errors.Is(err, ErrEncodingFailed):
		return "encoding_failed"
	case errors.Is(err, ErrNoMediaAttached):
		return "no_media_attached"
	case errors.Is(err, ErrSuspectAsset):
		return "suspect_asset"
	case errors.Is(err, ErrPackageBusy):
		return "package_busy"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrExternalTool):
		return "external_tool"
	default:
		return "storage"
	}
}

func buildDetail(document, operation, message string) string {
	parts := make([]string, 0, 3)
	if document = strings.TrimSpace(document); document != "" {
		parts = append(parts, document)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
