package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	documentKey  contextKey = "document"
	slotIDKey    contextKey = "slot_id"
	requestIDKey contextKey = "request_id"
)

// WithRunID annotates context with the batch run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the batch run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithDocument annotates context with the deck currently being processed.
func WithDocument(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, documentKey, path)
}

// DocumentFromContext returns the document path if present.
func DocumentFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(documentKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithSlotID annotates context with the narration slot identifier.
func WithSlotID(ctx context.Context, id uint32) context.Context {
	return context.WithValue(ctx, slotIDKey, id)
}

// SlotIDFromContext extracts the slot identifier if present.
func SlotIDFromContext(ctx context.Context) (uint32, bool) {
	v := ctx.Value(slotIDKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case uint32:
		return val, true
	case int:
		return uint32(val), true
	default:
		return 0, false
	}
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
