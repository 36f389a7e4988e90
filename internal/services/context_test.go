package services_test

import (
	"context"
	"testing"

	"slidevox/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithDocument(ctx, "Intro_deDE_enUS_Final.pptx")
	ctx = services.WithSlotID(ctx, 257)
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if doc, ok := services.DocumentFromContext(ctx); !ok || doc != "Intro_deDE_enUS_Final.pptx" {
		t.Fatalf("unexpected document: %v %v", doc, ok)
	}
	if slot, ok := services.SlotIDFromContext(ctx); !ok || slot != 257 {
		t.Fatalf("unexpected slot id: %v %v", slot, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestDocumentBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithDocument(ctx, "")
	if _, ok := services.DocumentFromContext(ctx); ok {
		t.Fatal("expected no document value")
	}
	if _, ok := services.SlotIDFromContext(ctx); ok {
		t.Fatal("expected no slot value")
	}
}
