package services

import (
	"context"
	"strings"
	"testing"

	memoryadapter "github.com/mailsage-labs/mailsage-core/internal/adapters/driven/memory"
)

func TestConversationMemory_RoundTrip(t *testing.T) {
	mem := NewConversationMemory(memoryadapter.NewTranscriptStore(), 0, nil)
	ctx := context.Background()

	if got := mem.Render(ctx); got != "" {
		t.Errorf("expected empty render for empty memory, got %q", got)
	}

	if err := mem.Append(ctx, "q1", "a1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mem.Append(ctx, "q2", "a2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rendered := mem.Render(ctx)
	for _, want := range []string{"q1", "a1", "q2", "a2"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("rendered transcript missing %q:\n%s", want, rendered)
		}
	}

	// Chronological order preserved.
	if strings.Index(rendered, "q1") > strings.Index(rendered, "q2") {
		t.Errorf("transcript out of order:\n%s", rendered)
	}
	if strings.Index(rendered, "a1") > strings.Index(rendered, "q2") {
		t.Errorf("answer a1 should precede question q2:\n%s", rendered)
	}
}

func TestConversationMemory_Clear(t *testing.T) {
	mem := NewConversationMemory(memoryadapter.NewTranscriptStore(), 0, nil)
	ctx := context.Background()

	_ = mem.Append(ctx, "q", "a")
	if err := mem.Clear(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := mem.Render(ctx); got != "" {
		t.Errorf("expected empty render after clear, got %q", got)
	}
}

func TestConversationMemory_EvictsOldest(t *testing.T) {
	mem := NewConversationMemory(memoryadapter.NewTranscriptStore(), 2, nil)
	ctx := context.Background()

	_ = mem.Append(ctx, "first", "a1")
	_ = mem.Append(ctx, "second", "a2")
	_ = mem.Append(ctx, "third", "a3")

	rendered := mem.Render(ctx)
	if strings.Contains(rendered, "first") {
		t.Errorf("expected oldest entry evicted, got:\n%s", rendered)
	}
	if !strings.Contains(rendered, "second") || !strings.Contains(rendered, "third") {
		t.Errorf("expected two most recent entries kept, got:\n%s", rendered)
	}
}
