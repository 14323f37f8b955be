package chat

import (
	"strings"
	"testing"
	"time"
)

func TestInstructionForInjectsTimestamp(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 15, 0, 0, time.UTC)
	for _, variant := range []Variant{VariantClaude, VariantDaisii, VariantTitan} {
		got := InstructionFor(variant, now)
		if !strings.Contains(got, "2026-08-30 09:15:00 UTC") {
			t.Fatalf("%s: timestamp not injected: %q", variant, got)
		}
	}
}

func TestInstructionForDistinctPersonas(t *testing.T) {
	now := time.Now()
	claude := InstructionFor(VariantClaude, now)
	daisii := InstructionFor(VariantDaisii, now)
	titan := InstructionFor(VariantTitan, now)

	if !strings.Contains(claude, "Claude") {
		t.Fatal("claude persona missing")
	}
	if !strings.Contains(daisii, "Daisii") {
		t.Fatal("daisii persona missing")
	}
	if !strings.Contains(titan, "Titan") {
		t.Fatal("titan persona missing")
	}
	if claude == daisii || daisii == titan {
		t.Fatal("personas must differ per variant")
	}
}
