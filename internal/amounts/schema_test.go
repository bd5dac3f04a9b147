package amounts

import (
	"slices"
	"strings"
	"testing"

	"medbill-amounts/internal/llm"
)

func TestExtractionSchemaShape(t *testing.T) {
	s := ExtractionSchema()
	if s.Type != llm.TypeObject {
		t.Fatalf("expected object schema, got %s", s.Type)
	}
	for _, field := range []string{"currency", "ocr_confidence", "amounts", "status"} {
		if !slices.Contains(s.Required, field) {
			t.Fatalf("expected %s to be required", field)
		}
	}

	status := s.Properties["status"]
	if !slices.Equal(status.Enum, []string{"ok", "no_amounts_found", "document_too_noisy"}) {
		t.Fatalf("unexpected status enum: %v", status.Enum)
	}

	item := s.Properties["amounts"].Items
	if item == nil || item.Type != llm.TypeObject {
		t.Fatalf("expected object items")
	}
	want := []string{"total_bill", "paid", "due", "discount", "tax", "other"}
	if !slices.Equal(item.Properties["type"].Enum, want) {
		t.Fatalf("unexpected amount types: %v", item.Properties["type"].Enum)
	}
	for _, field := range []string{"type", "value", "source", "confidence"} {
		if !slices.Contains(item.Required, field) {
			t.Fatalf("expected amount %s to be required", field)
		}
	}
}

func TestExtractionSchemaIsFreshPerCall(t *testing.T) {
	a := ExtractionSchema()
	a.Properties["status"].Enum[0] = "mutated"
	if ExtractionSchema().Properties["status"].Enum[0] != StatusOK {
		t.Fatalf("schema values must not be shared between calls")
	}
}

func TestInstructionCoversAllSteps(t *testing.T) {
	text := Instruction()
	for _, want := range []string{"OCR", "Normalization", "Classification", "Provenance"} {
		if !strings.Contains(text, want) {
			t.Fatalf("instruction missing %q", want)
		}
	}
}
