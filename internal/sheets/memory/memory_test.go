package memory

import (
	"context"
	"testing"

	"presupuesto/internal/sheets"
)

func TestStore_WriteSummary(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	rows := [][]any{{"Resumen", "2025-03"}}
	ref, err := s.WriteSummary(ctx, sheets.Summary{Sheet: "Resumen 2025-03", Rows: rows})
	if err != nil {
		t.Fatalf("WriteSummary() error = %v", err)
	}
	if ref != "mem:Resumen 2025-03:1" {
		t.Errorf("unexpected ref %q", ref)
	}

	// The stored copy is independent of the caller's slice.
	rows[0][1] = "changed"
	got, ok := s.Sheet("Resumen 2025-03")
	if !ok || got[0][1] != "2025-03" {
		t.Errorf("stored rows = %v", got)
	}

	if _, err := s.WriteSummary(ctx, sheets.Summary{Sheet: "Resumen Total"}); err != nil {
		t.Fatal(err)
	}
	if names := s.Names(); len(names) != 2 || names[0] != "Resumen 2025-03" || names[1] != "Resumen Total" {
		t.Errorf("Names() = %v", names)
	}
	if s.Writes() != 2 {
		t.Errorf("Writes() = %d, want 2", s.Writes())
	}
}

func TestStore_RejectsUnnamedSheet(t *testing.T) {
	if _, err := New(nil).WriteSummary(context.Background(), sheets.Summary{}); err == nil {
		t.Error("expected error for unnamed sheet")
	}
}
