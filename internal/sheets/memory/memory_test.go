package memory

import (
	"context"
	"errors"
	"testing"

	"amplo/internal/core"
	ports "amplo/internal/sheets"
)

func TestReplaceAllWritesHeaderAndRows(t *testing.T) {
	s := New(nil)
	n, err := s.ReplaceAll(context.Background(), []core.Transaction{
		{ID: "1", ManagerName: "Ana"},
		{ID: "2", ManagerName: "Bruno"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("rows written: %d", n)
	}
	mirror := s.Mirror()
	if len(mirror) != 3 {
		t.Fatalf("mirror rows: %d", len(mirror))
	}
	if mirror[0][0] != "Manager Name" {
		t.Fatalf("header: %v", mirror[0])
	}
	if mirror[2][0] != "Bruno" {
		t.Fatalf("row order: %v", mirror[2])
	}
}

func TestReplaceAllEmptyDatasetKeepsHeader(t *testing.T) {
	s := New(nil)
	if _, err := s.ReplaceAll(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Mirror()) != 1 {
		t.Fatalf("expected header only, got %d rows", len(s.Mirror()))
	}
}

func TestLoadTrimsMapping(t *testing.T) {
	s := New(map[string]string{" Ana ": " sheet-ana "})
	m, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["Ana"] != "sheet-ana" {
		t.Fatalf("mapping: %v", m)
	}
}

func TestAppendMonthMissingTab(t *testing.T) {
	s := New(nil)
	s.DeclareTabs("sheet-ana", "Janeiro")
	err := s.AppendMonth(context.Background(), "sheet-ana", "Junho", [][]any{{"x"}})
	if !errors.Is(err, ports.ErrMissingTab) {
		t.Fatalf("got %v", err)
	}
	if err := s.AppendMonth(context.Background(), "sheet-ana", "Janeiro", [][]any{{"x"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Ledger("sheet-ana", "Janeiro")) != 1 {
		t.Fatal("row not appended")
	}
}
