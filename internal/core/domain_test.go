package core

import (
	"errors"
	"testing"
)

func TestParseCreatedAt(t *testing.T) {
	cases := []struct {
		in   string
		zero bool
		y    int
		m    int
		d    int
	}{
		{"2025-06-15T13:45:00Z", false, 2025, 6, 15},
		{"2025-06-15T13:45:00.123Z", false, 2025, 6, 15},
		{"2025-06-15", false, 2025, 6, 15},
		{"", true, 0, 0, 0},
		{"not-a-date", true, 0, 0, 0},
		{"2025-13-99T00:00:00Z", true, 0, 0, 0},
		{"15/06/2025", true, 0, 0, 0},
	}
	for i, tc := range cases {
		got := ParseCreatedAt(tc.in)
		if got.IsZero() != tc.zero {
			t.Fatalf("case %d (%q): zero=%v, want %v", i, tc.in, got.IsZero(), tc.zero)
		}
		if tc.zero {
			continue
		}
		y, m, d := got.Date()
		if y != tc.y || int(m) != tc.m || d != tc.d {
			t.Fatalf("case %d (%q): got %d-%d-%d", i, tc.in, y, m, d)
		}
	}
}

func TestDateDisplayString(t *testing.T) {
	if got := NewDate(2025, 6, 3).DisplayString(); got != "03/06/2025" {
		t.Fatalf("got %q", got)
	}
	if got := (Date{}).DisplayString(); got != "" {
		t.Fatalf("zero date should render empty, got %q", got)
	}
}

func TestValidateForExport(t *testing.T) {
	good := Transaction{
		Source:    "google",
		Product:   "Plano Pro",
		CreatedAt: NewDate(2025, 6, 1),
		Amount:    Money{Cents: 100},
	}
	if err := good.ValidateForExport(); err != nil {
		t.Fatalf("expected exportable, got %v", err)
	}

	cases := []struct {
		mutate func(*Transaction)
		want   error
	}{
		{func(tx *Transaction) { tx.Source = "  " }, ErrMissingSource},
		{func(tx *Transaction) { tx.Product = "" }, ErrMissingProduct},
		{func(tx *Transaction) { tx.CreatedAt = Date{} }, ErrMissingDate},
		{func(tx *Transaction) { tx.Amount = Money{} }, ErrMissingAmount},
	}
	for i, tc := range cases {
		tx := good
		tc.mutate(&tx)
		if err := tx.ValidateForExport(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: got %v, want %v", i, err, tc.want)
		}
	}
}
