package core

import "testing"

func TestSummarize(t *testing.T) {
	// One paid + one pending must yield a 50% conversion.
	txs := []Transaction{
		{Status: StatusPaid, Amount: Money{Cents: 1000}},
		{Status: StatusPending, Amount: Money{Cents: 500}},
	}
	s := Summarize(txs)
	if s.Count != 2 || s.Paid != 1 || s.Pending != 1 {
		t.Fatalf("counts: %+v", s)
	}
	if s.Total.Cents != 1500 {
		t.Fatalf("total: %d", s.Total.Cents)
	}
	if s.ConversionPct != 50 {
		t.Fatalf("conversion: %v", s.ConversionPct)
	}
}

func TestSummarizeIgnoresOtherStatuses(t *testing.T) {
	txs := []Transaction{
		{Status: "refunded", Amount: Money{Cents: 100}},
		{Status: StatusPaid, Amount: Money{Cents: 200}},
	}
	s := Summarize(txs)
	if s.Paid != 1 || s.Pending != 0 {
		t.Fatalf("counts: %+v", s)
	}
	if s.Total.Cents != 300 {
		t.Fatalf("total should include every status, got %d", s.Total.Cents)
	}
	if s.ConversionPct != 100 {
		t.Fatalf("conversion: %v", s.ConversionPct)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Count != 0 || s.Total.Cents != 0 || s.ConversionPct != 0 {
		t.Fatalf("zero summary expected, got %+v", s)
	}
}
