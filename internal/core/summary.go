package core

// Summary is the KPI block computed over a (usually filtered) transaction set.
type Summary struct {
	Count         int
	Total         Money
	Paid          int
	Pending       int
	ConversionPct float64 // paid / (paid + pending) * 100
}

// Summarize computes the dashboard KPIs. Conversion is 0 when no transaction
// is either paid or pending.
func Summarize(txs []Transaction) Summary {
	var s Summary
	s.Count = len(txs)
	for _, t := range txs {
		s.Total.Cents += t.Amount.Cents
		switch t.Status {
		case StatusPaid:
			s.Paid++
		case StatusPending:
			s.Pending++
		}
	}
	if considered := s.Paid + s.Pending; considered > 0 {
		s.ConversionPct = float64(s.Paid) / float64(considered) * 100
	}
	return s
}
