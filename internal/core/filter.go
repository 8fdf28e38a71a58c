package core

import "strings"

// Filter is a conjunction of categorical and date-range predicates over the
// aggregated transaction set. An empty categorical slice means "select all"
// for that dimension. From/To are inclusive; a zero bound disables that side.
type Filter struct {
	Statuses []string
	Managers []string
	Products []string
	From     Date
	To       Date
}

// Match reports whether the transaction satisfies every predicate.
// A transaction with a zero CreatedAt fails any active date bound.
func (f Filter) Match(t Transaction) bool {
	if !memberOf(f.Statuses, t.Status) {
		return false
	}
	if !memberOf(f.Managers, t.ManagerName) {
		return false
	}
	if !memberOf(f.Products, t.Product) {
		return false
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		if t.CreatedAt.IsZero() {
			return false
		}
		day := t.CreatedAt.DayOnly()
		if !f.From.IsZero() && day.Before(f.From.DayOnly().Time) {
			return false
		}
		if !f.To.IsZero() && day.After(f.To.DayOnly().Time) {
			return false
		}
	}
	return true
}

// Apply returns the matching subset in input order. The result is always a
// fresh slice; the input is never mutated.
func (f Filter) Apply(txs []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

func memberOf(set []string, v string) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(v)) {
			return true
		}
	}
	return false
}
