// Package core holds the normalized transaction model shared by the fetcher,
// the filter engine, and the spreadsheet exporter.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AmountFromFloat converts an upstream JSON amount to cents with half-up
// rounding. The tracker API emits amounts as plain numbers (e.g. 150.5).
func AmountFromFloat(v float64) Money {
	return Money{Cents: int64(math.Round(v * 100))}
}

// Reais returns the amount as a float64 for display and wire output.
// Use cents for arithmetic to avoid floating-point drift.
func (m Money) Reais() float64 {
	return float64(m.Cents) / 100.0
}

// FormatBRL renders the amount in Brazilian convention: "R$ 1.234,56".
func (m Money) FormatBRL() string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := cents / 100
	rem := cents % 100

	digits := strconv.FormatInt(whole, 10)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	s := "R$ " + strings.Join(groups, ".") + "," + fmt.Sprintf("%02d", rem)
	if neg {
		return "-" + s
	}
	return s
}
