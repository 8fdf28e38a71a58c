package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusPaid    = "paid"
	StatusPending = "pending"
)

type (
	// Manager is a sales representative entity from the tracker API.
	// Managers are ephemeral: the list is re-fetched on every refresh.
	Manager struct {
		ID   int64  `json:"manager_id"`
		Name string `json:"name"`
	}

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is one normalized monetary event. CreatedAt is the zero
	// Date when the upstream timestamp could not be parsed.
	Transaction struct {
		ID          string
		ManagerID   int64
		ManagerName string
		ClientName  string
		Amount      Money
		CreatedAt   Date
		Status      string // free-text upstream, observed "paid"/"pending"
		Source      string // utm_source tag
		Product     string
	}
)

var (
	ErrMissingSource  = errors.New("missing traffic source")
	ErrMissingProduct = errors.New("missing product name")
	ErrMissingDate    = errors.New("missing creation date")
	ErrMissingAmount  = errors.New("missing amount")
)

// ParseCreatedAt converts an upstream ISO-8601 timestamp ("Z" suffix) to a
// Date. Date-only values are accepted too. Any parse failure yields the zero
// Date rather than an error.
func ParseCreatedAt(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Date{Time: t.UTC()}
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return Date{Time: t}
	}
	return Date{}
}

// NewDate creates a Date from year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DayOnly truncates the date to midnight, which is the granularity used by
// the filter engine and by spreadsheet rows.
func (d Date) DayOnly() Date {
	if d.IsZero() {
		return d
	}
	y, m, dd := d.Date()
	return Date{Time: time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)}
}

// DisplayString renders dd/mm/yyyy, or "" for the zero Date.
func (d Date) DisplayString() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("02/01/2006")
}

// Month returns the calendar month (1-12), 0 for the zero Date.
func (d Date) MonthIndex() int {
	if d.IsZero() {
		return 0
	}
	return int(d.Time.Month())
}

// ValidateForExport reports why a transaction must be excluded from the
// per-manager spreadsheet reconciliation. Row-level field emptiness is the
// only validation applied before export.
func (t Transaction) ValidateForExport() error {
	if strings.TrimSpace(t.Source) == "" {
		return ErrMissingSource
	}
	if strings.TrimSpace(t.Product) == "" {
		return ErrMissingProduct
	}
	if t.CreatedAt.IsZero() {
		return ErrMissingDate
	}
	if t.Amount.Cents == 0 {
		return ErrMissingAmount
	}
	return nil
}
