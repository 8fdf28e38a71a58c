package sheets

import (
	"errors"

	"amplo/internal/core"
)

// ErrMissingTab signals that a month tab is absent from the destination
// spreadsheet. The exporter skips the month and warns instead of creating it.
var ErrMissingTab = errors.New("month tab not found")

// MirrorHeader is the column order of the general mirror sheet. It matches
// the panel's CSV export so downstream consumers see one layout.
var MirrorHeader = []string{
	"Manager Name", "Manager ID", "Transaction ID", "Client Name",
	"Amount", "Created At", "Status", "UTM Source", "Product Name",
}

// MirrorRow renders one transaction for the general sheet. Dates are
// dd/mm/yyyy and blank when the upstream timestamp failed to parse.
func MirrorRow(t core.Transaction) []any {
	return []any{
		t.ManagerName,
		t.ManagerID,
		t.ID,
		t.ClientName,
		t.Amount.Reais(),
		t.CreatedAt.DisplayString(),
		t.Status,
		t.Source,
		t.Product,
	}
}

// Fixed positional slots of the per-manager month tabs. The destination
// sheets carry 13 bookkeeping columns (A-M) maintained by hand; the panel
// only fills the source, product and date slots and appends the amount in
// column N.
const (
	ledgerLeadingColumns = 13
	ledgerSourceSlot     = 10 // column K
	ledgerProductSlot    = 11 // column L
	ledgerDateSlot       = 12 // column M
)

// LedgerRow builds the fixed-width row appended to a month tab, or an error
// naming the missing field when the transaction is not exportable.
func LedgerRow(t core.Transaction) ([]any, error) {
	if err := t.ValidateForExport(); err != nil {
		return nil, err
	}
	row := make([]any, ledgerLeadingColumns, ledgerLeadingColumns+1)
	for i := range row {
		row[i] = ""
	}
	row[ledgerSourceSlot] = t.Source
	row[ledgerProductSlot] = t.Product
	row[ledgerDateSlot] = t.CreatedAt.DisplayString()
	return append(row, t.Amount.Reais()), nil
}

// monthTabs holds the Portuguese tab names used by the manager spreadsheets.
var monthTabs = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// MonthTab returns the tab name for a transaction's creation month, or ""
// for the zero Date.
func MonthTab(d core.Date) string {
	m := d.MonthIndex()
	if m < 1 || m > 12 {
		return ""
	}
	return monthTabs[m-1]
}
