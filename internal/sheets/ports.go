package sheets

import (
	"context"

	"amplo/internal/core"
)

// Ports for outbound spreadsheet adapters.
type (
	// TransactionMirror rewrites the general sheet with the full dataset
	// (header + one row per transaction). Returns the number of data rows
	// written.
	TransactionMirror interface {
		ReplaceAll(ctx context.Context, txs []core.Transaction) (int, error)
	}

	// ManagerDirectory resolves manager display names to destination
	// spreadsheet IDs. Keys are trimmed exact-match names.
	ManagerDirectory interface {
		Load(ctx context.Context) (map[string]string, error)
	}

	// MonthlyLedger appends pre-built rows to a month-named tab of a
	// manager's spreadsheet. ErrMissingTab is returned when the tab does
	// not exist so callers can skip and warn.
	MonthlyLedger interface {
		AppendMonth(ctx context.Context, spreadsheetID, tab string, rows [][]any) error
	}
)
