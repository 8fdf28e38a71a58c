// Package worker reconciles the stored snapshot into the spreadsheets: the
// full dataset mirrors into the general sheet, and per-manager rows append
// into month-named tabs of each manager's own document.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"amplo/internal/amqp"
	"amplo/internal/core"
	"amplo/internal/sheets"
)

// SnapshotReader is the storage side the worker needs.
type SnapshotReader interface {
	ListSnapshot(ctx context.Context) ([]core.Transaction, time.Time, error)
}

type ExportWorker struct {
	storage   SnapshotReader
	mirror    sheets.TransactionMirror
	directory sheets.ManagerDirectory
	ledger    sheets.MonthlyLedger
}

// ExportStats summarizes one reconciliation run. Everything that was skipped
// was already logged as a warning.
type ExportStats struct {
	Mirrored         int
	LedgerRows       int
	SkippedRows      int
	UnmappedManagers int
	MissingTabs      int
}

func NewExportWorker(storage SnapshotReader, mirror sheets.TransactionMirror, directory sheets.ManagerDirectory, ledger sheets.MonthlyLedger) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		mirror:    mirror,
		directory: directory,
		ledger:    ledger,
	}
}

// HandleExportRequest processes one AMQP export request.
func (w *ExportWorker) HandleExportRequest(ctx context.Context, msg *amqp.ExportRequest) error {
	slog.InfoContext(ctx, "Processing export request",
		"batch_id", msg.BatchID,
		"transaction_count", msg.TransactionCount)
	_, err := w.Export(ctx)
	return err
}

// Export runs one full reconciliation over the current snapshot. The export
// always covers the unfiltered dataset.
func (w *ExportWorker) Export(ctx context.Context) (ExportStats, error) {
	var stats ExportStats

	txs, fetchedAt, err := w.storage.ListSnapshot(ctx)
	if err != nil {
		return stats, fmt.Errorf("load snapshot: %w", err)
	}

	mirrored, err := w.mirror.ReplaceAll(ctx, txs)
	if err != nil {
		return stats, fmt.Errorf("mirror general sheet: %w", err)
	}
	stats.Mirrored = mirrored

	if len(txs) == 0 {
		slog.WarnContext(ctx, "Snapshot is empty, nothing to reconcile", "fetched_at", fetchedAt)
		return stats, nil
	}

	mapping, err := w.directory.Load(ctx)
	if err != nil {
		return stats, fmt.Errorf("load manager directory: %w", err)
	}

	for _, group := range groupByManager(txs) {
		spreadsheetID, ok := mapping[strings.TrimSpace(group.manager)]
		if !ok {
			stats.UnmappedManagers++
			slog.WarnContext(ctx, "Manager has no destination spreadsheet, skipping",
				"manager", group.manager, "transactions", len(group.txs))
			continue
		}
		w.appendManagerMonths(ctx, spreadsheetID, group, &stats)
	}

	slog.InfoContext(ctx, "Reconciliation finished",
		"mirrored", stats.Mirrored,
		"ledger_rows", stats.LedgerRows,
		"skipped_rows", stats.SkippedRows,
		"unmapped_managers", stats.UnmappedManagers,
		"missing_tabs", stats.MissingTabs)
	return stats, nil
}

func (w *ExportWorker) appendManagerMonths(ctx context.Context, spreadsheetID string, group managerGroup, stats *ExportStats) {
	byTab := make(map[string][][]any)
	var tabOrder []string

	for _, t := range group.txs {
		row, err := sheets.LedgerRow(t)
		if err != nil {
			stats.SkippedRows++
			slog.WarnContext(ctx, "Dropping row from export",
				"manager", group.manager, "transaction_id", t.ID, "reason", err)
			continue
		}
		tab := sheets.MonthTab(t.CreatedAt)
		if _, seen := byTab[tab]; !seen {
			tabOrder = append(tabOrder, tab)
		}
		byTab[tab] = append(byTab[tab], row)
	}

	for _, tab := range tabOrder {
		rows := byTab[tab]
		err := w.ledger.AppendMonth(ctx, spreadsheetID, tab, rows)
		switch {
		case errors.Is(err, sheets.ErrMissingTab):
			stats.MissingTabs++
			slog.WarnContext(ctx, "Month tab missing, skipping",
				"manager", group.manager, "tab", tab, "rows", len(rows))
		case err != nil:
			// Spreadsheet API failure degrades to a skipped manager/month,
			// never a failed run.
			slog.WarnContext(ctx, "Append to month tab failed, skipping",
				"manager", group.manager, "tab", tab, "rows", len(rows), "error", err)
		default:
			stats.LedgerRows += len(rows)
		}
	}
}

type managerGroup struct {
	manager string
	txs     []core.Transaction
}

// groupByManager groups transactions by manager display name, with groups
// ordered alphabetically for deterministic runs.
func groupByManager(txs []core.Transaction) []managerGroup {
	byName := make(map[string][]core.Transaction)
	for _, t := range txs {
		byName[t.ManagerName] = append(byName[t.ManagerName], t)
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]managerGroup, 0, len(names))
	for _, name := range names {
		out = append(out, managerGroup{manager: name, txs: byName[name]})
	}
	return out
}
