// Package services orchestrates the refresh cycle: fetch everything from the
// tracker, replace the stored snapshot, and ask the worker to export it.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"amplo/internal/core"
	"amplo/internal/tracker"
)

type (
	// Fetcher is the upstream aggregation entry point.
	Fetcher interface {
		FetchAll(ctx context.Context, window tracker.DateRange) ([]core.Transaction, error)
	}

	// SnapshotStore persists the fetched dataset.
	SnapshotStore interface {
		ReplaceSnapshot(ctx context.Context, txs []core.Transaction, fetchedAt time.Time) error
	}

	// ExportPublisher notifies the export worker after a refresh.
	ExportPublisher interface {
		PublishExportRequest(ctx context.Context, transactionCount int) error
	}
)

type RefreshResult struct {
	Transactions int
	FetchedAt    time.Time
}

type RefreshService struct {
	fetcher   Fetcher
	store     SnapshotStore
	publisher ExportPublisher // optional
	window    tracker.DateRange
	now       func() time.Time
}

func NewRefreshService(fetcher Fetcher, store SnapshotStore, publisher ExportPublisher, window tracker.DateRange) *RefreshService {
	return &RefreshService{
		fetcher:   fetcher,
		store:     store,
		publisher: publisher,
		window:    window,
		now:       time.Now,
	}
}

// Refresh rebuilds the snapshot from scratch. A fetch failure leaves the
// previous snapshot untouched; a publish failure is logged but does not fail
// the refresh, since the worker ticks on its own as a fallback.
func (s *RefreshService) Refresh(ctx context.Context) (RefreshResult, error) {
	fetchedAt := s.now()
	txs, err := s.fetcher.FetchAll(ctx, s.window)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("fetch transactions: %w", err)
	}

	if err := s.store.ReplaceSnapshot(ctx, txs, fetchedAt); err != nil {
		return RefreshResult{}, fmt.Errorf("store snapshot: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishExportRequest(ctx, len(txs)); err != nil {
			slog.WarnContext(ctx, "Export request not published", "error", err, "transactions", len(txs))
		}
	}

	return RefreshResult{Transactions: len(txs), FetchedAt: fetchedAt}, nil
}

// RunPeriodic refreshes immediately and then on a fixed interval until the
// context is cancelled. Failed cycles are logged and the previous snapshot
// keeps serving.
func (s *RefreshService) RunPeriodic(ctx context.Context, interval time.Duration) {
	refresh := func() {
		res, err := s.Refresh(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "Refresh failed, keeping previous snapshot", "error", err)
			return
		}
		slog.InfoContext(ctx, "Refresh completed", "transactions", res.Transactions)
	}

	refresh()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}

// CurrentMonthRange returns the first and last day of the month containing
// now in the given location. It is the panel's default filter window, the
// same default the operators see on page load.
func CurrentMonthRange(now time.Time, loc *time.Location) (core.Date, core.Date) {
	local := now.In(loc)
	y, m, _ := local.Date()
	first := core.NewDate(y, int(m), 1)
	last := core.NewDate(y, int(m), daysIn(y, int(m)))
	return first, last
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
