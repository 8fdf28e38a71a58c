// Package memory provides in-memory spreadsheet adapters for tests and the
// sheets-less dev backend.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"amplo/internal/core"
	ports "amplo/internal/sheets"
)

type Store struct {
	mu      sync.Mutex
	mirror  [][]any
	mapping map[string]string
	// ledgers is keyed by spreadsheetID, then tab name.
	ledgers map[string]map[string][][]any
	// tabs whitelists existing tabs per spreadsheet; nil means every tab exists.
	tabs map[string]map[string]bool
}

var (
	_ ports.TransactionMirror = (*Store)(nil)
	_ ports.ManagerDirectory  = (*Store)(nil)
	_ ports.MonthlyLedger     = (*Store)(nil)
)

func New(mapping map[string]string) *Store {
	m := make(map[string]string, len(mapping))
	for k, v := range mapping {
		m[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return &Store{
		mapping: m,
		ledgers: make(map[string]map[string][][]any),
	}
}

// DeclareTabs restricts a spreadsheet to the given tabs, mimicking real
// documents where month tabs may be missing.
func (s *Store) DeclareTabs(spreadsheetID string, tabs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tabs == nil {
		s.tabs = make(map[string]map[string]bool)
	}
	set := make(map[string]bool, len(tabs))
	for _, t := range tabs {
		set[t] = true
	}
	s.tabs[spreadsheetID] = set
}

func (s *Store) ReplaceAll(_ context.Context, txs []core.Transaction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([][]any, 0, len(txs)+1)
	header := make([]any, len(ports.MirrorHeader))
	for i, h := range ports.MirrorHeader {
		header[i] = h
	}
	rows = append(rows, header)
	for _, t := range txs {
		rows = append(rows, ports.MirrorRow(t))
	}
	s.mirror = rows
	return len(txs), nil
}

func (s *Store) Load(_ context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.mapping))
	for k, v := range s.mapping {
		out[k] = v
	}
	return out, nil
}

func (s *Store) AppendMonth(_ context.Context, spreadsheetID, tab string, rows [][]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set, ok := s.tabs[spreadsheetID]; ok && !set[tab] {
		return fmt.Errorf("%w: %s", ports.ErrMissingTab, tab)
	}
	if s.ledgers[spreadsheetID] == nil {
		s.ledgers[spreadsheetID] = make(map[string][][]any)
	}
	s.ledgers[spreadsheetID][tab] = append(s.ledgers[spreadsheetID][tab], rows...)
	return nil
}

// Mirror returns a copy of the mirrored sheet including the header row.
func (s *Store) Mirror() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.mirror))
	copy(out, s.mirror)
	return out
}

// Ledger returns the rows appended to one tab of one spreadsheet.
func (s *Store) Ledger(spreadsheetID, tab string) [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledgers[spreadsheetID][tab]
}
