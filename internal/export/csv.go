// Package export renders the filtered view as downloadable files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"amplo/internal/core"
	"amplo/internal/sheets"
)

// WriteCSV streams the transactions as CSV with the mirror header layout.
// Dates render dd/mm/yyyy and stay blank when the timestamp never parsed.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(sheets.MirrorHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range txs {
		record := []string{
			t.ManagerName,
			strconv.FormatInt(t.ManagerID, 10),
			t.ID,
			t.ClientName,
			strconv.FormatFloat(t.Amount.Reais(), 'f', 2, 64),
			t.CreatedAt.DisplayString(),
			t.Status,
			t.Source,
			t.Product,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write transaction %s: %w", t.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
