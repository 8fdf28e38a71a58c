package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"amplo/internal/core"
	"amplo/internal/sheets"
)

const xlsxSheetName = "Transações"

// WriteXLSX renders the transactions as a single-sheet workbook with the
// same column layout as the CSV export.
func WriteXLSX(w io.Writer, txs []core.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(xlsxSheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	for col, h := range sheets.MirrorHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(xlsxSheetName, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, t := range txs {
		values := []any{
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
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("cell for row %d: %w", i+2, err)
			}
			if err := f.SetCellValue(xlsxSheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", i+2, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
