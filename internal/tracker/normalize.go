package tracker

import (
	"encoding/json"
	"fmt"

	"amplo/internal/core"
)

// transactionPage is the wire shape of one transactions page.
type transactionPage struct {
	Transactions []rawTransaction `json:"transactions"`
}

// rawTransaction mirrors the upstream payload. The id is numeric in some
// deployments and a string in others, so it is decoded leniently.
type rawTransaction struct {
	ID         json.RawMessage `json:"id"`
	ClientName string          `json:"clientName"`
	Amount     float64         `json:"amount"`
	CreatedAt  string          `json:"createdAt"`
	Status     string          `json:"status"`
	UTMSource  string          `json:"utm_source"`
	Product    string          `json:"productName"`
}

// normalize flattens a raw transaction into the core record. Absent fields
// default to empty string or zero; an unparseable createdAt becomes the zero
// Date rather than failing the row.
func normalize(m core.Manager, raw rawTransaction) core.Transaction {
	return core.Transaction{
		ID:          rawID(raw.ID),
		ManagerID:   m.ID,
		ManagerName: m.Name,
		ClientName:  raw.ClientName,
		Amount:      core.AmountFromFloat(raw.Amount),
		CreatedAt:   core.ParseCreatedAt(raw.CreatedAt),
		Status:      raw.Status,
		Source:      raw.UTMSource,
		Product:     raw.Product,
	}
}

func rawID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return fmt.Sprintf("%d", n)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return fmt.Sprintf("%.0f", f)
	}
	return string(raw)
}
