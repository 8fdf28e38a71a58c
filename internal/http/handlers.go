package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"amplo/internal/core"
	"amplo/internal/export"
	"amplo/internal/services"
)

type transactionResponse struct {
	ManagerName   string  `json:"manager_name"`
	ManagerID     int64   `json:"manager_id"`
	TransactionID string  `json:"transaction_id"`
	ClientName    string  `json:"client_name"`
	Amount        float64 `json:"amount"`
	CreatedAt     string  `json:"created_at"`
	Status        string  `json:"status"`
	UTMSource     string  `json:"utm_source"`
	ProductName   string  `json:"product_name"`
}

type transactionListResponse struct {
	Count        int                   `json:"count"`
	RefreshedAt  string                `json:"refreshed_at"`
	Transactions []transactionResponse `json:"transactions"`
}

type summaryResponse struct {
	Count          int     `json:"count"`
	Total          float64 `json:"total"`
	TotalFormatted string  `json:"total_formatted"`
	Paid           int     `json:"paid"`
	Pending        int     `json:"pending"`
	ConversionPct  float64 `json:"conversion_pct"`
}

type managerResponse struct {
	ManagerID   int64  `json:"manager_id"`
	ManagerName string `json:"manager_name"`
}

type indexResponse struct {
	Service      string `json:"service"`
	RefreshedAt  string `json:"refreshed_at"`
	Transactions int    `json:"transactions"`
	Timezone     string `json:"timezone"`

	// CurrentMonth carries the default view operators land on: this month's
	// KPIs, before any filter is applied.
	CurrentMonth summaryResponse `json:"current_month"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := s.getSnapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load snapshot", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	from, to := services.CurrentMonthRange(time.Now(), s.loc)
	monthFilter := core.Filter{From: from, To: to}
	monthSummary := core.Summarize(monthFilter.Apply(data.txs))

	resp := indexResponse{
		Service:      "amplo",
		RefreshedAt:  formatRefreshedAt(data.refreshedAt, s.loc),
		Transactions: len(data.txs),
		Timezone:     s.loc.String(),
		CurrentMonth: toSummaryResponse(monthSummary),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleManagers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := s.getSnapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load snapshot", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	seen := make(map[int64]string)
	for _, tx := range data.txs {
		if _, ok := seen[tx.ManagerID]; !ok {
			seen[tx.ManagerID] = tx.ManagerName
		}
	}

	managers := make([]managerResponse, 0, len(seen))
	for id, name := range seen {
		managers = append(managers, managerResponse{ManagerID: id, ManagerName: name})
	}
	sort.Slice(managers, func(i, j int) bool {
		return managers[i].ManagerName < managers[j].ManagerName
	})

	writeJSON(w, http.StatusOK, managers)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := s.getSnapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load snapshot", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	filtered := filter.Apply(data.txs)
	resp := transactionListResponse{
		Count:        len(filtered),
		RefreshedAt:  formatRefreshedAt(data.refreshedAt, s.loc),
		Transactions: make([]transactionResponse, 0, len(filtered)),
	}
	for _, tx := range filtered {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(tx))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := s.getSnapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load snapshot", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	summary := core.Summarize(filter.Apply(data.txs))
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "csv")
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "xlsx")
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, format string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := s.getSnapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load snapshot", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	filtered := filter.Apply(data.txs)

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="transacoes_filtradas.csv"`)
		if err := export.WriteCSV(w, filtered); err != nil {
			slog.ErrorContext(r.Context(), "CSV export failed", "error", err)
		}
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="transacoes_filtradas.xlsx"`)
		if err := export.WriteXLSX(w, filtered); err != nil {
			slog.ErrorContext(r.Context(), "XLSX export failed", "error", err)
		}
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.refresher == nil {
		http.Error(w, "Refresh not available", http.StatusServiceUnavailable)
		return
	}

	result, err := s.refresher.Refresh(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Manual refresh failed", "error", err)
		http.Error(w, "Refresh failed", http.StatusBadGateway)
		return
	}

	s.invalidateSnapshot()

	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": result.Transactions,
		"refreshed_at": formatRefreshedAt(result.FetchedAt, s.loc),
	})
}

// filterFromQuery builds a filter from repeatable status/manager/product
// params plus optional from/to dates (yyyy-mm-dd).
func filterFromQuery(r *http.Request) (core.Filter, error) {
	q := r.URL.Query()
	filter := core.Filter{
		Statuses: q["status"],
		Managers: q["manager"],
		Products: q["product"],
	}

	if raw := strings.TrimSpace(q.Get("from")); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return core.Filter{}, fmt.Errorf("invalid from date %q, expected yyyy-mm-dd", raw)
		}
		filter.From = core.NewDate(t.Year(), int(t.Month()), t.Day())
	}
	if raw := strings.TrimSpace(q.Get("to")); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return core.Filter{}, fmt.Errorf("invalid to date %q, expected yyyy-mm-dd", raw)
		}
		filter.To = core.NewDate(t.Year(), int(t.Month()), t.Day())
	}

	return filter, nil
}

func toSummaryResponse(s core.Summary) summaryResponse {
	return summaryResponse{
		Count:          s.Count,
		Total:          s.Total.Reais(),
		TotalFormatted: s.Total.FormatBRL(),
		Paid:           s.Paid,
		Pending:        s.Pending,
		ConversionPct:  s.ConversionPct,
	}
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ManagerName:   tx.ManagerName,
		ManagerID:     tx.ManagerID,
		TransactionID: tx.ID,
		ClientName:    tx.ClientName,
		Amount:        tx.Amount.Reais(),
		CreatedAt:     tx.CreatedAt.DisplayString(),
		Status:        tx.Status,
		UTMSource:     tx.Source,
		ProductName:   tx.Product,
	}
}

func formatRefreshedAt(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format("02/01/2006 15:04:05")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
