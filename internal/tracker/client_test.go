package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"amplo/internal/core"
)

func pageBody(txs ...map[string]any) string {
	b, _ := json.Marshal(map[string]any{"transactions": txs})
	return string(b)
}

func tx(id int, status string) map[string]any {
	return map[string]any{
		"id":          id,
		"clientName":  "Cliente " + strconv.Itoa(id),
		"amount":      150.5,
		"createdAt":   "2025-06-10T12:00:00Z",
		"status":      status,
		"utm_source":  "google",
		"productName": "Plano Pro",
	}
}

func TestManagersFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/managers" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `[{"manager_id":1,"name":"Ana"},{"manager_id":2,"name":"Bruno"}]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	managers, err := c.Managers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(managers) != 2 || managers[0].Name != "Ana" || managers[1].ID != 2 {
		t.Fatalf("managers: %+v", managers)
	}
}

func TestManagersErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Managers(context.Background()); err == nil {
		t.Fatal("expected error for non-success manager listing")
	}
}

func TestPaginationStopsOnEmptyPage(t *testing.T) {
	var pagesServed []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pagesServed = append(pagesServed, page)
		switch page {
		case 1:
			fmt.Fprint(w, pageBody(tx(1, "paid"), tx(2, "pending")))
		case 2:
			fmt.Fprint(w, pageBody(tx(3, "paid")))
		default:
			fmt.Fprint(w, pageBody())
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	txs, err := c.ManagerTransactions(context.Background(), core.Manager{ID: 7, Name: "Ana"}, DateRange{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(txs))
	}
	if len(pagesServed) != 3 || pagesServed[2] != 3 {
		t.Fatalf("pages served: %v", pagesServed)
	}
}

func TestPaginationStopsOnNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, pageBody(tx(1, "paid")))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	txs, err := c.ManagerTransactions(context.Background(), core.Manager{ID: 1, Name: "Ana"}, DateRange{})
	if err != nil {
		t.Fatalf("non-success page must terminate silently, got %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected the first page only, got %d", len(txs))
	}
}

func TestDateWindowQueryParams(t *testing.T) {
	var gotStart, gotEnd string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStart = r.URL.Query().Get("startDate")
		gotEnd = r.URL.Query().Get("endDate")
		fmt.Fprint(w, pageBody())
	}))
	defer srv.Close()

	window := DateRange{Start: core.NewDate(2025, 6, 1), End: core.NewDate(2025, 6, 30)}
	_, err := NewClient(srv.URL).ManagerTransactions(context.Background(), core.Manager{ID: 1}, window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotStart != "2025-06-01" || gotEnd != "2025-06-30" {
		t.Fatalf("window params: start=%q end=%q", gotStart, gotEnd)
	}
}

func TestFetchAllContinuesPastFailingManager(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/managers":
			fmt.Fprint(w, `[{"manager_id":1,"name":"Ana"},{"manager_id":2,"name":"Bruno"}]`)
		case "/api/transactions/manager/1":
			// Malformed body forces a decode error for Ana.
			fmt.Fprint(w, `{"transactions": "boom"`)
		case "/api/transactions/manager/2":
			if r.URL.Query().Get("page") == "1" {
				fmt.Fprint(w, pageBody(tx(10, "paid")))
			} else {
				fmt.Fprint(w, pageBody())
			}
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	all, err := NewClient(srv.URL).FetchAll(context.Background(), DateRange{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 1 || all[0].ManagerName != "Bruno" {
		t.Fatalf("expected Bruno's transaction only, got %+v", all)
	}
}

func TestFetchAllKeepsPagesFetchedBeforeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/managers":
			fmt.Fprint(w, `[{"manager_id":1,"name":"Ana"},{"manager_id":2,"name":"Bruno"}]`)
		case "/api/transactions/manager/1":
			if r.URL.Query().Get("page") == "1" {
				fmt.Fprint(w, pageBody(tx(10, "paid"), tx(11, "pending")))
			} else {
				// Page 2 fails mid-pagination.
				fmt.Fprint(w, `{"transactions": "boom"`)
			}
		case "/api/transactions/manager/2":
			if r.URL.Query().Get("page") == "1" {
				fmt.Fprint(w, pageBody(tx(20, "paid")))
			} else {
				fmt.Fprint(w, pageBody())
			}
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	all, err := NewClient(srv.URL).FetchAll(context.Background(), DateRange{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected Ana's first page plus Bruno's transaction, got %+v", all)
	}
	if all[0].ManagerName != "Ana" || all[1].ManagerName != "Ana" || all[2].ManagerName != "Bruno" {
		t.Fatalf("unexpected manager order: %+v", all)
	}
}

func TestNormalization(t *testing.T) {
	raw := rawTransaction{
		ID:         json.RawMessage(`42`),
		ClientName: "Maria",
		Amount:     99.99,
		CreatedAt:  "2025-01-05T08:30:00Z",
		Status:     "paid",
		UTMSource:  "meta",
		Product:    "Plano Start",
	}
	got := normalize(core.Manager{ID: 3, Name: "Carla"}, raw)
	if got.ID != "42" {
		t.Fatalf("id: %q", got.ID)
	}
	if got.ManagerID != 3 || got.ManagerName != "Carla" {
		t.Fatalf("manager ref: %+v", got)
	}
	if got.Amount.Cents != 9999 {
		t.Fatalf("amount: %d", got.Amount.Cents)
	}
	if got.CreatedAt.DisplayString() != "05/01/2025" {
		t.Fatalf("created at: %q", got.CreatedAt.DisplayString())
	}
}

func TestNormalizationDefaults(t *testing.T) {
	got := normalize(core.Manager{ID: 1, Name: "Ana"}, rawTransaction{CreatedAt: "garbage"})
	if !got.CreatedAt.IsZero() {
		t.Fatal("unparseable createdAt must normalize to the zero date")
	}
	if got.ClientName != "" || got.Status != "" || got.Source != "" || got.Product != "" || got.Amount.Cents != 0 {
		t.Fatalf("absent fields must default to empty/zero: %+v", got)
	}
}

func TestRawIDVariants(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`"abc-1"`, "abc-1"},
		{`42`, "42"},
		{`42.0`, "42"},
		{``, ""},
	}
	for i, tc := range cases {
		if got := rawID(json.RawMessage(tc.in)); got != tc.want {
			t.Fatalf("case %d: rawID(%q) = %q, want %q", i, tc.in, got, tc.want)
		}
	}
}
