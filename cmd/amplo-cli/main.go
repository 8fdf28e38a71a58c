// amplo-cli fetches the full transaction dataset from the tracker API and
// prints it as a table, with the same filters the panel offers. Useful for
// spot checks without standing up the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"amplo/internal/cli"
	"amplo/internal/core"
	"amplo/internal/export"
	"amplo/internal/tracker"
)

func main() {
	cli.LoadEnvFile()

	var (
		baseURL  = flag.String("base-url", envOr("TRACKER_BASE_URL", "https://tracker-api.avalieempresas.live"), "tracker API base URL")
		statuses = flag.String("status", "", "comma-separated status filter (e.g. paid,pending)")
		managers = flag.String("manager", "", "comma-separated manager name filter")
		products = flag.String("product", "", "comma-separated product name filter")
		from     = flag.String("from", "", "start date (yyyy-mm-dd)")
		to       = flag.String("to", "", "end date (yyyy-mm-dd)")
		csvPath  = flag.String("csv", "", "also write the filtered rows to a CSV file")
		xlsxPath = flag.String("xlsx", "", "also write the filtered rows to an XLSX file")
		timeout  = flag.Duration("timeout", 5*time.Minute, "overall fetch timeout")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	filter, err := buildFilter(*statuses, *managers, *products, *from, *to)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := tracker.NewClient(*baseURL)
	txs, err := client.FetchAll(ctx, tracker.DateRange{Start: core.NewDate(2000, 1, 1)})
	if err != nil {
		fmt.Fprintln(os.Stderr, "fetch failed:", err)
		os.Exit(1)
	}

	filtered := filter.Apply(txs)
	printTable(filtered)

	if *csvPath != "" {
		if err := writeFile(*csvPath, filtered, export.WriteCSV); err != nil {
			fmt.Fprintln(os.Stderr, "csv write failed:", err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "wrote", *csvPath)
	}
	if *xlsxPath != "" {
		if err := writeFile(*xlsxPath, filtered, export.WriteXLSX); err != nil {
			fmt.Fprintln(os.Stderr, "xlsx write failed:", err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "wrote", *xlsxPath)
	}
}

func buildFilter(statuses, managers, products, from, to string) (core.Filter, error) {
	filter := core.Filter{
		Statuses: splitList(statuses),
		Managers: splitList(managers),
		Products: splitList(products),
	}

	var err error
	if filter.From, err = parseDate(from); err != nil {
		return core.Filter{}, fmt.Errorf("invalid -from: %w", err)
	}
	if filter.To, err = parseDate(to); err != nil {
		return core.Filter{}, fmt.Errorf("invalid -to: %w", err)
	}
	return filter, nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDate(raw string) (core.Date, error) {
	if strings.TrimSpace(raw) == "" {
		return core.Date{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return core.Date{}, fmt.Errorf("%q is not yyyy-mm-dd", raw)
	}
	return core.NewDate(t.Year(), int(t.Month()), t.Day()), nil
}

func printTable(txs []core.Transaction) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Manager", "Client", "Amount", "Date", "Status", "Source", "Product"})
	for _, tx := range txs {
		t.AppendRow(table.Row{
			tx.ManagerName,
			tx.ClientName,
			tx.Amount.FormatBRL(),
			tx.CreatedAt.DisplayString(),
			tx.Status,
			tx.Source,
			tx.Product,
		})
	}

	summary := core.Summarize(txs)
	t.AppendFooter(table.Row{
		"", "",
		summary.Total.FormatBRL(),
		fmt.Sprintf("%d txs", summary.Count),
		fmt.Sprintf("%d paid / %d pending", summary.Paid, summary.Pending),
		fmt.Sprintf("%.1f%% conv", summary.ConversionPct),
		"",
	})
	t.Render()
}

func writeFile(path string, txs []core.Transaction, write func(w io.Writer, txs []core.Transaction) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return write(f, txs)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
