package utils

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dyike/DepotGo/internal/storage"
)

func TestExportHistoryCSV(t *testing.T) {
	at := time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)
	entries := []storage.Interaction{
		{ID: 2, Kind: storage.KindOrder, Subject: "fuel", Outcome: storage.OutcomeFailed, Detail: "place order: HTTP error! status: 500", CreatedAt: at},
		{ID: 1, Kind: storage.KindStock, Subject: "fuel", Target: "stock_fuel", Outcome: storage.OutcomeOK, Detail: "90", CreatedAt: at},
	}

	path := filepath.Join(t.TempDir(), "export", "history.csv")
	if err := ExportHistoryCSV(path, entries); err != nil {
		t.Fatalf("ExportHistoryCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "ID" || rows[1][2] != "order" || rows[2][4] != "stock_fuel" {
		t.Fatalf("unexpected rows %v", rows)
	}
	if rows[1][1] != "2024-05-04T12:00:00Z" {
		t.Fatalf("unexpected time %q", rows[1][1])
	}
}
