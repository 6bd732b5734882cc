package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dyike/DepotGo/internal/storage"
)

var historyHeaders = []string{"ID", "Time", "Kind", "Subject", "Target", "Outcome", "Detail"}

// WriteHistoryCSV writes journal entries as CSV with a header row.
func WriteHistoryCSV(w io.Writer, entries []storage.Interaction) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(historyHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for _, e := range entries {
		row := []string{
			strconv.FormatInt(e.ID, 10),
			e.CreatedAt.Format(time.RFC3339),
			e.Kind,
			e.Subject,
			e.Target,
			e.Outcome,
			e.Detail,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", e.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportHistoryCSV writes entries to path, creating parent directories.
func ExportHistoryCSV(path string, entries []storage.Interaction) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	if err := WriteHistoryCSV(file, entries); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
