// Command seedsynonyms converts an operator-maintained status vocabulary
// Excel file into a SQL seed file for the status_synonyms table.
// Usage: go run ./cmd/seedsynonyms [vocabulary.xlsx]
// Output: db/seeds/status_synonyms.sql
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"reviewd/internal/domain"
)

const batchSize = 500

type synonymEntry struct {
	raw    string
	status string
}

// canonical maps the lowercased status cell to the canonical value stored
// in the table. The mixed-case "hasIssues" must survive the round trip.
var canonical = map[string]domain.Status{
	strings.ToLower(string(domain.StatusPassed)):    domain.StatusPassed,
	strings.ToLower(string(domain.StatusHasIssues)): domain.StatusHasIssues,
	strings.ToLower(string(domain.StatusError)):     domain.StatusError,
	strings.ToLower(string(domain.StatusLoading)):   domain.StatusLoading,
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	xlsxPath := "status_vocabulary.xlsx"
	if len(os.Args) > 1 {
		xlsxPath = os.Args[1]
	}
	outPath := "db/seeds/status_synonyms.sql"

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries, err := parseVocabularySheet(f)
	if err != nil {
		return fmt.Errorf("parse vocabulary sheet: %w", err)
	}
	log.Printf("vocabulary sheet: %d entries", len(entries))

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	w := func(s string) error { _, werr := fmt.Fprintln(out, s); return werr }

	for _, line := range []string{
		"-- Status synonym seed data generated from the vocabulary Excel file.",
		fmt.Sprintf("-- %d entries in batches of %d.", len(entries), batchSize),
		"-- Run: make seed-synonyms",
		"BEGIN;",
		"",
	} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write header: %w", werr)
		}
	}

	for i := 0; i < len(entries); i += batchSize {
		end := i + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := writeBatch(out, entries[i:end]); err != nil {
			return fmt.Errorf("write batch at offset %d: %w", i, err)
		}
	}

	for _, line := range []string{"", "COMMIT;"} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write footer: %w", werr)
		}
	}

	log.Printf("Generated %d entries (%d batches) in %s",
		len(entries), (len(entries)+batchSize-1)/batchSize, outPath)
	return nil
}

// parseVocabularySheet reads the first sheet.
// Columns: A(0)=raw backend status word, B(1)=canonical status.
// Row 0 is the header.
func parseVocabularySheet(f *excelize.File) ([]synonymEntry, error) {
	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var entries []synonymEntry
	for i := 1; i < len(rows); i++ {
		row := rows[i]

		raw := strings.ToLower(strings.TrimSpace(cellVal(row, 0)))
		statusCell := strings.ToLower(strings.TrimSpace(cellVal(row, 1)))
		if raw == "" || statusCell == "" {
			continue
		}
		status, ok := canonical[statusCell]
		if !ok {
			log.Printf("row %d: skipping %q, unknown canonical status %q", i+1, raw, statusCell)
			continue
		}
		if seen[raw] {
			continue
		}
		seen[raw] = true

		entries = append(entries, synonymEntry{raw: raw, status: string(status)})
	}
	return entries, nil
}

func writeBatch(out *os.File, batch []synonymEntry) error {
	if len(batch) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO status_synonyms (raw, status) VALUES\n")

	for i := range batch {
		e := &batch[i]
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "  ('%s', '%s')", escapeSQL(e.raw), escapeSQL(e.status))
	}

	b.WriteString("\nON CONFLICT (raw) DO UPDATE SET status = EXCLUDED.status;\n")

	_, err := out.WriteString(b.String())
	return err
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
