package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"reviewd/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row. One row is written per item, with the
// parent material's columns repeated.
var columns = []string{
	"Material ID",
	"Material Name",
	"Material Code",
	"Material Status",
	"Page Count",
	"Item ID",
	"Item Name",
	"Item Status",
	"Document Type",
	"Download URL",
	"Annotation",
}

// Writer wraps csv.Writer for exporting normalized review results as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteMaterials converts normalized materials to CSV rows and writes them.
// Itemless materials still produce a single row with empty item columns.
func (w *Writer) WriteMaterials(materials []domain.Material) error {
	for i := range materials {
		for _, row := range materialRows(&materials[i]) {
			if err := w.csv.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func materialRows(m *domain.Material) [][]string {
	base := []string{
		m.ID,
		m.Name,
		m.Code,
		string(m.Status),
		strconv.Itoa(m.PageCount),
	}

	if len(m.Items) == 0 {
		row := make([]string, len(columns))
		copy(row, base)
		return [][]string{row}
	}

	rows := make([][]string, 0, len(m.Items))
	for i := range m.Items {
		it := &m.Items[i]
		row := make([]string, len(columns))
		copy(row, base)
		row[5] = it.ID
		row[6] = it.Name
		row[7] = string(it.Status)
		row[8] = string(it.Doc.Type)
		row[9] = it.Doc.DownloadURL
		row[10] = it.Annotation
		rows = append(rows, row)
	}
	return rows
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a job name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: {sanitized_job_name}_{YYYY-MM-DD}.csv
func BuildFilename(jobName string) string {
	sanitized := SanitizeFilename(jobName)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.csv", sanitized, date)
}
