package catalog

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/maltedev/brand-image-scraper/internal/models"
)

var ErrMissingColumns = errors.New("input has no sku and brand columns")

const sampleSize = 4096

var (
	delimiters   = []rune{',', ';', '|', '\t'}
	brandColumns = []string{"brand", "marca"}
	utf8BOM      = []byte{0xEF, 0xBB, 0xBF}
)

// ParseRows decodes a catalog export. The delimiter is detected from the
// header line, columns are matched by substring, and rows missing a sku or
// brand are dropped.
func ParseRows(data []byte) ([]models.CatalogRow, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = DetectDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty input", ErrMissingColumns)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	skuIdx, brandIdx := columnIndex(header)
	if skuIdx < 0 || brandIdx < 0 {
		return nil, fmt.Errorf("%w: header %q", ErrMissingColumns, header)
	}

	var rows []models.CatalogRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		row := models.CatalogRow{
			SKU:   strings.TrimSpace(valueAt(record, skuIdx)),
			Brand: strings.TrimSpace(valueAt(record, brandIdx)),
		}
		if !row.IsValid() {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// DetectDelimiter picks the candidate occurring most often in the first
// line of the sample, falling back to a comma.
func DetectDelimiter(data []byte) rune {
	sample := data
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}
	if i := bytes.IndexAny(sample, "\r\n"); i >= 0 {
		sample = sample[:i]
	}

	best, bestCount := ',', 0
	for _, d := range delimiters {
		if n := strings.Count(string(sample), string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func columnIndex(header []string) (int, int) {
	skuIdx, brandIdx := -1, -1
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if skuIdx < 0 && strings.Contains(name, "sku") {
			skuIdx = i
			continue
		}
		if brandIdx < 0 && containsAny(name, brandColumns) {
			brandIdx = i
		}
	}
	return skuIdx, brandIdx
}

func valueAt(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return record[idx]
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
