// =============================================================================
// Preston RPA - Record Extractor
// =============================================================================
//
// Parses the POS workbook into validated transaction records. The extractor
// is a pure transform over the loaded sheet:
//   - headers are normalized through an alias table (the upstream export
//     switches between Turkish and English column names),
//   - rows whose description fails the POS filter are silently excluded,
//   - rows with a malformed date or amount are dropped with a warning count,
//   - original row order is preserved.
//
// Only the total absence of valid POS records is a hard failure
// (ErrNoRecords); everything else degrades to per-row warnings.
//
// =============================================================================

package extract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mkaraca/preston-rpa/internal/pos"
)

// ErrNoRecords is returned when the workbook contains no row that passes the
// POS description filter and row validation. It aborts the run before any
// actuator call.
var ErrNoRecords = errors.New("no valid POS records found")

// columnAliases maps normalized header names to canonical column roles.
// The workbook exports use Turkish headers; English spellings are accepted
// for the simulator fixtures.
var columnAliases = map[string]string{
	"tarih":       "date",
	"date":        "date",
	"aciklama":    "description",
	"açıklama":    "description",
	"description": "description",
	"tutar":       "amount",
	"amount":      "amount",
	"firma":       "company",
	"company":     "company",
	"doviz":       "currency",
	"döviz":       "currency",
	"currency":    "currency",
	"vade tarihi": "due_date",
	"due date":    "due_date",
	"due_date":    "due_date",
}

// Options configures a single extraction.
type Options struct {
	// Sheet is the worksheet name. Empty selects the first sheet.
	Sheet string

	// Filter is the POS description filter. The zero value applies the
	// default POSH/5 rule.
	Filter pos.Filter
}

// Stats counts what happened to the source rows. Dropped rows are reported,
// not fatal.
type Stats struct {
	TotalRows  int // data rows seen (header excluded)
	Extracted  int // rows admitted as POS records
	Filtered   int // rows excluded by the description filter
	BadDates   int // rows dropped for an unparseable date
	BadAmounts int // rows dropped for an unparseable amount
}

// Warnings returns the number of rows dropped for parse errors.
func (s Stats) Warnings() int {
	return s.BadDates + s.BadAmounts
}

// Extract reads the workbook at path and returns the validated POS records
// in source row order.
func Extract(path string, opts Options) ([]pos.Record, Stats, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, Stats{}, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, Stats{}, fmt.Errorf("%w in %s", ErrNoRecords, path)
	}

	columns := mapHeader(rows[0])
	if _, ok := columns["date"]; !ok {
		return nil, Stats{}, fmt.Errorf("workbook %s has no date column", path)
	}

	records, stats := extractRows(rows[1:], columns, opts.Filter)
	if len(records) == 0 {
		return nil, stats, fmt.Errorf("%w in %s", ErrNoRecords, path)
	}
	return records, stats, nil
}

// mapHeader resolves the header row into canonical column indexes.
func mapHeader(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		if role, ok := columnAliases[name]; ok {
			if _, taken := columns[role]; !taken {
				columns[role] = i
			}
		}
	}
	return columns
}

// extractRows validates each data row and builds the record list.
func extractRows(rows [][]string, columns map[string]int, filter pos.Filter) ([]pos.Record, Stats) {
	var records []pos.Record
	var stats Stats

	cell := func(row []string, role string) string {
		i, ok := columns[role]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	for i, row := range rows {
		if isRowEmpty(row) {
			continue
		}
		stats.TotalRows++
		rowNum := i + 2 // 1-based, after the header row

		description := cell(row, "description")
		if !filter.Match(description) {
			stats.Filtered++
			continue
		}

		date, err := ParseDate(cell(row, "date"))
		if err != nil {
			stats.BadDates++
			continue
		}

		amount, err := ParseAmount(cell(row, "amount"))
		if err != nil {
			stats.BadAmounts++
			continue
		}

		record := pos.Record{
			Date:        date,
			Description: strings.TrimSpace(description),
			Amount:      amount,
			Company:     cell(row, "company"),
			Currency:    cell(row, "currency"),
			Row:         rowNum,
		}
		if due := cell(row, "due_date"); due != "" {
			// A malformed due date downgrades to "absent"; it is optional.
			if d, err := ParseDate(due); err == nil {
				record.DueDate = d
			}
		}

		records = append(records, record)
		stats.Extracted++
	}
	return records, stats
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// CELL PARSING
// =============================================================================

// dateLayouts are the spellings the workbook exports have been seen to use.
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"2.1.2006",
	"02/01/2006",
	"01-02-06", // excelize default rendering of date-styled cells
	"2006-01-02T15:04:05Z07:00",
}

// ParseDate parses a workbook date cell. Excel serial numbers and the known
// textual layouts are accepted; the result is normalized to midnight UTC.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	// Date-styled cells can surface as raw serial numbers.
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid excel serial date %q: %w", value, err)
		}
		return midnightUTC(t), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return midnightUTC(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseAmount parses a monetary cell into a decimal. Turkish formatting with
// comma decimal separators ("1.234,56") is normalized first.
func ParseAmount(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}

	if strings.Contains(value, ",") {
		// "1.234,56" -> "1234.56"; "12,5" -> "12.5"
		value = strings.ReplaceAll(value, ".", "")
		value = strings.Replace(value, ",", ".", 1)
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return d, nil
}
