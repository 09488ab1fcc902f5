package extract

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mkaraca/preston-rpa/internal/pos"
)

// writeWorkbook builds a one-sheet xlsx fixture and returns its path.
func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "pos_data.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func TestExtract(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Tarih", "Firma", "Açıklama", "Tutar", "Döviz", "Vade Tarihi"},
		{"2024-03-02", "ACME", "POSH10002", "249,90", "TRY", "2024-03-09"},
		{"2024-03-01", "BETA", "POSH10001", "1.150,25", "TRY", ""},
		{"2024-03-01", "BETA", "INVOICE99999", "10,00", "TRY", ""},  // filtered
		{"not-a-date", "BETA", "POSH10003", "10,00", "TRY", ""},     // bad date
		{"2024-03-03", "ACME", "POSH10004", "ten lira", "TRY", ""},  // bad amount
		{"2024-03-03", "ACME", "POSH123", "5,00", "TRY", ""},        // suffix too short
	})

	records, stats, err := Extract(path, Options{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}
	// Source row order is preserved, not date order.
	if records[0].Description != "POSH10002" || records[1].Description != "POSH10001" {
		t.Errorf("row order not preserved: %s, %s", records[0].Description, records[1].Description)
	}

	want := decimal.RequireFromString("249.90")
	if !records[0].Amount.Equal(want) {
		t.Errorf("comma amount parsed as %s, want %s", records[0].Amount, want)
	}
	if thousands := decimal.RequireFromString("1150.25"); !records[1].Amount.Equal(thousands) {
		t.Errorf("thousands amount parsed as %s, want %s", records[1].Amount, thousands)
	}

	if records[0].Company != "ACME" || records[0].Currency != "TRY" {
		t.Errorf("optional columns not carried: %+v", records[0])
	}
	if records[0].DueDate.IsZero() {
		t.Error("due date column was not parsed")
	}
	if !records[1].DueDate.IsZero() {
		t.Error("empty due date must stay zero")
	}

	wantStats := Stats{TotalRows: 6, Extracted: 2, Filtered: 2, BadDates: 1, BadAmounts: 1}
	if stats != wantStats {
		t.Errorf("stats = %+v, want %+v", stats, wantStats)
	}
	if stats.Warnings() != 2 {
		t.Errorf("Warnings() = %d, want 2", stats.Warnings())
	}
}

func TestExtractNoValidRecords(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Tarih", "Açıklama", "Tutar"},
		{"2024-03-01", "INVOICE99999", "10,00"},
		{"2024-03-01", "POSH123", "10,00"},
	})

	_, _, err := Extract(path, Options{})
	if !errors.Is(err, ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
}

func TestExtractEmptySheet(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Tarih", "Açıklama", "Tutar"},
	})

	_, _, err := Extract(path, Options{})
	if !errors.Is(err, ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords for a header-only sheet, got %v", err)
	}
}

func TestExtractIdempotent(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Date", "Company", "Description", "Amount"},
		{"2024-04-02", "ACME", "POSH20002", "1,00"},
		{"2024-04-01", "ACME", "POSH20001", "2,00"},
	})

	first, _, err := Extract(path, Options{})
	if err != nil {
		t.Fatalf("first Extract: %v", err)
	}
	second, _, err := Extract(path, Options{})
	if err != nil {
		t.Fatalf("second Extract: %v", err)
	}

	if !reflect.DeepEqual(pos.GroupByDate(first), pos.GroupByDate(second)) {
		t.Error("extraction + grouping over an unchanged source must be identical")
	}
}

func TestExtractCustomFilter(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Date", "Description", "Amount"},
		{"2024-04-01", "EPOS-123456", "2,00"},
		{"2024-04-01", "POSH12345", "3,00"},
	})

	records, _, err := Extract(path, Options{Filter: pos.NewFilter("EPOS-", 6)})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(records) != 1 || records[0].Description != "EPOS-123456" {
		t.Errorf("custom filter not applied: %+v", records)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2024-03-01", want: "2024-03-01"},
		{in: "01.03.2024", want: "2024-03-01"},
		{in: "1.3.2024", want: "2024-03-01"},
		{in: "45352", want: "2024-03-01"}, // excel serial for 2024-03-01
		{in: "", wantErr: true},
		{in: "yesterday", wantErr: true},
	}

	for _, tc := range tests {
		got, err := ParseDate(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseDate(%q): expected error, got %s", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDate(%q): %v", tc.in, err)
			continue
		}
		if got.Format(pos.DateLayout) != tc.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tc.in, got.Format(pos.DateLayout), tc.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "100.50", want: "100.5"},
		{in: "100,50", want: "100.5"},
		{in: "1.234,56", want: "1234.56"},
		{in: "-20,00", want: "-20"},
		{in: "0", want: "0"},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tc := range tests {
		got, err := ParseAmount(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseAmount(%q): expected error, got %s", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q): %v", tc.in, err)
			continue
		}
		if got.String() != tc.want {
			t.Errorf("ParseAmount(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}
