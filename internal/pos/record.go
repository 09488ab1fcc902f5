// =============================================================================
// Preston RPA - POS Transaction Records
// =============================================================================
//
// This package contains the core data model shared by the extractor, the
// grouping engine, and the replay driver. Types defined here are immutable
// once constructed and carry no behavior beyond derived accessors, which
// keeps the pipeline stages decoupled from each other.
//
// =============================================================================

package pos

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical date format used in logs, group keys, and the
// Preston entry forms.
const DateLayout = "2006-01-02"

// Record represents a single validated POS transaction read from the source
// workbook. A Record is created by the extractor and never mutated afterwards.
type Record struct {
	// Date is the posting date of the transaction. Only the calendar day is
	// meaningful; the time component is always midnight UTC.
	Date time.Time

	// Description is the free-text description from the workbook. It always
	// satisfies the POS description filter (see Filter).
	Description string

	// Amount is the signed monetary value of the transaction.
	Amount decimal.Decimal

	// Company is the counterparty account, when the workbook provides one.
	Company string

	// Currency is the optional currency code (e.g. "TRY", "USD").
	Currency string

	// DueDate is the optional value date. Zero when absent.
	DueDate time.Time

	// Row is the 1-based row number in the source workbook, kept for
	// diagnostics and failure follow-up.
	Row int
}

// Ref returns a short human-readable identifier for the record, used in
// outcomes and log lines.
func (r Record) Ref() string {
	return fmt.Sprintf("%s %s (row %d)", r.Date.Format(DateLayout), r.Description, r.Row)
}

// =============================================================================
// POS DESCRIPTION FILTER
// =============================================================================

// DefaultDescriptionPrefix is the literal prefix a POS description must
// start with.
const DefaultDescriptionPrefix = "POSH"

// DefaultMinSuffixDigits is the minimum length of the numeric run a POS
// description must end with.
const DefaultMinSuffixDigits = 5

// Filter decides whether a workbook row is a POS transaction. A description
// matches when it starts with the configured literal prefix and ends with a
// run of at least MinSuffixDigits digits. Rows that do not match are
// excluded from processing by design; they are not errors.
type Filter struct {
	Prefix          string
	MinSuffixDigits int

	suffix *regexp.Regexp
}

// NewFilter builds a Filter. Zero values fall back to the defaults.
func NewFilter(prefix string, minSuffixDigits int) Filter {
	if prefix == "" {
		prefix = DefaultDescriptionPrefix
	}
	if minSuffixDigits <= 0 {
		minSuffixDigits = DefaultMinSuffixDigits
	}
	return Filter{
		Prefix:          prefix,
		MinSuffixDigits: minSuffixDigits,
		suffix:          regexp.MustCompile(fmt.Sprintf(`[0-9]{%d,}$`, minSuffixDigits)),
	}
}

// Match reports whether the description satisfies the POS filter.
func (f Filter) Match(description string) bool {
	if f.suffix == nil {
		// Zero-value Filter behaves like the default configuration.
		f = NewFilter(f.Prefix, f.MinSuffixDigits)
	}
	desc := strings.TrimSpace(description)
	if !strings.HasPrefix(desc, f.Prefix) {
		return false
	}
	return f.suffix.MatchString(desc)
}
