// =============================================================================
// Preston RPA - Grouping Engine
// =============================================================================
//
// Groups validated records by posting date (optionally by date + company)
// and computes per-group decimal totals. Grouping is deterministic: group
// emission order is ascending by key regardless of input row order, and
// member order inside a group equals input order. This fixes the canonical
// replay sequence.
//
// =============================================================================

package pos

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// GroupKey identifies a transaction group. Company is empty unless composite
// grouping is enabled.
type GroupKey struct {
	Date    time.Time
	Company string
}

// String renders the key the way it appears in logs and the console plan.
func (k GroupKey) String() string {
	if k.Company == "" {
		return k.Date.Format(DateLayout)
	}
	return k.Date.Format(DateLayout) + "/" + k.Company
}

// less orders keys ascending by date, then by company for composite keys.
func (k GroupKey) less(other GroupKey) bool {
	if !k.Date.Equal(other.Date) {
		return k.Date.Before(other.Date)
	}
	return k.Company < other.Company
}

// Group is an ordered batch of records sharing a key. Groups are immutable
// after construction; Total is computed exactly once and always equals the
// sum of the member amounts.
type Group struct {
	Key     GroupKey
	Members []Record
	Total   decimal.Decimal
}

// GroupOptions controls the grouping key.
type GroupOptions struct {
	// ByCompany switches to the composite (date, company) key.
	ByCompany bool
}

// GroupByDate groups records by posting date. Empty input yields an empty
// slice, not an error.
func GroupByDate(records []Record) []Group {
	return GroupBy(records, GroupOptions{})
}

// GroupBy groups records according to opts. Member order inside each group
// preserves input order; groups are emitted ascending by key. Totals follow
// member order, so repeated runs over the same input produce byte-identical
// group sequences.
func GroupBy(records []Record, opts GroupOptions) []Group {
	index := make(map[GroupKey]int, len(records))
	groups := make([]Group, 0, len(records))

	for _, rec := range records {
		key := GroupKey{Date: rec.Date}
		if opts.ByCompany {
			key.Company = rec.Company
		}

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key, Total: decimal.Zero})
		}
		groups[i].Members = append(groups[i].Members, rec)
		groups[i].Total = groups[i].Total.Add(rec.Amount)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Key.less(groups[j].Key)
	})
	return groups
}

// RecordCount returns the number of records across all groups.
func RecordCount(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += len(g.Members)
	}
	return n
}
