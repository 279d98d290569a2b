package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RawQuarter is one row of /api/financials quarterly_data, amounts in crore
type RawQuarter struct {
	Name        string          `json:"name"`
	Revenue     decimal.Decimal `json:"revenue"`
	Expenditure decimal.Decimal `json:"expenditure"`
}

// Variance is |revenue - expenditure| rounded to two places
func (q RawQuarter) Variance() decimal.Decimal {
	return q.Revenue.Sub(q.Expenditure).Abs().Round(2)
}

// Surplus reports whether revenue covers expenditure
func (q RawQuarter) Surplus() bool {
	return q.Revenue.GreaterThanOrEqual(q.Expenditure)
}

// ExpenditureSlice is a named share of total expenditure
type ExpenditureSlice struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// RawFinancials is the /api/financials payload
type RawFinancials struct {
	QuarterlyData        []RawQuarter       `json:"quarterly_data"`
	ExpenditureBreakdown []ExpenditureSlice `json:"expenditure_breakdown"`
}

// FinancialQuarter is a quarter with its category breakdown attached
type FinancialQuarter struct {
	RawQuarter
	Details map[string]decimal.Decimal `json:"details"`
}

// DetailSlices returns Details as slices sorted by category name
func (q FinancialQuarter) DetailSlices() []ExpenditureSlice {
	names := make([]string, 0, len(q.Details))
	for name := range q.Details {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]ExpenditureSlice, 0, len(names))
	for _, name := range names {
		out = append(out, ExpenditureSlice{Name: name, Value: q.Details[name]})
	}
	return out
}

// DetailTotal sums the category breakdown
func (q FinancialQuarter) DetailTotal() decimal.Decimal {
	total := decimal.Zero
	for _, v := range q.Details {
		total = total.Add(v)
	}
	return total
}

// Financials is the enriched financials payload
type Financials struct {
	Quarters             []FinancialQuarter `json:"quarterly_data"`
	ExpenditureBreakdown []ExpenditureSlice `json:"expenditure_breakdown"`
}

// Quarter finds a quarter by name
func (f *Financials) Quarter(name string) (FinancialQuarter, bool) {
	for _, q := range f.Quarters {
		if q.Name == name {
			return q, true
		}
	}
	return FinancialQuarter{}, false
}
