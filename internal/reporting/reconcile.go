// Package reporting reconciles the customer list with the independently
// fetched aggregate statistics for the admin overview. The two sources are
// loaded by separate calls with no atomicity between them, so nothing here
// asserts consistency; partial data renders with defaults.
package reporting

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CustomerSummary is the slice of a customer record the overview needs.
type CustomerSummary struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Phone              string          `json:"phone"`
	TotalOrders        int64           `json:"total_orders"`
	TotalSpent         decimal.Decimal `json:"total_spent"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
}

// Stats mirrors the /api/customers/stats payload.
type Stats struct {
	TotalCustomers           int64           `json:"total_customers"`
	CustomersWithOutstanding int64           `json:"customers_with_outstanding"`
	TotalOutstandingAmount   decimal.Decimal `json:"total_outstanding_amount"`
}

// Overview is the merged view handed to the dashboard.
type Overview struct {
	Customers []CustomerSummary `json:"customers"`
	Stats     Stats             `json:"stats"`
	// VisibleRevenue sums total_spent over the loaded customers only. It is a
	// subset total and will not match any backend grand total unless the list
	// is complete and unfiltered.
	VisibleRevenue decimal.Decimal `json:"visible_revenue"`
}

// VisibleRevenue sums total_spent across the currently loaded customer list.
func VisibleRevenue(customers []CustomerSummary) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range customers {
		sum = sum.Add(c.TotalSpent)
	}
	return sum
}

// FilterCustomers returns the customers whose name or phone contains term,
// case-insensitively. Empty term returns the input unchanged. This filters
// the already loaded list only; it never triggers a re-fetch.
func FilterCustomers(customers []CustomerSummary, term string) []CustomerSummary {
	if term == "" {
		return customers
	}
	needle := strings.ToLower(term)
	out := make([]CustomerSummary, 0, len(customers))
	for _, c := range customers {
		if strings.Contains(strings.ToLower(c.Name), needle) || strings.Contains(strings.ToLower(c.Phone), needle) {
			out = append(out, c)
		}
	}
	return out
}

// MergeOverview combines the customer list with the stats object. Either side
// may be missing: a nil customers slice renders as an empty list, a nil stats
// pointer as zero stats. The caller passes stats == nil when the best-effort
// stats fetch failed.
func MergeOverview(customers []CustomerSummary, stats *Stats) Overview {
	o := Overview{
		Customers:      customers,
		VisibleRevenue: VisibleRevenue(customers),
	}
	if o.Customers == nil {
		o.Customers = []CustomerSummary{}
	}
	if stats != nil {
		o.Stats = *stats
	}
	return o
}
