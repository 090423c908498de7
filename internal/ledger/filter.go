package ledger

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/djr-reciclagem/recebiveis/internal/locale"
)

// Filter narrows a transaction list. Zero values disable each criterion.
type Filter struct {
	StartDate   string
	EndDate     string
	OrderNumber string
	Company     string
	Client      string
	MinValue    decimal.NullDecimal
	MaxValue    decimal.NullDecimal
	Status      Status
}

// FilterFromQuery reads the filter form fields. "all" in the select fields means no filter.
func FilterFromQuery(q url.Values) Filter {
	f := Filter{
		StartDate:   strings.TrimSpace(q.Get("startDate")),
		EndDate:     strings.TrimSpace(q.Get("endDate")),
		OrderNumber: strings.TrimSpace(q.Get("orderNumber")),
		Company:     strings.TrimSpace(q.Get("company")),
		Client:      strings.TrimSpace(q.Get("client")),
	}
	if f.Company == "all" {
		f.Company = ""
	}
	if v, ok := locale.ParseAmount(q.Get("minValue")); ok {
		f.MinValue = decimal.NewNullDecimal(v)
	}
	if v, ok := locale.ParseAmount(q.Get("maxValue")); ok {
		f.MaxValue = decimal.NewNullDecimal(v)
	}
	if s := Status(strings.TrimSpace(q.Get("status"))); s.Valid() {
		f.Status = s
	}
	return f
}

// Query renders the filter back into URL values, e.g. for export links.
func (f Filter) Query() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("startDate", f.StartDate)
	set("endDate", f.EndDate)
	set("orderNumber", f.OrderNumber)
	set("company", f.Company)
	set("client", f.Client)
	if f.MinValue.Valid {
		q.Set("minValue", f.MinValue.Decimal.String())
	}
	if f.MaxValue.Valid {
		q.Set("maxValue", f.MaxValue.Decimal.String())
	}
	set("status", string(f.Status))
	return q
}

// Active reports whether any criterion is set.
func (f Filter) Active() bool {
	return len(f.Query()) > 0
}

// Match reports whether t passes every criterion. Dates compare as ISO strings, inclusive.
func (f Filter) Match(t Transaction) bool {
	if f.StartDate != "" && t.SaleDate < f.StartDate {
		return false
	}
	if f.EndDate != "" && t.SaleDate > f.EndDate {
		return false
	}
	if f.OrderNumber != "" && !containsFold(t.OrderNumber, f.OrderNumber) {
		return false
	}
	if f.Company != "" && t.Company != f.Company {
		return false
	}
	if f.Client != "" && !containsFold(t.Client, f.Client) {
		return false
	}
	if f.MinValue.Valid && t.SaleValue.LessThan(f.MinValue.Decimal) {
		return false
	}
	if f.MaxValue.Valid && t.SaleValue.GreaterThan(f.MaxValue.Decimal) {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	return true
}

// Apply returns the matching transactions in their original order.
func (f Filter) Apply(list []Transaction) []Transaction {
	out := make([]Transaction, 0, len(list))
	for _, t := range list {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Companies returns the distinct non-empty company names in first-seen order.
func Companies(list []Transaction) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range list {
		if t.Company == "" {
			continue
		}
		if _, ok := seen[t.Company]; ok {
			continue
		}
		seen[t.Company] = struct{}{}
		out = append(out, t.Company)
	}
	return out
}
