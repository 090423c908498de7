// Package dashboard aggregates the ledger into the cards and charts of the home page.
package dashboard

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/djr-reciclagem/recebiveis/internal/ledger"
)

// MaxOrderBars caps the per-order chart.
const MaxOrderBars = 30

// Cards are the headline figures.
type Cards struct {
	Count           int             `json:"count"`
	TotalSold       decimal.Decimal `json:"totalSold"`
	TotalReceived   decimal.Decimal `json:"totalReceived"`
	TotalOpen       decimal.Decimal `json:"totalOpen"`
	ReceivedPercent float64         `json:"receivedPercent"`
	PartialCount    int             `json:"partialCount"`
	PendingCount    int             `json:"pendingCount"`
}

// MonthPoint sums one YYYY-MM month.
type MonthPoint struct {
	Month    string          `json:"month"`
	Sold     decimal.Decimal `json:"sold"`
	Received decimal.Decimal `json:"received"`
}

// OrderBar compares sold and received for a single order.
type OrderBar struct {
	OrderNumber string          `json:"orderNumber"`
	Sold        decimal.Decimal `json:"sold"`
	Received    decimal.Decimal `json:"received"`
}

// StatusCount is one slice of the status distribution.
type StatusCount struct {
	Status ledger.Status `json:"status"`
	Count  int           `json:"count"`
}

// Overview is everything the dashboard shows for one company selection.
type Overview struct {
	Company  string        `json:"company,omitempty"`
	Cards    Cards         `json:"cards"`
	Monthly  []MonthPoint  `json:"monthly"`
	Orders   []OrderBar    `json:"orders"`
	Statuses []StatusCount `json:"statuses"`
}

// Build aggregates list, restricted to company when it is not empty.
func Build(list []ledger.Transaction, company string) Overview {
	ov := Overview{Company: company, Monthly: []MonthPoint{}, Orders: []OrderBar{}}
	cards := Cards{TotalSold: decimal.Zero, TotalReceived: decimal.Zero}
	months := map[string]*MonthPoint{}
	counts := map[ledger.Status]int{}

	for _, t := range list {
		if company != "" && t.Company != company {
			continue
		}
		cards.Count++
		cards.TotalSold = cards.TotalSold.Add(t.SaleValue)
		cards.TotalReceived = cards.TotalReceived.Add(t.TotalReceived)
		counts[t.Status]++

		if len(ov.Orders) < MaxOrderBars {
			ov.Orders = append(ov.Orders, OrderBar{OrderNumber: t.OrderNumber, Sold: t.SaleValue, Received: t.TotalReceived})
		}
		if len(t.SaleDate) < 7 {
			continue
		}
		key := t.SaleDate[:7]
		p, ok := months[key]
		if !ok {
			p = &MonthPoint{Month: key, Sold: decimal.Zero, Received: decimal.Zero}
			months[key] = p
		}
		p.Sold = p.Sold.Add(t.SaleValue)
		p.Received = p.Received.Add(t.TotalReceived)
	}

	cards.TotalOpen = cards.TotalSold.Sub(cards.TotalReceived)
	if cards.TotalSold.IsPositive() {
		cards.ReceivedPercent = cards.TotalReceived.Div(cards.TotalSold).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}
	cards.PartialCount = counts[ledger.StatusPartial]
	cards.PendingCount = counts[ledger.StatusPending]
	ov.Cards = cards

	for _, p := range months {
		ov.Monthly = append(ov.Monthly, *p)
	}
	sort.Slice(ov.Monthly, func(i, j int) bool { return ov.Monthly[i].Month < ov.Monthly[j].Month })

	for _, s := range ledger.Statuses {
		ov.Statuses = append(ov.Statuses, StatusCount{Status: s, Count: counts[s]})
	}
	return ov
}

var monthNames = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// MonthLabel turns 2025-03 into mar/2025.
func MonthLabel(key string) string {
	if len(key) != 7 || key[4] != '-' {
		return key
	}
	m := int(key[5]-'0')*10 + int(key[6]-'0')
	if m < 1 || m > 12 {
		return key
	}
	return monthNames[m-1] + "/" + key[:4]
}
