package dashboard

import (
	"fmt"
	"html/template"

	"github.com/djr-reciclagem/recebiveis/internal/dashboard/svg"
	"github.com/djr-reciclagem/recebiveis/internal/ledger"
)

// Charts holds the rendered SVG markup. Empty fields mean there was nothing to draw.
type Charts struct {
	Orders  template.HTML
	Monthly template.HTML
	Status  template.HTML
}

var statusColors = map[ledger.Status]string{
	ledger.StatusReceived:  "#16a34a",
	ledger.StatusPartial:   "#facc15",
	ledger.StatusPending:   "#dc2626",
	ledger.StatusDivergent: "#f97316",
}

const (
	colorSold     = "#2563eb"
	colorReceived = "#16a34a"
)

// RenderCharts draws the three dashboard charts for ov.
func RenderCharts(ov Overview) (Charts, error) {
	var (
		out Charts
		err error
	)
	if len(ov.Orders) > 0 {
		labels := make([]string, len(ov.Orders))
		sold := make([]float64, len(ov.Orders))
		received := make([]float64, len(ov.Orders))
		for i, o := range ov.Orders {
			labels[i] = o.OrderNumber
			sold[i] = o.Sold.InexactFloat64()
			received[i] = o.Received.InexactFloat64()
		}
		out.Orders, err = svg.Bars(svg.DefaultWidth, svg.DefaultHeight+40, []svg.Series{
			{Label: "Valor Vendido", Values: sold, Color: colorSold},
			{Label: "Valor Recebido", Values: received, Color: colorReceived},
		}, labels, svg.ChartOpts{
			Title:        "Vendido x recebido por pedido",
			Description:  "Comparação entre o valor vendido e o recebido em cada pedido",
			RotateLabels: len(labels) > 8,
		})
		if err != nil {
			return Charts{}, fmt.Errorf("dashboard: orders chart: %w", err)
		}
	}

	if len(ov.Monthly) > 0 {
		labels := make([]string, len(ov.Monthly))
		sold := make([]float64, len(ov.Monthly))
		received := make([]float64, len(ov.Monthly))
		for i, p := range ov.Monthly {
			labels[i] = MonthLabel(p.Month)
			sold[i] = p.Sold.InexactFloat64()
			received[i] = p.Received.InexactFloat64()
		}
		out.Monthly, err = svg.Lines(svg.DefaultWidth, svg.DefaultHeight, []svg.Series{
			{Label: "Vendido", Values: sold, Color: colorSold},
			{Label: "Recebido", Values: received, Color: colorReceived},
		}, labels, svg.ChartOpts{
			Title:       "Evolução mensal",
			Description: "Valores vendidos e recebidos por mês",
			ShowDots:    true,
		})
		if err != nil {
			return Charts{}, fmt.Errorf("dashboard: monthly chart: %w", err)
		}
	}

	slices := make([]svg.Slice, 0, len(ov.Statuses))
	for _, s := range ov.Statuses {
		if s.Count == 0 {
			continue
		}
		slices = append(slices, svg.Slice{Label: s.Status.Label(), Value: float64(s.Count), Color: statusColors[s.Status]})
	}
	if len(slices) > 0 {
		out.Status, err = svg.Pie(svg.DefaultWidth/2, svg.DefaultHeight, slices, svg.ChartOpts{
			Title:       "Status dos lançamentos",
			Description: "Distribuição dos lançamentos por status",
		})
		if err != nil {
			return Charts{}, fmt.Errorf("dashboard: status chart: %w", err)
		}
	}
	return out, nil
}
