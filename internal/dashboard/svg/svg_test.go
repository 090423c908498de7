package svg

import (
	"strings"
	"testing"
)

func TestBarsProducesSVG(t *testing.T) {
	html, err := Bars(420, 220, []Series{
		{Label: "Vendido", Values: []float64{500, 600}},
		{Label: "Recebido", Values: []float64{300, 320}},
	}, []string{"PED-1", "PED-2"}, ChartOpts{Title: "Vendas por pedido", RotateLabels: true})
	if err != nil {
		t.Fatalf("bars renderer error: %v", err)
	}
	output := string(html)
	if !strings.HasPrefix(output, "<svg") {
		t.Fatalf("expected svg output, got %s", output)
	}
	if strings.Count(output, "<rect") < 4 {
		t.Fatalf("expected four bars plus legend swatches")
	}
	if !strings.Contains(output, "Recebido") || !strings.Contains(output, "rotate(-35") {
		t.Fatalf("expected legend label and rotated x labels")
	}
}

func TestBarsValidatesInput(t *testing.T) {
	if _, err := Bars(400, 200, nil, []string{"a"}, ChartOpts{}); err == nil {
		t.Fatal("expected error without series")
	}
	if _, err := Bars(400, 200, []Series{{Values: []float64{1, 2}}}, []string{"a"}, ChartOpts{}); err == nil {
		t.Fatal("expected error on length mismatch")
	}
}

func TestLinesProducesOnePathPerSeries(t *testing.T) {
	html, err := Lines(400, 200, []Series{
		{Label: "Vendido", Values: []float64{100, 200, 150}},
		{Label: "Recebido", Values: []float64{50, 80, 150}},
	}, []string{"2025-01", "2025-02", "2025-03"}, ChartOpts{Title: "Evolução mensal", ShowDots: true})
	if err != nil {
		t.Fatalf("line renderer error: %v", err)
	}
	output := string(html)
	if strings.Count(output, "<path") != 2 {
		t.Fatalf("expected two paths, got %s", output)
	}
	if strings.Count(output, "<circle") != 6 {
		t.Fatalf("expected a dot per point")
	}
	if !strings.Contains(output, "aria-labelledby") {
		t.Fatalf("expected accessibility attributes")
	}
}

func TestPieEscapesLabelsAndSkipsEmptySlices(t *testing.T) {
	html, err := Pie(400, 200, []Slice{
		{Label: "Recebido", Value: 3},
		{Label: "<Parcial>", Value: 1},
		{Label: "Divergente", Value: 0},
	}, ChartOpts{Title: "Status"})
	if err != nil {
		t.Fatalf("pie renderer error: %v", err)
	}
	output := string(html)
	if strings.Contains(output, "<Parcial>") || !strings.Contains(output, "&lt;Parcial&gt;: 25%") {
		t.Fatalf("expected escaped label with share, got %s", output)
	}
	if strings.Contains(output, "Divergente") {
		t.Fatalf("empty slice should be skipped")
	}
}

func TestPieSingleSliceIsCircle(t *testing.T) {
	html, err := Pie(400, 200, []Slice{{Label: "Pendente", Value: 2}}, ChartOpts{})
	if err != nil {
		t.Fatalf("pie renderer error: %v", err)
	}
	if !strings.Contains(string(html), "<circle") {
		t.Fatalf("expected full circle for a single slice")
	}
	if _, err := Pie(400, 200, []Slice{{Label: "x", Value: 0}}, ChartOpts{}); err == nil {
		t.Fatal("expected error for zero total")
	}
}

func TestFormatTick(t *testing.T) {
	cases := map[float64]string{0: "0", 1500: "1,5 mil", 2_500_000: "2,5 mi", 12.5: "12,50"}
	for in, want := range cases {
		if got := formatTick(in); got != want {
			t.Fatalf("formatTick(%v) = %q, want %q", in, got, want)
		}
	}
}
