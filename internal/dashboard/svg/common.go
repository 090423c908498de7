package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func seriesBounds(series []Series) (float64, float64) {
	minVal, maxVal := 0.0, 0.0
	for _, s := range series {
		for _, v := range s.Values {
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	if almostEqual(maxVal, minVal) {
		maxVal = minVal + 1
	}
	return minVal, maxVal
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return fmt.Sprintf("%s-%s", cleaned, suffix)
}

// formatTick abbreviates axis values the way Brazilian finance sheets do (mil, mi).
func formatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return strings.Replace(fmt.Sprintf("%.1f mi", v/1_000_000), ".", ",", 1)
	case abs >= 1_000:
		return strings.Replace(fmt.Sprintf("%.1f mil", v/1_000), ".", ",", 1)
	case almostEqual(v, math.Round(v)):
		return fmt.Sprintf("%.0f", v)
	default:
		return strings.Replace(fmt.Sprintf("%.2f", v), ".", ",", 1)
	}
}

func openSVG(b *strings.Builder, width, height int, opts ChartOpts, kind, defaultTitle string) {
	titleID := makeID(opts.Title, kind+"-title")
	descID := makeID(opts.Title, kind+"-desc")
	fmt.Fprintf(b, "<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID)
	fmt.Fprintf(b, "<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, defaultTitle)))
	fmt.Fprintf(b, "<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(opts.Description))
}

// grid draws horizontal grid lines, y tick labels and both axes.
func grid(b *strings.Builder, opts ChartOpts, chartWidth, chartHeight, minVal, maxVal float64) {
	padding := opts.Padding
	for i := 0; i <= opts.TickCount; i++ {
		ratio := float64(i) / float64(opts.TickCount)
		value := minVal + (maxVal-minVal)*ratio
		y := padding + chartHeight - ratio*chartHeight
		fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"2,4\" aria-hidden=\"true\"></line>", padding, y, padding+chartWidth, y, opts.GridColor)
		fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", padding-6, y+4, opts.AxisColor, template.HTMLEscapeString(formatTick(value)))
	}
	zeroY := padding + chartHeight - (0-minVal)*chartHeight/(maxVal-minVal)
	fmt.Fprintf(b, "<g stroke=\"%s\" aria-hidden=\"true\">", opts.AxisColor)
	fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", padding, padding, padding, padding+chartHeight)
	fmt.Fprintf(b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", padding, zeroY, padding+chartWidth, zeroY)
	b.WriteString("</g>")
}

func xLabel(b *strings.Builder, opts ChartOpts, x, y float64, label string) {
	if opts.RotateLabels {
		fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\" transform=\"rotate(-35 %.2f %.2f)\">%s</text>", x, y, opts.AxisColor, x, y, template.HTMLEscapeString(label))
		return
	}
	fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", x, y, opts.AxisColor, template.HTMLEscapeString(label))
}

func legend(b *strings.Builder, opts ChartOpts, labels, colors []string) {
	x := opts.Padding
	y := math.Max(opts.Padding-14, 12)
	for i, label := range labels {
		fmt.Fprintf(b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" fill=\"%s\"></rect>", x, y-8, colors[i])
		fmt.Fprintf(b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"start\">%s</text>", x+14, y, opts.AxisColor, template.HTMLEscapeString(label))
		x += 24 + 6*float64(len([]rune(label)))
	}
}
