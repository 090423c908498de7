package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Bars renders a grouped bar chart with one bar per series for every label.
func Bars(width, height int, series []Series, labels []string, opts ChartOpts) (template.HTML, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("svg: at least one series required")
	}
	if len(labels) == 0 {
		return "", fmt.Errorf("svg: labels required")
	}
	for _, s := range series {
		if len(s.Values) != len(labels) {
			return "", fmt.Errorf("svg: series %q length must match labels", s.Label)
		}
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	opts = opts.normalised()
	padding := opts.Padding

	chartWidth := float64(width) - 2*padding
	chartHeight := float64(height) - 2*padding
	if chartWidth <= 0 || chartHeight <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}

	minVal, maxVal := seriesBounds(series)
	scale := chartHeight / (maxVal - minVal)
	zeroY := padding + chartHeight - (0-minVal)*scale
	chartBottom := padding + chartHeight

	groupWidth := chartWidth / float64(len(labels))
	barWidth := groupWidth * 0.8 / float64(len(series))

	var b strings.Builder
	openSVG(&b, width, height, opts, "bar", "Gráfico de barras")
	grid(&b, opts, chartWidth, chartHeight, minVal, maxVal)

	colors := make([]string, len(series))
	names := make([]string, len(series))
	for i, s := range series {
		colors[i] = colorAt(i, s.Color)
		names[i] = s.Label
	}

	for i, label := range labels {
		baseX := padding + float64(i)*groupWidth + groupWidth*0.1
		for j, s := range series {
			y, h := barPosition(s.Values[i], scale, zeroY, padding, chartBottom)
			fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\"><title>%s %s: %s</title></rect>",
				baseX+float64(j)*barWidth, y, barWidth, h, colors[j],
				template.HTMLEscapeString(s.Label), template.HTMLEscapeString(label), template.HTMLEscapeString(formatTick(s.Values[i])))
		}
		xLabel(&b, opts, padding+float64(i)*groupWidth+groupWidth/2, chartBottom+14, label)
	}

	legend(&b, opts, names, colors)
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func barPosition(value, scale, zeroY, top, bottom float64) (float64, float64) {
	if value >= 0 {
		height := value * scale
		y := zeroY - height
		if y < top {
			height -= top - y
			y = top
		}
		return y, math.Max(height, 0)
	}
	height := math.Abs(value * scale)
	if zeroY+height > bottom {
		height = bottom - zeroY
	}
	return zeroY, math.Max(height, 0)
}
