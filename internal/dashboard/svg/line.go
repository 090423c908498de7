package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Lines renders one polyline per series over shared x labels.
func Lines(width, height int, series []Series, labels []string, opts ChartOpts) (template.HTML, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("svg: series required")
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

	xAt := func(i int) float64 {
		if len(labels) == 1 {
			return padding + chartWidth/2
		}
		return padding + float64(i)*chartWidth/float64(len(labels)-1)
	}
	yAt := func(v float64) float64 {
		return padding + chartHeight - (v-minVal)*scale
	}

	var b strings.Builder
	openSVG(&b, width, height, opts, "line", "Gráfico de linhas")
	grid(&b, opts, chartWidth, chartHeight, minVal, maxVal)

	colors := make([]string, len(series))
	names := make([]string, len(series))
	for j, s := range series {
		colors[j] = colorAt(j, s.Color)
		names[j] = s.Label
		var path strings.Builder
		for i, v := range s.Values {
			cmd := "L"
			if i == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&path, "%s%.2f %.2f ", cmd, xAt(i), yAt(v))
		}
		fmt.Fprintf(&b, "<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"2\" stroke-linejoin=\"round\" stroke-linecap=\"round\"></path>", strings.TrimSpace(path.String()), colors[j])
		if opts.ShowDots {
			for i, v := range s.Values {
				fmt.Fprintf(&b, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"3\" fill=\"%s\"><title>%s %s: %s</title></circle>",
					xAt(i), yAt(v), colors[j], template.HTMLEscapeString(s.Label), template.HTMLEscapeString(labels[i]), template.HTMLEscapeString(formatTick(v)))
			}
		}
	}

	for i, label := range labels {
		xLabel(&b, opts, xAt(i), padding+chartHeight+14, label)
	}
	legend(&b, opts, names, colors)
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
