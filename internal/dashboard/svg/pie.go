package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Pie renders a pie chart with a legend on the right. Slices with no value are left out.
func Pie(width, height int, slices []Slice, opts ChartOpts) (template.HTML, error) {
	total := 0.0
	for _, s := range slices {
		if s.Value < 0 {
			return "", fmt.Errorf("svg: slice %q is negative", s.Label)
		}
		total += s.Value
	}
	if total <= 0 {
		return "", fmt.Errorf("svg: pie needs a positive total")
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	opts = opts.normalised()

	radius := math.Min(float64(width)/2, float64(height)) / 2
	radius -= 8
	if radius <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}
	cx := radius + 8
	cy := float64(height) / 2

	var b strings.Builder
	openSVG(&b, width, height, opts, "pie", "Gráfico de pizza")

	angle := -math.Pi / 2
	legendY := cy - float64(len(slices))*9
	for i, s := range slices {
		if s.Value == 0 {
			continue
		}
		color := colorAt(i, s.Color)
		share := s.Value / total
		label := fmt.Sprintf("%s: %.0f%%", s.Label, share*100)
		if almostEqual(share, 1) {
			fmt.Fprintf(&b, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"%s\"><title>%s</title></circle>", cx, cy, radius, color, template.HTMLEscapeString(label))
		} else {
			end := angle + share*2*math.Pi
			large := 0
			if share > 0.5 {
				large = 1
			}
			fmt.Fprintf(&b, "<path d=\"M%.2f %.2f L%.2f %.2f A%.2f %.2f 0 %d 1 %.2f %.2f Z\" fill=\"%s\" stroke=\"#fff\" stroke-width=\"1\"><title>%s</title></path>",
				cx, cy, cx+radius*math.Cos(angle), cy+radius*math.Sin(angle), radius, radius, large,
				cx+radius*math.Cos(end), cy+radius*math.Sin(end), color, template.HTMLEscapeString(label))
			angle = end
		}
		lx := cx + radius + 24
		fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" fill=\"%s\"></rect>", lx, legendY-8, color)
		fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"11\">%s</text>", lx+14, legendY, opts.AxisColor, template.HTMLEscapeString(label))
		legendY += 18
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
