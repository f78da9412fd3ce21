package visualizer

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/ashureev/hr-analyst-bot/internal/store"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartWidth  = 900
	chartHeight = 500
	tickAngle   = 45.0
)

// render draws the directive's chart kind over at most the first maxChartRows
// rows and serializes it to an in-memory PNG.
func render(d Directive, rs *store.ResultSet) ([]byte, error) {
	if d.X == "" || d.Y == "" {
		return nil, fmt.Errorf("directive missing x/y fields")
	}

	labels, values := extractSeries(d, rs)
	if len(values) == 0 {
		return nil, fmt.Errorf("no plottable values for x=%q y=%q", d.X, d.Y)
	}

	var buf bytes.Buffer
	var err error
	switch d.Type {
	case "line":
		err = renderXY(&buf, d, labels, values, false)
	case "scatter":
		err = renderXY(&buf, d, labels, values, true)
	case "bar":
		err = renderBar(&buf, d, labels, values)
	case "pie":
		err = renderPie(&buf, d, labels, values)
	default:
		return nil, fmt.Errorf("unsupported chart type %q", d.Type)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// extractSeries pulls aligned (label, value) pairs from the rows, skipping
// rows where either field is absent or non-numeric.
func extractSeries(d Directive, rs *store.ResultSet) ([]string, []float64) {
	rows := rs.Rows
	if len(rows) > maxChartRows {
		rows = rows[:maxChartRows]
	}

	var labels []string
	var values []float64
	for _, row := range rows {
		xv, ok := row[d.X]
		if !ok {
			continue
		}
		yv, ok := row[d.Y]
		if !ok {
			continue
		}
		y, ok := floatValue(yv)
		if !ok {
			continue
		}
		labels = append(labels, labelValue(xv))
		values = append(values, y)
	}
	return labels, values
}

func renderXY(buf *bytes.Buffer, d Directive, labels []string, values []float64, scatter bool) error {
	xs := make([]float64, len(values))
	ticks := make([]chart.Tick, len(values))
	for i := range values {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: labels[i]}
	}

	style := chart.Style{StrokeWidth: 2, DotWidth: 4}
	if scatter {
		style = chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    5,
			DotColor:    drawing.Color{R: 0, G: 116, B: 217, A: 180},
		}
	}

	graph := chart.Chart{
		Title:  d.Title,
		Width:  chartWidth,
		Height: chartHeight,
		XAxis: chart.XAxis{
			Name:  d.XLabel,
			Style: chart.Style{TextRotationDegrees: tickAngle},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{Name: d.YLabel},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Style:   style,
				XValues: xs,
				YValues: values,
			},
		},
	}
	return graph.Render(chart.PNG, buf)
}

func renderBar(buf *bytes.Buffer, d Directive, labels []string, values []float64) error {
	bars := make([]chart.Value, len(values))
	for i := range values {
		bars[i] = chart.Value{Label: labels[i], Value: values[i]}
	}

	graph := chart.BarChart{
		Title:    d.Title,
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 40,
		XAxis:    chart.Style{TextRotationDegrees: tickAngle},
		YAxis:    chart.YAxis{Name: d.YLabel},
		Bars:     bars,
	}
	return graph.Render(chart.PNG, buf)
}

func renderPie(buf *bytes.Buffer, d Directive, labels []string, values []float64) error {
	var total float64
	for _, v := range values {
		total += v
	}
	if total <= 0 {
		return fmt.Errorf("pie chart needs a positive total")
	}

	wedges := make([]chart.Value, len(values))
	for i := range values {
		wedges[i] = chart.Value{
			Label: fmt.Sprintf("%s (%.1f%%)", labels[i], 100*values[i]/total),
			Value: values[i],
		}
	}

	graph := chart.PieChart{
		Title:  d.Title,
		Width:  chartHeight, // square canvas for pies
		Height: chartHeight,
		Values: wedges,
	}
	return graph.Render(chart.PNG, buf)
}

func floatValue(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case int:
		return float64(val), true
	case []byte:
		f, err := strconv.ParseFloat(string(val), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func labelValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case time.Time:
		return val.Format("2006-01-02")
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
