package charts

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/chartloom/chartloom/internal/dataset"
)

// chartPalette is the fixed, ordered set of series color tokens, matching
// the renderer's CSS chart variables. Series beyond the palette size wrap
// around, which is a known limitation.
var chartPalette = []string{
	"hsl(var(--chart-1))",
	"hsl(var(--chart-2))",
	"hsl(var(--chart-3))",
	"hsl(var(--chart-4))",
	"hsl(var(--chart-5))",
}

// TransformedChart is the output of the transformation engine for one
// accepted suggestion: the chart identity plus its post filter/aggregate/
// sort rows, restricted to the axis and series columns.
type TransformedChart struct {
	Title       string
	Description string
	ChartType   string
	XAxisKey    string
	YAxisKeys   []string
	GroupKeys   []string
	Rows        []dataset.Row
}

// SeriesConfig styles one plotted series.
type SeriesConfig struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// RenderChart is the final render-ready chart: the transformed chart plus a
// deterministic color/label mapping per series key.
type RenderChart struct {
	Title       string                  `json:"title"`
	Description string                  `json:"description,omitempty"`
	ChartType   string                  `json:"chart_type"`
	ChartConfig map[string]SeriesConfig `json:"chart_config"`
	ChartData   []dataset.Row           `json:"chart_data"`
	XAxisKey    string                  `json:"x_axis_key,omitempty"`
	YAxisKeys   []string                `json:"y_axis_keys"`
}

// Present assigns styling metadata to each series of a transformed chart.
// paletteOffset rotates the palette start so consecutive charts in one
// response lead with different colors; it is threaded by argument to keep
// the mapper free of global state. Within one chart, series colors are
// unique up to palette wraparound.
func Present(chart TransformedChart, paletteOffset int) RenderChart {
	keys := append([]string(nil), chart.YAxisKeys...)
	keys = append(keys, chart.GroupKeys...)
	if len(keys) == 0 {
		keys = []string{"value"}
	}

	cfg := make(map[string]SeriesConfig, len(keys))
	i := 0
	for _, key := range keys {
		if _, exists := cfg[key]; exists {
			continue
		}
		cfg[key] = SeriesConfig{
			Label: FormatLabel(key),
			Color: chartPalette[(paletteOffset+i)%len(chartPalette)],
		}
		i++
	}

	return RenderChart{
		Title:       chart.Title,
		Description: chart.Description,
		ChartType:   chart.ChartType,
		ChartConfig: cfg,
		ChartData:   chart.Rows,
		XAxisKey:    chart.XAxisKey,
		YAxisKeys:   chart.YAxisKeys,
	}
}

// yAxisKeys derives the plotted series keys for a suggestion: explicit
// y_axis entries first, then aggregation source columns, deduplicated.
// When nothing names a series the conventional "value" key is used.
func yAxisKeys(p *Parameters) []string {
	var keys []string
	seen := map[string]bool{}
	add := func(k string) {
		if k != "" && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, k := range p.YAxis {
		add(k)
	}
	for _, a := range p.Aggregations {
		add(a.Column)
	}
	if len(keys) == 0 {
		return []string{"value"}
	}
	return keys
}

// groupSeriesKeys lists the distinct values of the grouping columns in
// first-seen row order, so grouped charts can style each group as a series.
func groupSeriesKeys(rows []dataset.Row, groupCols []string) []string {
	var keys []string
	seen := map[string]bool{}
	for _, row := range rows {
		for _, col := range groupCols {
			v, ok := row[col]
			if !ok || v == nil {
				continue
			}
			k := fmt.Sprintf("%v", v)
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// FormatLabel turns a column key into a human-readable series label:
// underscores become spaces and each word is title-cased, so "total_sales"
// renders as "Total Sales".
func FormatLabel(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == ' ' })
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
