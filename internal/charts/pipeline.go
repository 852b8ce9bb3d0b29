package charts

import (
	"fmt"

	"github.com/chartloom/chartloom/internal/dataset"
	"github.com/chartloom/chartloom/internal/recovery"
)

// Response is the full chart-transform result for one agent reply: the
// render-ready charts, the suggestions skipped along the way with reasons,
// and the recovery outcome. When recovery fails entirely, RawReply carries
// the original text for passthrough.
type Response struct {
	Charts      []RenderChart     `json:"charts"`
	TotalCharts int               `json:"total_charts"`
	Skipped     []Rejected        `json:"skipped,omitempty"`
	Strategy    recovery.Strategy `json:"recovery_strategy"`
	Recovered   bool              `json:"recovered"`
	RawReply    string            `json:"raw_reply,omitempty"`
	Warnings    []string          `json:"warnings,omitempty"`
}

// BuildResponse runs the core pipeline over a raw agent reply: recovery,
// suggestion decoding, validation, then per accepted chart the data
// transformation and presentation mapping against the dataset. A chart that
// fails to transform is demoted to Skipped; it never blocks the others.
func BuildResponse(rawReply string, ds *dataset.Dataset) (*Response, error) {
	resp := &Response{}

	rec := recovery.Recover(rawReply)
	resp.Strategy = rec.Strategy
	resp.Recovered = rec.OK
	if !rec.OK {
		resp.RawReply = rawReply
		return resp, nil
	}

	suggestions, malformed, err := DecodeSuggestions(rec.Parsed)
	if err != nil {
		return nil, err
	}
	resp.Skipped = append(resp.Skipped, malformed...)

	accepted, rejected := ValidateAndFilter(suggestions)
	resp.Skipped = append(resp.Skipped, rejected...)

	var rows []dataset.Row
	if ds != nil {
		rows = ds.Rows
	}
	for idx, s := range accepted {
		transformed, warnings, err := Transform(rows, s.Parameters)
		if err != nil {
			resp.Skipped = append(resp.Skipped, Rejected{
				Title:     s.Title,
				ChartType: s.ChartType,
				Reason:    fmt.Sprintf("transform failed: %v", err),
			})
			continue
		}
		for _, w := range warnings {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("%s: %s", s.Title, w))
		}
		chart := TransformedChart{
			Title:       s.Title,
			Description: s.Insight,
			ChartType:   s.ChartType,
			XAxisKey:    s.Parameters.XAxis,
			YAxisKeys:   yAxisKeys(s.Parameters),
			GroupKeys:   groupSeriesKeys(transformed, s.Parameters.groupColumns()),
			Rows:        transformed,
		}
		resp.Charts = append(resp.Charts, Present(chart, idx))
	}
	resp.TotalCharts = len(resp.Charts)
	return resp, nil
}
