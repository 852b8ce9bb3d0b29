// Package charts turns recovered agent chart suggestions into render-ready
// charts: validation against the supported chart set, execution of the
// declarative transformation parameters against the dataset, and color/label
// assignment per series.
package charts

import (
	"encoding/json"
	"fmt"
)

// Supported chart types, matching the renderer's component set. The set is
// closed and case-sensitive; the agent vocabulary is open, so anything else
// is rejected during validation.
var supportedChartTypes = map[string]bool{
	"line":    true,
	"bar":     true,
	"area":    true,
	"pie":     true,
	"donut":   true,
	"scatter": true,
	"radar":   true,
	"radial":  true,
}

// FilterClause is a single row predicate. Value is a scalar for comparison
// operators and a list for "in".
type FilterClause struct {
	Column string `json:"column"`
	Op     string `json:"op"`
	Value  any    `json:"value"`
}

// AggregationClause names a column and the function applied to it per group.
type AggregationClause struct {
	Column string `json:"column"`
	Func   string `json:"func"`
}

// SortSpec orders transformed rows by one column. The agent emits the sort
// key as either "column" or "by".
type SortSpec struct {
	Column string `json:"column"`
	Order  string `json:"order"`
}

func (s *SortSpec) UnmarshalJSON(data []byte) error {
	var raw struct {
		Column string `json:"column"`
		By     string `json:"by"`
		Order  string `json:"order"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Column = raw.Column
	if s.Column == "" {
		s.Column = raw.By
	}
	s.Order = raw.Order
	return nil
}

// YAxisList accepts y_axis as either a single string or an array of strings.
type YAxisList []string

func (y *YAxisList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*y = nil
		} else {
			*y = YAxisList{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("y_axis must be a string or an array of strings")
	}
	*y = YAxisList(many)
	return nil
}

// Parameters is the declarative transformation attached to a suggestion.
// Every field is optional; absent fields disable the corresponding stage.
type Parameters struct {
	XAxis        string              `json:"x_axis"`
	YAxis        YAxisList           `json:"y_axis"`
	GroupBy      []string            `json:"group_by"`
	Series       []string            `json:"series"`
	Filters      []FilterClause      `json:"filters"`
	Aggregations []AggregationClause `json:"aggregations"`
	Sort         *SortSpec           `json:"sort"`
	Limit        int                 `json:"limit"`
}

// groupColumns merges group_by and series, which the agent uses
// interchangeably, preserving order and dropping duplicates.
func (p *Parameters) groupColumns() []string {
	var out []string
	seen := map[string]bool{}
	for _, col := range append(append([]string(nil), p.GroupBy...), p.Series...) {
		if col == "" || seen[col] {
			continue
		}
		seen[col] = true
		out = append(out, col)
	}
	return out
}

// Suggestion is one agent-proposed chart, untrusted until validated.
type Suggestion struct {
	Title               string      `json:"title"`
	ChartType           string      `json:"chart_type"`
	Parameters          *Parameters `json:"parameters"`
	Insight             string      `json:"insight"`
	Priority            string      `json:"priority"`
	DataRequestRequired *bool       `json:"data_request_required"`
}

// Rejected records a suggestion that failed validation, with the reason.
// Terminal: rejected suggestions are never re-processed.
type Rejected struct {
	Title     string `json:"title"`
	ChartType string `json:"chart_type"`
	Reason    string `json:"reason"`
}

// DecodeSuggestions pulls suggested_charts out of a recovered reply object.
// A missing or null field decodes as zero suggestions (partial recovery is
// tolerated); a present non-list field is a structural error. Individual
// malformed elements become Rejected entries so one bad suggestion never
// blocks the rest.
func DecodeSuggestions(parsed map[string]any) ([]Suggestion, []Rejected, error) {
	rawList, ok := parsed["suggested_charts"]
	if !ok || rawList == nil {
		return nil, nil, nil
	}
	list, isList := rawList.([]any)
	if !isList {
		return nil, nil, fmt.Errorf("suggested_charts must be a list, got %T", rawList)
	}
	var out []Suggestion
	var malformed []Rejected
	for _, elem := range list {
		// Round-trip through JSON so the loosely typed map decodes into
		// the strict suggestion struct.
		buf, err := json.Marshal(elem)
		if err != nil {
			malformed = append(malformed, Rejected{Reason: fmt.Sprintf("malformed suggestion: %v", err)})
			continue
		}
		var s Suggestion
		if err := json.Unmarshal(buf, &s); err != nil {
			r := Rejected{Reason: fmt.Sprintf("malformed suggestion: %v", err)}
			if m, ok := elem.(map[string]any); ok {
				r.Title, _ = m["title"].(string)
				r.ChartType, _ = m["chart_type"].(string)
			}
			malformed = append(malformed, r)
			continue
		}
		out = append(out, s)
	}
	return out, malformed, nil
}
