package charts

import (
	"fmt"
	"strings"
)

// ValidateAndFilter partitions suggestions into accepted and rejected.
// Order is preserved within both lists and every input lands in exactly one
// of them; each rejection carries a human-readable reason. Accepted
// suggestions get their optional fields defaulted (priority "medium",
// data_request_required true).
func ValidateAndFilter(suggestions []Suggestion) (accepted []Suggestion, rejected []Rejected) {
	for _, s := range suggestions {
		if reason := validate(s); reason != "" {
			rejected = append(rejected, Rejected{Title: s.Title, ChartType: s.ChartType, Reason: reason})
			continue
		}
		if s.Priority == "" {
			s.Priority = "medium"
		}
		if s.DataRequestRequired == nil {
			t := true
			s.DataRequestRequired = &t
		}
		accepted = append(accepted, s)
	}
	return accepted, rejected
}

// validate returns the rejection reason for the first failing rule, or ""
// when the suggestion is acceptable.
func validate(s Suggestion) string {
	if !supportedChartTypes[s.ChartType] {
		return fmt.Sprintf("unsupported chart_type: %s", s.ChartType)
	}
	if strings.TrimSpace(s.Title) == "" {
		return "missing title"
	}
	if s.Parameters == nil || (s.Parameters.XAxis == "" && len(s.Parameters.groupColumns()) == 0) {
		return "missing axis/grouping information"
	}
	return ""
}
