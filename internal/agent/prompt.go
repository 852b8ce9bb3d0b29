package agent

import (
	"strings"

	"github.com/chartloom/chartloom/internal/profile"
)

// BuildPrompt assembles the agent prompt: the user's message, the dataset
// profile, and the strict response-format instructions. The instructions pin
// the agent to a single JSON object so the recovery pipeline has a fighting
// chance even when the completion is cut off.
func BuildPrompt(message string, p *profile.Profile) string {
	if message == "" {
		message = "(No message provided)"
	}
	parts := []string{
		"User message:",
		message,
		"",
		p.Render(),
		"",
		"CRITICAL INSTRUCTIONS:",
		"Respond ONLY with a valid JSON object (no markdown, no extra text) containing chart suggestions.",
		"",
		"Required format:",
		`{`,
		`  "version": "1.0",`,
		`  "suggested_charts": [`,
		`    {`,
		`      "title": "Chart title",`,
		`      "chart_type": "line|bar|area|pie|donut|scatter|radar|radial",`,
		`      "parameters": {`,
		`        "x_axis": "column_name",`,
		`        "y_axis": "column_name" | ["col1", "col2"],`,
		`        "aggregations": [{"column": "name", "func": "sum|mean|count|min|max"}],`,
		`        "group_by": ["column1"],`,
		`        "filters": [{"column": "name", "op": ">=|<=|==|!=|>|<|in", "value": ...}],`,
		`        "sort": {"by": "column", "order": "asc|desc"}`,
		`      },`,
		`      "insight": "Brief explanation of the insight",`,
		`      "priority": "high|medium|low"`,
		`    }`,
		`  ]`,
		`}`,
		"",
		"SUPPORTED CHART TYPES:",
		"- line: time series, trends",
		"- bar: categorical comparisons",
		"- area: cumulative trends",
		"- pie/donut: distributions, proportions",
		"- scatter: correlations between numeric variables",
		"- radar: multidimensional comparison (several metrics)",
		"- radial: KPIs, circular progress",
		"",
		"IMPORTANT:",
		"- Suggest between 2 and 4 charts",
		"- Use exact column names from the dataset",
		"- For multi-series charts use y_axis as an array [\"col1\", \"col2\"]",
		"- 'group_by' must ALWAYS be an array, even with one element",
		"- 'aggregations' must ALWAYS be an array of objects",
		"- Use 'mean' for averages, NOT 'avg' or 'average'",
		"- Valid functions: sum, mean, count, min, max",
		"- Do NOT use chart types that are not listed (e.g. histogram, box, heatmap)",
		"- Respond with JSON only, no additional explanations",
	}
	return strings.Join(parts, "\n")
}
