package recovery

import (
	"reflect"
	"testing"
)

func TestRecoverDirect(t *testing.T) {
	res := Recover(`{"version": "1.0", "insights": ["a", "b"], "summary": "test"}`)
	if !res.OK {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Strategy != StrategyDirect {
		t.Errorf("strategy = %q, want %q", res.Strategy, StrategyDirect)
	}
	if res.Parsed["summary"] != "test" {
		t.Errorf("summary = %v", res.Parsed["summary"])
	}
}

func TestRecoverBoundary(t *testing.T) {
	raw := "Some text before\n{\"status\": \"success\", \"data\": [1, 2, 3]}\nSome text after"
	res := Recover(raw)
	if !res.OK {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Strategy != StrategyBoundary {
		t.Errorf("strategy = %q, want %q", res.Strategy, StrategyBoundary)
	}
	data, ok := res.Parsed["data"].([]any)
	if !ok || len(data) != 3 {
		t.Errorf("data = %v", res.Parsed["data"])
	}
}

func TestRecoverNested(t *testing.T) {
	raw := `
	{
	  "context": {"dataset": "sales", "rows": 15},
	  "insights": [{"title": "Sales Trend", "data": {"mean": 1758.33}}]
	}
	`
	res := Recover(raw)
	if !res.OK {
		t.Fatalf("expected success, got %+v", res)
	}
	ctx, ok := res.Parsed["context"].(map[string]any)
	if !ok || ctx["dataset"] != "sales" {
		t.Errorf("context = %v", res.Parsed["context"])
	}
}

func TestRecoverCommaRepairTruncatedMember(t *testing.T) {
	// The trailing member is cut off mid-string; the completed
	// suggested_charts array before the last top-level comma survives.
	raw := `{"suggested_charts":[{"title":"T","chart_type":"bar"}],"extra_field":"cut off mid`
	res := Recover(raw)
	if !res.OK {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Strategy != StrategyCommaRepair {
		t.Errorf("strategy = %q, want %q", res.Strategy, StrategyCommaRepair)
	}
	list, ok := res.Parsed["suggested_charts"].([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("suggested_charts = %v", res.Parsed["suggested_charts"])
	}
	first := list[0].(map[string]any)
	if first["title"] != "T" || first["chart_type"] != "bar" {
		t.Errorf("first chart = %v", first)
	}
}

func TestRecoverArrayClose(t *testing.T) {
	// No top-level comma exists, so comma repair cannot help. The
	// second-to-last array-close boundary lands on the completed first
	// element; the incomplete trailing elements are dropped.
	raw := `{"suggested_charts":[{"a":[1,2]},{"b":[3,4]},{"c":[5`
	res := Recover(raw)
	if !res.OK {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Strategy != StrategyArrayClose {
		t.Errorf("strategy = %q, want %q", res.Strategy, StrategyArrayClose)
	}
	list, ok := res.Parsed["suggested_charts"].([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("suggested_charts = %v", res.Parsed["suggested_charts"])
	}
	first := list[0].(map[string]any)
	if _, ok := first["a"]; !ok {
		t.Errorf("first element = %v", first)
	}
}

func TestRecoverFailure(t *testing.T) {
	for _, raw := range []string{
		"",
		"This is just plain text, not JSON",
		"}{",
	} {
		res := Recover(raw)
		if res.OK {
			t.Errorf("Recover(%q) unexpectedly succeeded: %+v", raw, res)
		}
		if res.Strategy != StrategyNone {
			t.Errorf("Recover(%q) strategy = %q, want %q", raw, res.Strategy, StrategyNone)
		}
		if res.Parsed != nil {
			t.Errorf("Recover(%q) parsed = %v, want nil", raw, res.Parsed)
		}
	}
}

func TestRecoverIdempotent(t *testing.T) {
	raw := `prefix {"suggested_charts":[{"title":"T"}],"trailing":"cut `
	first := Recover(raw)
	second := Recover(raw)
	if first.OK != second.OK || first.Strategy != second.Strategy {
		t.Fatalf("outcomes differ: %+v vs %+v", first, second)
	}
	if !reflect.DeepEqual(first.Parsed, second.Parsed) {
		t.Errorf("parsed objects differ: %v vs %v", first.Parsed, second.Parsed)
	}
}

func TestRecoverMonotonicUnderTruncation(t *testing.T) {
	// Truncating a well-formed reply after a completed sibling must keep
	// every completed element before the cut.
	full := `{"context":{"rows":8},"suggested_charts":[{"title":"A","tags":["x"]},{"title":"B","tags":["y"]}]}`
	truncated := full[:len(full)-len(`,{"title":"B","tags":["y"]}]}`)]
	res := Recover(truncated)
	if !res.OK {
		t.Fatalf("expected success, got %+v", res)
	}
	ctx, ok := res.Parsed["context"].(map[string]any)
	if !ok || ctx["rows"] != float64(8) {
		t.Errorf("context lost: %v", res.Parsed["context"])
	}
	if list, ok := res.Parsed["suggested_charts"].([]any); ok && len(list) > 0 {
		first := list[0].(map[string]any)
		if first["title"] != "A" {
			t.Errorf("first element = %v", first)
		}
	}
}

func TestCloseDelims(t *testing.T) {
	cases := []struct{ in, want string }{
		{`{"a":[1,2`, `]}`},
		{`{"a":{"b":[`, `]}}`},
		{`{"a":1}`, ``},
		{`{"a":"brace { in string"`, `}`},
		{`{"a":"unterminated`, `"}`},
	}
	for _, c := range cases {
		if got := closeDelims(c.in); got != c.want {
			t.Errorf("closeDelims(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestLastTopLevelComma(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{`{"a":1,"b":2}`, 6},
		{`{"a":[1,2]}`, -1},
		{`{"a":"x,y"}`, -1},
		{`{}`, -1},
	}
	for _, c := range cases {
		if got := lastTopLevelComma(c.in); got != c.want {
			t.Errorf("lastTopLevelComma(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}
