package charts

import (
	"reflect"
	"testing"

	"github.com/chartloom/chartloom/internal/dataset"
)

func paperSales() []dataset.Row {
	return []dataset.Row{
		{"date": "2024-10-01", "paper_type": "A4", "quantity": 150.0, "price": 5.50, "total_sales": 825.00},
		{"date": "2024-10-02", "paper_type": "Letter", "quantity": 120.0, "price": 6.00, "total_sales": 720.00},
		{"date": "2024-10-03", "paper_type": "Legal", "quantity": 100.0, "price": 6.25, "total_sales": 625.00},
		{"date": "2024-10-04", "paper_type": "A4", "quantity": 180.0, "price": 5.50, "total_sales": 990.00},
		{"date": "2024-10-05", "paper_type": "Cardstock", "quantity": 75.0, "price": 8.00, "total_sales": 600.00},
		{"date": "2024-09-28", "paper_type": "A4", "quantity": 160.0, "price": 5.50, "total_sales": 880.00},
		{"date": "2024-09-29", "paper_type": "Letter", "quantity": 140.0, "price": 6.00, "total_sales": 840.00},
		{"date": "2024-09-30", "paper_type": "Legal", "quantity": 110.0, "price": 6.25, "total_sales": 687.50},
	}
}

func TestTransformFilterAggregate(t *testing.T) {
	rows := paperSales()
	p := &Parameters{
		XAxis: "paper_type",
		Filters: []FilterClause{
			{Column: "date", Op: ">=", Value: "2024-09-01"},
			{Column: "date", Op: "<=", Value: "2024-09-30"},
		},
		Aggregations: []AggregationClause{{Column: "total_sales", Func: "sum"}},
	}
	out, warnings, err := Transform(rows, p)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	// Group output order is pinned: ascending by group key.
	want := []dataset.Row{
		{"paper_type": "A4", "total_sales": 880.0},
		{"paper_type": "Legal", "total_sales": 687.5},
		{"paper_type": "Letter", "total_sales": 840.0},
	}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("out = %v, want %v", out, want)
	}
}

func TestTransformDoesNotMutateInput(t *testing.T) {
	rows := paperSales()
	snapshot := make([]dataset.Row, len(rows))
	for i, r := range rows {
		cp := make(dataset.Row, len(r))
		for k, v := range r {
			cp[k] = v
		}
		snapshot[i] = cp
	}
	p := &Parameters{
		XAxis:        "paper_type",
		Aggregations: []AggregationClause{{Column: "quantity", Func: "mean"}},
		Sort:         &SortSpec{Column: "quantity", Order: "desc"},
		Limit:        2,
	}
	if _, _, err := Transform(rows, p); err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if !reflect.DeepEqual(rows, snapshot) {
		t.Errorf("input rows were mutated")
	}
}

func TestTransformDeterministic(t *testing.T) {
	p := &Parameters{
		XAxis:        "date",
		GroupBy:      []string{"paper_type"},
		Aggregations: []AggregationClause{{Column: "total_sales", Func: "sum"}, {Column: "quantity", Func: "max"}},
	}
	first, _, err := Transform(paperSales(), p)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _, err := Transform(paperSales(), p)
		if err != nil {
			t.Fatalf("Transform: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %v vs %v", i, again, first)
		}
	}
}

func TestTransformEmptyDataset(t *testing.T) {
	p := &Parameters{XAxis: "x", Aggregations: []AggregationClause{{Column: "y", Func: "sum"}}}
	out, _, err := Transform(nil, p)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("out = %v, want empty", out)
	}
}

func TestTransformFilterEliminatesAllRows(t *testing.T) {
	p := &Parameters{
		XAxis:        "paper_type",
		Filters:      []FilterClause{{Column: "date", Op: ">", Value: "2030-01-01"}},
		Aggregations: []AggregationClause{{Column: "total_sales", Func: "sum"}},
	}
	out, _, err := Transform(paperSales(), p)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("out = %v, want empty", out)
	}
}

func TestTransformMissingParameters(t *testing.T) {
	if _, _, err := Transform(paperSales(), nil); err == nil {
		t.Error("nil parameters: expected error")
	}
	if _, _, err := Transform(paperSales(), &Parameters{}); err == nil {
		t.Error("no axis/grouping: expected error")
	}
}

func TestFilterOperators(t *testing.T) {
	rows := []dataset.Row{
		{"x": "a", "n": 5.0, "s": "5"},
		{"x": "b", "n": 10.0, "s": "10"},
		{"x": "c", "n": nil, "s": nil},
	}
	cases := []struct {
		name   string
		clause FilterClause
		want   []string
	}{
		{"numeric gt", FilterClause{Column: "n", Op: ">", Value: 5.0}, []string{"b"}},
		{"numeric gte", FilterClause{Column: "n", Op: ">=", Value: 5.0}, []string{"a", "b"}},
		{"numeric lt drops null", FilterClause{Column: "n", Op: "<", Value: 100.0}, []string{"a", "b"}},
		{"equality type-sensitive", FilterClause{Column: "s", Op: "==", Value: 5.0}, nil},
		{"equality string", FilterClause{Column: "s", Op: "==", Value: "5"}, []string{"a"}},
		{"inequality", FilterClause{Column: "n", Op: "!=", Value: 5.0}, []string{"b", "c"}},
		{"in list", FilterClause{Column: "x", Op: "in", Value: []any{"a", "c"}}, []string{"a", "c"}},
		{"in non-list", FilterClause{Column: "x", Op: "in", Value: "a"}, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := &Parameters{XAxis: "x", Filters: []FilterClause{c.clause}}
			out, _, err := Transform(rows, p)
			if err != nil {
				t.Fatalf("Transform: %v", err)
			}
			var got []string
			for _, row := range out {
				got = append(got, row["x"].(string))
			}
			if !reflect.DeepEqual(got, c.want) {
				t.Errorf("got %v, want %v", got, c.want)
			}
		})
	}
}

func TestUnknownFilterOperatorIsNoOp(t *testing.T) {
	p := &Parameters{
		XAxis:   "paper_type",
		Filters: []FilterClause{{Column: "date", Op: "between", Value: "x"}},
	}
	out, warnings, err := Transform(paperSales(), p)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if len(out) != len(paperSales()) {
		t.Errorf("unknown operator should pass all rows, got %d", len(out))
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want one entry", warnings)
	}
}

func TestUnknownAggregationFuncSkipped(t *testing.T) {
	p := &Parameters{
		XAxis: "paper_type",
		Aggregations: []AggregationClause{
			{Column: "total_sales", Func: "median"},
			{Column: "quantity", Func: "sum"},
		},
	}
	out, warnings, err := Transform(paperSales(), p)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want one entry", warnings)
	}
	for _, row := range out {
		if _, present := row["total_sales"]; present {
			t.Errorf("skipped clause still produced a column: %v", row)
		}
		if _, present := row["quantity"]; !present {
			t.Errorf("valid clause missing from output: %v", row)
		}
	}
}

func TestAggregationFunctions(t *testing.T) {
	rows := []dataset.Row{
		{"g": "a", "v": 1.0},
		{"g": "a", "v": 3.0},
		{"g": "a", "v": nil},
	}
	cases := []struct {
		fn   string
		want any
	}{
		{"sum", 4.0},
		{"mean", 2.0},
		{"max", 3.0},
		{"min", 1.0},
		{"count", 2.0},
	}
	for _, c := range cases {
		p := &Parameters{XAxis: "g", Aggregations: []AggregationClause{{Column: "v", Func: c.fn}}}
		out, _, err := Transform(rows, p)
		if err != nil {
			t.Fatalf("Transform(%s): %v", c.fn, err)
		}
		if len(out) != 1 {
			t.Fatalf("Transform(%s): %d groups", c.fn, len(out))
		}
		if out[0]["v"] != c.want {
			t.Errorf("%s = %v, want %v", c.fn, out[0]["v"], c.want)
		}
	}
}

func TestAggregateAllNullColumn(t *testing.T) {
	rows := []dataset.Row{
		{"g": "a", "v": nil},
		{"g": "a", "v": nil},
	}
	for _, fn := range []string{"sum", "mean", "max", "min"} {
		p := &Parameters{XAxis: "g", Aggregations: []AggregationClause{{Column: "v", Func: fn}}}
		out, _, err := Transform(rows, p)
		if err != nil {
			t.Fatalf("Transform(%s): %v", fn, err)
		}
		if out[0]["v"] != nil {
			t.Errorf("%s over all-null = %v, want nil", fn, out[0]["v"])
		}
	}
	p := &Parameters{XAxis: "g", Aggregations: []AggregationClause{{Column: "v", Func: "count"}}}
	out, _, err := Transform(rows, p)
	if err != nil {
		t.Fatalf("Transform(count): %v", err)
	}
	if out[0]["v"] != 0.0 {
		t.Errorf("count over all-null = %v, want 0", out[0]["v"])
	}
}

func TestDuplicateAggregationTargetLastWins(t *testing.T) {
	rows := []dataset.Row{
		{"g": "a", "v": 1.0},
		{"g": "a", "v": 3.0},
	}
	p := &Parameters{XAxis: "g", Aggregations: []AggregationClause{
		{Column: "v", Func: "sum"},
		{Column: "v", Func: "max"},
	}}
	out, _, err := Transform(rows, p)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if out[0]["v"] != 3.0 {
		t.Errorf("v = %v, want 3 (last clause wins)", out[0]["v"])
	}
}

func TestTransformSortAndLimit(t *testing.T) {
	p := &Parameters{
		XAxis:        "paper_type",
		Aggregations: []AggregationClause{{Column: "total_sales", Func: "sum"}},
		Sort:         &SortSpec{Column: "total_sales", Order: "desc"},
		Limit:        2,
	}
	out, _, err := Transform(paperSales(), p)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
	// A4: 825+990+880=2695, Letter: 720+840=1560
	if out[0]["paper_type"] != "A4" || out[0]["total_sales"] != 2695.0 {
		t.Errorf("first = %v", out[0])
	}
	if out[1]["paper_type"] != "Letter" || out[1]["total_sales"] != 1560.0 {
		t.Errorf("second = %v", out[1])
	}
}

func TestTransformProjectionWithoutAggregations(t *testing.T) {
	p := &Parameters{
		XAxis:   "date",
		YAxis:   YAxisList{"total_sales"},
		Filters: []FilterClause{{Column: "paper_type", Op: "==", Value: "A4"}},
		Sort:    &SortSpec{Column: "date", Order: "asc"},
	}
	out, _, err := Transform(paperSales(), p)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	want := []dataset.Row{
		{"date": "2024-09-28", "total_sales": 880.0},
		{"date": "2024-10-01", "total_sales": 825.0},
		{"date": "2024-10-04", "total_sales": 990.0},
	}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("out = %v, want %v", out, want)
	}
}
