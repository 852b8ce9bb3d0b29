package charts

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/chartloom/chartloom/internal/dataset"
)

// ErrMissingParameters indicates a transform was requested without the axis
// or grouping information it cannot proceed without. Unlike skipped clauses
// this is fatal for the chart: no meaningful partial result exists.
var ErrMissingParameters = errors.New("chart parameters missing axis/grouping information")

// Transform executes the declarative parameters against the dataset rows:
// filter, group/aggregate, sort, limit, strictly in that order. The input
// rows are never mutated and identical inputs always produce identical
// output, including order.
//
// The returned warnings record data-quality conditions (unknown filter
// operators or aggregation functions) whose clauses were skipped rather
// than aborting the chart.
func Transform(rows []dataset.Row, p *Parameters) ([]dataset.Row, []string, error) {
	if p == nil {
		return nil, nil, ErrMissingParameters
	}
	groupCols := p.groupColumns()
	if p.XAxis == "" && len(groupCols) == 0 {
		return nil, nil, ErrMissingParameters
	}

	filtered, warnings := applyFilters(rows, p.Filters, nil)

	var out []dataset.Row
	if len(p.Aggregations) > 0 {
		out, warnings = aggregate(filtered, p, groupCols, warnings)
	} else {
		out = project(filtered, p, groupCols)
	}

	if p.Sort != nil && p.Sort.Column != "" {
		sortRows(out, p.Sort)
	}
	if p.Limit > 0 && len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out, warnings, nil
}

// applyFilters retains rows matching every clause (logical AND). Clauses
// with an unknown operator pass all rows and are reported as warnings.
func applyFilters(rows []dataset.Row, clauses []FilterClause, warnings []string) ([]dataset.Row, []string) {
	if len(clauses) == 0 {
		return rows, warnings
	}
	active := make([]FilterClause, 0, len(clauses))
	for _, c := range clauses {
		switch c.Op {
		case ">=", "<=", ">", "<", "==", "!=", "in":
			active = append(active, c)
		default:
			warnings = append(warnings, fmt.Sprintf("unknown filter operator %q on column %q: clause skipped", c.Op, c.Column))
		}
	}
	out := make([]dataset.Row, 0, len(rows))
	for _, row := range rows {
		keep := true
		for _, c := range active {
			if !matches(row, c) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out, warnings
}

func matches(row dataset.Row, c FilterClause) bool {
	v, ok := row[c.Column]
	if !ok || v == nil {
		// Null/missing never matches an ordering comparison; equality
		// against an explicit null is still exact.
		return c.Op == "==" && c.Value == nil || c.Op == "!=" && c.Value != nil
	}
	switch c.Op {
	case "==":
		return scalarEqual(v, c.Value)
	case "!=":
		return !scalarEqual(v, c.Value)
	case "in":
		list, ok := c.Value.([]any)
		if !ok {
			return false
		}
		for _, item := range list {
			if scalarEqual(v, item) {
				return true
			}
		}
		return false
	case ">=", "<=", ">", "<":
		cmp, comparable := compareValues(v, c.Value)
		if !comparable {
			return false
		}
		switch c.Op {
		case ">=":
			return cmp >= 0
		case "<=":
			return cmp <= 0
		case ">":
			return cmp > 0
		default:
			return cmp < 0
		}
	}
	return false
}

// scalarEqual is type-sensitive equality: the string "5" never equals the
// number 5.
func scalarEqual(a, b any) bool {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	return false
}

// compareValues orders two scalars: numerically when both are numbers,
// lexicographically when both are strings. Mixed or unordered types are not
// comparable.
func compareValues(a, b any) (int, bool) {
	if af, ok := a.(float64); ok {
		bf, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(as, bs), true
	}
	return 0, false
}

// aggregate groups rows by the x axis plus group columns and computes each
// aggregation clause per group. Output rows carry the group key columns and
// one column per aggregation named after its source column; when several
// clauses target the same column the last one wins. Groups are emitted in
// ascending key order, which pins the output order.
func aggregate(rows []dataset.Row, p *Parameters, groupCols []string, warnings []string) ([]dataset.Row, []string) {
	keyCols := make([]string, 0, 1+len(groupCols))
	if p.XAxis != "" {
		keyCols = append(keyCols, p.XAxis)
	}
	for _, col := range groupCols {
		if col != p.XAxis {
			keyCols = append(keyCols, col)
		}
	}

	active := make([]AggregationClause, 0, len(p.Aggregations))
	for _, a := range p.Aggregations {
		switch a.Func {
		case "sum", "mean", "max", "min", "count":
			active = append(active, a)
		default:
			warnings = append(warnings, fmt.Sprintf("unknown aggregation func %q on column %q: clause skipped", a.Func, a.Column))
		}
	}

	type group struct {
		key    []any
		member []dataset.Row
	}
	index := map[string]*group{}
	var order []*group
	for _, row := range rows {
		key := make([]any, len(keyCols))
		var sb strings.Builder
		for i, col := range keyCols {
			key[i] = row[col]
			fmt.Fprintf(&sb, "%T\x1f%v\x1f", row[col], row[col])
		}
		g := index[sb.String()]
		if g == nil {
			g = &group{key: key}
			index[sb.String()] = g
			order = append(order, g)
		}
		g.member = append(g.member, row)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return lessKey(order[i].key, order[j].key)
	})

	out := make([]dataset.Row, 0, len(order))
	for _, g := range order {
		row := make(dataset.Row, len(keyCols)+len(active))
		for i, col := range keyCols {
			row[col] = g.key[i]
		}
		for _, a := range active {
			row[a.Column] = aggregateColumn(g.member, a)
		}
		out = append(out, row)
	}
	return out, warnings
}

// aggregateColumn computes one aggregation over a group's column values,
// ignoring nulls. An all-null column yields nil for sum/mean/max/min and 0
// for count.
func aggregateColumn(rows []dataset.Row, a AggregationClause) any {
	if a.Func == "count" {
		n := 0
		for _, row := range rows {
			if v, ok := row[a.Column]; ok && v != nil {
				n++
			}
		}
		return float64(n)
	}
	var vals []float64
	for _, row := range rows {
		if f, ok := row[a.Column].(float64); ok {
			vals = append(vals, f)
		}
	}
	if len(vals) == 0 {
		return nil
	}
	switch a.Func {
	case "sum", "mean":
		total := 0.0
		for _, f := range vals {
			total += f
		}
		if a.Func == "mean" {
			return total / float64(len(vals))
		}
		return total
	case "max":
		m := vals[0]
		for _, f := range vals[1:] {
			if f > m {
				m = f
			}
		}
		return m
	case "min":
		m := vals[0]
		for _, f := range vals[1:] {
			if f < m {
				m = f
			}
		}
		return m
	}
	return nil
}

// lessKey orders group key tuples component-wise, numbers and strings via
// compareValues and anything else by its formatted form. Nil sorts first.
func lessKey(a, b []any) bool {
	for i := range a {
		if i >= len(b) {
			return false
		}
		av, bv := a[i], b[i]
		if av == nil || bv == nil {
			if av == nil && bv == nil {
				continue
			}
			return av == nil
		}
		if cmp, ok := compareValues(av, bv); ok {
			if cmp != 0 {
				return cmp < 0
			}
			continue
		}
		as, bs := fmt.Sprintf("%v", av), fmt.Sprintf("%v", bv)
		if as != bs {
			return as < bs
		}
	}
	return false
}

// project copies filtered rows through with only the axis, series, and
// grouping columns retained.
func project(rows []dataset.Row, p *Parameters, groupCols []string) []dataset.Row {
	cols := make([]string, 0, 2+len(p.YAxis)+len(groupCols))
	seen := map[string]bool{}
	add := func(c string) {
		if c != "" && !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	add(p.XAxis)
	for _, c := range p.YAxis {
		add(c)
	}
	for _, c := range groupCols {
		add(c)
	}

	out := make([]dataset.Row, 0, len(rows))
	for _, row := range rows {
		projected := make(dataset.Row, len(cols))
		for _, c := range cols {
			if v, ok := row[c]; ok {
				projected[c] = v
			} else {
				projected[c] = nil
			}
		}
		out = append(out, projected)
	}
	return out
}

// sortRows stable-sorts in place by the named column; ties keep their
// pre-sort relative order. Nil values order before everything ascending.
func sortRows(rows []dataset.Row, spec *SortSpec) {
	desc := strings.EqualFold(spec.Order, "desc")
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i][spec.Column], rows[j][spec.Column]
		if a == nil || b == nil {
			if a == nil && b == nil {
				return false
			}
			less := a == nil
			if desc {
				return !less
			}
			return less
		}
		cmp, ok := compareValues(a, b)
		if !ok {
			return false
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}
