package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/chartloom/chartloom/internal/dataset"
)

// NumericSummary captures describe()-style statistics for a numeric column.
type NumericSummary struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Max   float64
}

// CategoricalSummary captures describe()-style statistics for a non-numeric column.
type CategoricalSummary struct {
	Count  int
	Unique int
	Top    string
	Freq   int
}

// Profile is the statistical summary of a dataset. It is rendered into the
// agent prompt verbatim; the agent bases its chart suggestions on it.
type Profile struct {
	Columns     []string
	DTypes      map[string]string
	Numeric     map[string]NumericSummary
	Categorical map[string]CategoricalSummary
	Info        string
}

// Build computes a Profile over the dataset. Pure and deterministic.
func Build(ds *dataset.Dataset) *Profile {
	p := &Profile{
		Columns:     append([]string(nil), ds.Columns...),
		DTypes:      make(map[string]string, len(ds.Columns)),
		Numeric:     map[string]NumericSummary{},
		Categorical: map[string]CategoricalSummary{},
	}
	for k, v := range ds.DTypes {
		p.DTypes[k] = v
	}

	type numAcc struct {
		n        int
		mean, m2 float64
		min, max float64
	}
	nums := map[string]*numAcc{}
	cats := map[string]map[string]int{}
	nonNull := map[string]int{}

	for _, row := range ds.Rows {
		for _, col := range ds.Columns {
			v, ok := row[col]
			if !ok || v == nil {
				continue
			}
			nonNull[col]++
			if f, isNum := v.(float64); isNum {
				a := nums[col]
				if a == nil {
					a = &numAcc{min: math.Inf(1), max: math.Inf(-1)}
					nums[col] = a
				}
				// Welford update
				a.n++
				if f < a.min {
					a.min = f
				}
				if f > a.max {
					a.max = f
				}
				delta := f - a.mean
				a.mean += delta / float64(a.n)
				a.m2 += delta * (f - a.mean)
				continue
			}
			s := fmt.Sprintf("%v", v)
			c := cats[col]
			if c == nil {
				c = map[string]int{}
				cats[col] = c
			}
			c[s]++
		}
	}

	for col, a := range nums {
		s := NumericSummary{Count: a.n, Mean: a.mean, Min: a.min, Max: a.max}
		if a.n > 1 {
			s.Std = math.Sqrt(a.m2 / float64(a.n-1))
		}
		p.Numeric[col] = s
	}
	for col, c := range cats {
		top, freq, total := "", 0, 0
		keys := make([]string, 0, len(c))
		for k := range c {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			total += c[k]
			if c[k] > freq {
				top, freq = k, c[k]
			}
		}
		p.Categorical[col] = CategoricalSummary{Count: total, Unique: len(c), Top: top, Freq: freq}
	}

	p.Info = buildInfo(ds, nonNull)
	return p
}

// buildInfo renders a compact per-column summary block in the spirit of
// pandas DataFrame.info().
func buildInfo(ds *dataset.Dataset, nonNull map[string]int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "RangeIndex: %d entries\n", len(ds.Rows))
	fmt.Fprintf(&b, "Data columns (total %d columns):\n", len(ds.Columns))
	for i, col := range ds.Columns {
		fmt.Fprintf(&b, " %d  %s  %d non-null  %s\n", i, col, nonNull[col], ds.DTypes[col])
	}
	return b.String()
}

// Render produces the profile text embedded in the agent prompt.
func (p *Profile) Render() string {
	var b strings.Builder
	b.WriteString("Dataset profile:\n")
	fmt.Fprintf(&b, "- Columns: %s\n", strings.Join(p.Columns, ", "))
	b.WriteString("- Data types: ")
	for i, col := range p.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%s", col, p.DTypes[col])
	}
	b.WriteString("\n")

	if len(p.Numeric) > 0 {
		b.WriteString("\nNumeric statistics:\n")
		for _, col := range p.Columns {
			s, ok := p.Numeric[col]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "- %s: count=%d mean=%.4g std=%.4g min=%.4g max=%.4g\n",
				col, s.Count, s.Mean, s.Std, s.Min, s.Max)
		}
	}
	if len(p.Categorical) > 0 {
		b.WriteString("\nNon-numeric statistics:\n")
		for _, col := range p.Columns {
			s, ok := p.Categorical[col]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "- %s: count=%d unique=%d top=%s freq=%d\n",
				col, s.Count, s.Unique, s.Top, s.Freq)
		}
	}
	b.WriteString("\nDataFrame info:\n")
	b.WriteString(p.Info)
	return b.String()
}
