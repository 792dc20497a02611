package validation

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"maizeintel/internal/dataset"
)

const rangeLayout = "2006-01-02 15:04:05"

// numbers parses a column into floats. Missing and non-numeric cells become NaN;
// the distinct non-numeric cells are returned in first-seen order.
func numbers(t *dataset.Table, column string) ([]float64, []string) {
	cells := t.Column(column)
	vals := make([]float64, len(cells))
	var bad []string
	for i, cell := range cells {
		vals[i] = math.NaN()
		if dataset.IsMissing(cell) {
			continue
		}
		f, err := dataset.ParseNumber(cell)
		if err != nil {
			bad = appendUnique(bad, cell)
			continue
		}
		vals[i] = f
	}
	return vals, bad
}

// dates parses a date column. Missing cells are zero times; the first
// unparseable cell aborts with its error.
func dates(t *dataset.Table, column string) ([]time.Time, error) {
	cells := t.Column(column)
	out := make([]time.Time, len(cells))
	for i, cell := range cells {
		if dataset.IsMissing(cell) {
			continue
		}
		d, err := dataset.ParseDate(cell)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

func countFuture(ds []time.Time, now time.Time) int {
	n := 0
	for _, d := range ds {
		if !d.IsZero() && d.After(now) {
			n++
		}
	}
	return n
}

func dateRange(ds []time.Time) string {
	var lo, hi time.Time
	for _, d := range ds {
		if d.IsZero() {
			continue
		}
		if lo.IsZero() || d.Before(lo) {
			lo = d
		}
		if hi.IsZero() || d.After(hi) {
			hi = d
		}
	}
	if lo.IsZero() {
		return "NaT to NaT"
	}
	return lo.Format(rangeLayout) + " to " + hi.Format(rangeLayout)
}

func countWhere(vals []float64, pred func(float64) bool) int {
	n := 0
	for _, v := range vals {
		if !math.IsNaN(v) && pred(v) {
			n++
		}
	}
	return n
}

func present(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func sum(vals []float64) float64 {
	total := 0.0
	for _, v := range present(vals) {
		total += v
	}
	return total
}

func mean(vals []float64) float64 {
	p := present(vals)
	if len(p) == 0 {
		return math.NaN()
	}
	return stat.Mean(p, nil)
}

// countOutliers counts values outside [Q1 - k*IQR, Q3 + k*IQR]
func countOutliers(vals []float64, k float64) int {
	sorted := present(vals)
	if len(sorted) == 0 {
		return 0
	}
	sort.Float64s(sorted)
	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	lower, upper := q1-k*iqr, q3+k*iqr
	return countWhere(vals, func(v float64) bool { return v < lower || v > upper })
}

// quantile interpolates linearly between the closest ranks of sorted at
// position (n-1)p, the same estimate pandas uses by default.
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	if lo+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// distinct returns the non-missing distinct cells of a column in first-seen order
func distinct(t *dataset.Table, column string) []string {
	var out []string
	for _, cell := range t.Column(column) {
		if dataset.IsMissing(cell) {
			continue
		}
		out = appendUnique(out, cell)
	}
	return out
}

// outside returns the distinct non-missing cells rejected by accept
func outside(t *dataset.Table, column string, accept func(string) bool) []string {
	var out []string
	for _, cell := range distinct(t, column) {
		if !accept(cell) {
			out = append(out, cell)
		}
	}
	return out
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

// quoteList renders values as ['a', 'b']
func quoteList(vals []string) string {
	quoted := make([]string, len(vals))
	for i, v := range vals {
		quoted[i] = "'" + v + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// quoteSet renders column names as {'a', 'b'}
func quoteSet(vals []string) string {
	l := quoteList(vals)
	return "{" + l[1:len(l)-1] + "}"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
