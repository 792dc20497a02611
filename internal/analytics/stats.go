package analytics

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// mean returns NaN for an empty sample
func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	return stat.Mean(vals, nil)
}

// sampleStd is the n-1 standard deviation, NaN below two observations
func sampleStd(vals []float64) float64 {
	if len(vals) < 2 {
		return math.NaN()
	}
	return stat.StdDev(vals, nil)
}

func sum(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return floats.Sum(vals)
}

func minMax(vals []float64) (float64, float64) {
	if len(vals) == 0 {
		return math.NaN(), math.NaN()
	}
	return floats.Min(vals), floats.Max(vals)
}

// ratioPercent returns (num-den)/den*100, 0 when den is not positive
func ratioPercent(num, den float64) float64 {
	if !(den > 0) {
		return 0
	}
	return (num - den) / den * 100
}

func monthKey(t time.Time) string {
	return t.Format("2006-01")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// grouped collects values per key
type grouped map[string][]float64

func (g grouped) add(key string, v float64) {
	g[key] = append(g[key], v)
}

func (g grouped) means() map[string]float64 {
	out := make(map[string]float64, len(g))
	for k, vals := range g {
		out[k] = mean(vals)
	}
	return out
}

func (g grouped) sums() map[string]float64 {
	out := make(map[string]float64, len(g))
	for k, vals := range g {
		out[k] = sum(vals)
	}
	return out
}
