package audit

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"

	"csvaudit/internal/table"
)

// DefaultMaxCols caps the rows NumericSummary returns
const DefaultMaxCols = 25

// NumericStats describes the present values of one numeric column.
// Statistics that are undefined for the column are NaN.
type NumericStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	P1     float64 `json:"p1"`
	P50    float64 `json:"p50"`
	P99    float64 `json:"p99"`
	Max    float64 `json:"max"`
}

// MarshalJSON renders NaN statistics as null
func (s NumericStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Column string   `json:"column"`
		Count  int      `json:"count"`
		Mean   *float64 `json:"mean"`
		Std    *float64 `json:"std"`
		Min    *float64 `json:"min"`
		P1     *float64 `json:"p1"`
		P50    *float64 `json:"p50"`
		P99    *float64 `json:"p99"`
		Max    *float64 `json:"max"`
	}{
		Column: s.Column,
		Count:  s.Count,
		Mean:   finite(s.Mean),
		Std:    finite(s.Std),
		Min:    finite(s.Min),
		P1:     finite(s.P1),
		P50:    finite(s.P50),
		P99:    finite(s.P99),
		Max:    finite(s.Max),
	})
}

// Values returns the statistics in column order: count, mean, std, min,
// 1%, 50%, 99%, max.
func (s NumericStats) Values() []float64 {
	return []float64{float64(s.Count), s.Mean, s.Std, s.Min, s.P1, s.P50, s.P99, s.Max}
}

// StatNames labels the entries of NumericStats.Values
var StatNames = []string{"count", "mean", "std", "min", "1%", "50%", "99%", "max"}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// NumericSummary describes the int and float columns of t, in column
// order, keeping at most maxCols rows. A negative maxCols means
// DefaultMaxCols.
func NumericSummary(t *table.Table, maxCols int) []NumericStats {
	if maxCols < 0 {
		maxCols = DefaultMaxCols
	}

	out := []NumericStats{}
	for i, name := range t.Names() {
		if len(out) == maxCols {
			break
		}
		switch t.Type(i) {
		case series.Int, series.Float:
			out = append(out, describe(name, t.Column(i)))
		}
	}
	return out
}

func describe(name string, col series.Series) NumericStats {
	values := make([]float64, 0, col.Len())
	for r := 0; r < col.Len(); r++ {
		e := col.Elem(r)
		if table.IsMissing(e) {
			continue
		}
		values = append(values, e.Float())
	}

	s := NumericStats{Column: name, Count: len(values)}
	nan := math.NaN()
	if len(values) == 0 {
		s.Mean, s.Std, s.Min, s.P1, s.P50, s.P99, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}

	s.Mean, s.Std = stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		s.Std = nan
	}

	sort.Float64s(values)
	s.Min = values[0]
	s.Max = values[len(values)-1]
	s.P1 = Percentile(values, 0.01)
	s.P50 = Percentile(values, 0.50)
	s.P99 = Percentile(values, 0.99)
	return s
}

// Percentile interpolates linearly between the closest ranks of sorted,
// placing q at fractional index (n-1)*q.
func Percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	h := float64(n-1) * q
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	if frac == 0 {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
