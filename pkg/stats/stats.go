// Package stats holds the pure scalar and series aggregators applied to the
// weekly bordereau extracts. Every function tolerates empty or all-null
// input: totals coalesce to zero, ratios report nil, nothing panics.
package stats

import (
	"fmt"
	"math"

	"github.com/trackwaste/publicstats/pkg/dataset"
)

// Operation type labels used by the warehouse for processed-waste rows.
const (
	OperationRecovered  = "Déchet valorisé"
	OperationEliminated = "Déchet éliminé"
)

// Summed sums a statistic column, optionally restricted to a half-open
// period on the date column. Empty input and all-null columns sum to 0; a
// pure aggregation never surfaces a null total to its caller.
func Summed(f *dataset.Frame, dateCol, statCol string, period *dataset.Period) float64 {
	if f == nil || f.Len() == 0 {
		return 0
	}
	if period != nil {
		f = f.FilterPeriod(dateCol, *period)
	}
	sum, ok := f.SumFloat(statCol)
	if !ok {
		return 0
	}
	return sum
}

// Category pairs a named dataset with the statistic column to sum. Some
// categories override the default column name, e.g. BSFF record counts live
// in "creations_bordereaux" instead of "creations".
type Category struct {
	Name       string
	Frame      *dataset.Frame
	StatColumn string
}

// TotalAcrossCategories sums one statistic across category datasets and
// floor-truncates the result, since downstream display is in whole units.
func TotalAcrossCategories(categories []Category, dateCol string, period *dataset.Period) int64 {
	var total float64
	for _, c := range categories {
		total += Summed(c.Frame, dateCol, c.StatColumn, period)
	}
	return int64(math.Floor(total))
}

// WeeklySplit groups processed-waste rows by (week, operation type), sums the
// value column and partitions the result into the recovered and eliminated
// series. Insertion order of weeks is preserved within each series; the
// output is not globally re-sorted.
func WeeklySplit(f *dataset.Frame, weekCol, typeCol, valueCol string) (recovered, eliminated *dataset.Frame, err error) {
	grouped, err := f.GroupBy([]string{weekCol, typeCol}, dataset.Agg{Col: valueCol, Op: dataset.SumAgg})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to group weekly processed data: %w", err)
	}
	recovered = grouped.Filter(func(r dataset.Row) bool {
		return !r.IsNull(typeCol) && r.Str(typeCol) == OperationRecovered
	})
	eliminated = grouped.Filter(func(r dataset.Row) bool {
		return !r.IsNull(typeCol) && r.Str(typeCol) == OperationEliminated
	})
	return recovered, eliminated, nil
}

// RatioOfSums computes round(sum(num)/sum(den) * scale, 2). It returns nil
// for an empty dataset. A zero denominator propagates as NaN, never a panic;
// the snapshot layer normalizes non-finite values to null at serialization.
func RatioOfSums(f *dataset.Frame, numCol, denCol string, scale float64) *float64 {
	if f == nil || f.Len() == 0 {
		return nil
	}
	num, _ := f.SumFloat(numCol)
	den, _ := f.SumFloat(denCol)
	v := round2(num / den * scale)
	return &v
}

// MeanOfRatios computes round(mean(num/den), 2) over per-row ratios. Rows
// where either side is null are skipped; nil is returned for an empty
// dataset. Zero denominators propagate as NaN through the mean.
func MeanOfRatios(f *dataset.Frame, numCol, denCol string) *float64 {
	if f == nil || f.Len() == 0 {
		return nil
	}
	var total float64
	var n int
	for i := 0; i < f.Len(); i++ {
		r := f.Row(i)
		if r.IsNull(numCol) || r.IsNull(denCol) {
			continue
		}
		total += r.Float(numCol) / r.Float(denCol)
		n++
	}
	if n == 0 {
		return nil
	}
	v := round2(total / float64(n))
	return &v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
