package icpe

import (
	"fmt"
	"sort"
	"time"

	"github.com/trackwaste/publicstats/pkg/dataset"
)

// Granularity selects the bucket width of a time series.
type Granularity int

const (
	Daily Granularity = iota
	Weekly
	Monthly
)

// TruncateWeek returns the Monday of t's calendar week, at midnight UTC.
func TruncateWeek(t time.Time) time.Time {
	t = t.UTC()
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return d.AddDate(0, 0, -((int(d.Weekday()) + 6) % 7))
}

// TruncateMonth returns the first day of t's month, at midnight UTC.
func TruncateMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func truncate(t time.Time, g Granularity) time.Time {
	switch g {
	case Weekly:
		return TruncateWeek(t)
	case Monthly:
		return TruncateMonth(t)
	default:
		t = t.UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// Bucket sums valueCol per time bucket over the period, null values counted
// as zero, and returns one row per bucket present in the input, ascending by
// bucket start. Buckets with no record are not synthesized. Monthly output
// carries an extra running-cumulative column named valueCol + "_cumulee";
// since the input is period-filtered, the cumulative sum restarts at zero
// each year.
func Bucket(f *dataset.Frame, dateCol, valueCol string, g Granularity, period dataset.Period) (*dataset.Frame, error) {
	f = f.FilterPeriod(dateCol, period)

	sums := map[time.Time]float64{}
	for i := 0; i < f.Len(); i++ {
		r := f.Row(i)
		at := truncate(r.Time(dateCol), g)
		if v := r.FloatOrNil(valueCol); v != nil {
			sums[at] += *v
		} else {
			sums[at] += 0
		}
	}

	starts := make([]time.Time, 0, len(sums))
	for at := range sums {
		starts = append(starts, at)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	values := make([]float64, 0, len(starts))
	for _, at := range starts {
		values = append(values, sums[at])
	}

	cols := []*dataset.Series{
		dataset.Times(dateCol, starts...),
		dataset.Floats(valueCol, values...),
	}
	if g == Monthly {
		cum := make([]float64, len(values))
		running := 0.0
		for i, v := range values {
			running += v
			cum[i] = running
		}
		cols = append(cols, dataset.Floats(valueCol+"_cumulee", cum...))
	}

	out, err := dataset.New(cols...)
	if err != nil {
		return nil, fmt.Errorf("failed to build bucketed series: %w", err)
	}
	return out, nil
}
