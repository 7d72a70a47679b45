package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPublicStats_Dataset_FilterPeriod(t *testing.T) {
	t.Parallel()

	f := MustNew(
		Times("week", day(2023, 1, 2), day(2023, 6, 5), day(2024, 1, 1)),
		Floats("created", 3, 7, 9),
	)

	t.Run("left inclusive right exclusive", func(t *testing.T) {
		t.Parallel()

		p := Period{Start: day(2023, 1, 2), End: day(2024, 1, 1)}
		got := f.FilterPeriod("week", p)
		require.Equal(t, 2, got.Len())

		col, ok := got.Column("created")
		require.True(t, ok)
		sum, hasValues := col.Sum()
		require.True(t, hasValues)
		require.Equal(t, 10.0, sum)
	})

	t.Run("boundary sample at end is excluded", func(t *testing.T) {
		t.Parallel()

		p := Period{Start: day(2023, 1, 1), End: day(2023, 6, 5)}
		got := f.FilterPeriod("week", p)
		require.Equal(t, 1, got.Len())
	})

	t.Run("null dates are dropped", func(t *testing.T) {
		t.Parallel()

		withNull := MustNew(
			Times("week", day(2023, 1, 2)),
			Floats("created", 1),
		)
		nullWeek := Empty("week", Time)
		nullWeek.appendNull()
		onlyNull := MustNew(nullWeek, Floats("created", 5))
		merged, err := ConcatDiagonal(withNull, onlyNull)
		require.NoError(t, err)

		got := merged.FilterPeriod("week", PeriodForYear(2023))
		require.Equal(t, 1, got.Len())
	})
}

func TestPublicStats_Dataset_SumFloat(t *testing.T) {
	t.Parallel()

	t.Run("skips nulls", func(t *testing.T) {
		t.Parallel()

		f := MustNew(NullableFloats("qty", ptr(2.5), nil, ptr(1.5)))
		sum, ok := f.SumFloat("qty")
		require.True(t, ok)
		require.Equal(t, 4.0, sum)
	})

	t.Run("all null column reports no value", func(t *testing.T) {
		t.Parallel()

		f := MustNew(NullableFloats("qty", nil, nil))
		_, ok := f.SumFloat("qty")
		require.False(t, ok)
	})

	t.Run("empty frame reports no value", func(t *testing.T) {
		t.Parallel()

		f := MustNew(Floats("qty"))
		_, ok := f.SumFloat("qty")
		require.False(t, ok)
	})
}

func TestPublicStats_Dataset_FillNullStrings(t *testing.T) {
	t.Parallel()

	f := MustNew(
		NullableStrings("section", ptr("Construction"), nil),
		Floats("count", 1, 2),
	)
	got := f.FillNullStrings("section", "NAF inconnu")

	col, ok := got.Column("section")
	require.True(t, ok)
	require.Equal(t, "Construction", col.Str(0))
	require.Equal(t, "NAF inconnu", col.Str(1))
	require.False(t, col.IsNull(1))

	// original frame untouched
	orig, _ := f.Column("section")
	require.True(t, orig.IsNull(1))
}

func TestPublicStats_Dataset_SortByTime(t *testing.T) {
	t.Parallel()

	f := MustNew(
		Times("week", day(2023, 3, 6), day(2023, 1, 2), day(2023, 2, 6)),
		Floats("qty", 3, 1, 2),
	)
	got := f.SortByTime("week")

	col, _ := got.Column("qty")
	require.Equal(t, []float64{1, 2, 3}, []float64{col.Float(0), col.Float(1), col.Float(2)})
}

func ptr[T any](v T) *T { return &v }
