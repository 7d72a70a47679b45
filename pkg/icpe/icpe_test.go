package icpe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/trackwaste/publicstats/pkg/dataset"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func TestPublicStats_Icpe_Policy(t *testing.T) {
	t.Parallel()

	storage, err := PolicyFor("2760-1")
	require.NoError(t, err)
	require.True(t, storage.Cumulative)
	require.Equal(t, "cumul_quantite_traitee", storage.MetricColumn)

	incineration, err := PolicyFor("2770")
	require.NoError(t, err)
	require.False(t, incineration.Cumulative)
	require.Equal(t, "moyenne_quantite_journaliere_traitee", incineration.MetricColumn)

	_, err = PolicyFor("9999")
	require.Error(t, err)
}

func TestPublicStats_Icpe_Truncate(t *testing.T) {
	t.Parallel()

	// 2023-03-15 is a Wednesday.
	require.Equal(t, day(2023, 3, 13), TruncateWeek(day(2023, 3, 15)))
	require.Equal(t, day(2023, 3, 13), TruncateWeek(day(2023, 3, 13)), "monday maps to itself")
	require.Equal(t, day(2023, 3, 13), TruncateWeek(day(2023, 3, 19)), "sunday belongs to the preceding monday")
	require.Equal(t, day(2023, 3, 1), TruncateMonth(day(2023, 3, 31)))
}

func TestPublicStats_Icpe_Bucket(t *testing.T) {
	t.Parallel()

	f := dataset.MustNew(
		dataset.Times("day_of_processing",
			day(2023, 1, 10), day(2023, 1, 12), day(2023, 2, 3), day(2023, 3, 1), day(2022, 12, 30)),
		dataset.NullableFloats("quantite_traitee", ptr(10.0), ptr(5.0), nil, ptr(20.0), ptr(99.0)),
	)
	period := dataset.PeriodForYear(2023)

	t.Run("monthly buckets carry a running cumulative sum", func(t *testing.T) {
		t.Parallel()

		buckets, err := Bucket(f, "day_of_processing", "quantite_traitee", Monthly, period)
		require.NoError(t, err)
		require.Equal(t, 3, buckets.Len(), "prior-year rows are excluded, absent months are not synthesized")

		starts, _ := buckets.Column("day_of_processing")
		require.Equal(t, day(2023, 1, 1), starts.Time(0))
		require.Equal(t, day(2023, 2, 1), starts.Time(1))
		require.Equal(t, day(2023, 3, 1), starts.Time(2))

		sums, _ := buckets.Column("quantite_traitee")
		require.Equal(t, 15.0, sums.Float(0))
		require.Equal(t, 0.0, sums.Float(1), "null quantities count as zero")

		cum, _ := buckets.Column("quantite_traitee_cumulee")
		require.Equal(t, 15.0, cum.Float(0))
		require.Equal(t, 15.0, cum.Float(1))
		require.Equal(t, 35.0, cum.Float(2))

		total, _ := f.FilterPeriod("day_of_processing", period).SumFloat("quantite_traitee")
		require.Equal(t, total, cum.Float(2), "last cumulative point equals the annual sum")
	})

	t.Run("weekly buckets truncate to monday", func(t *testing.T) {
		t.Parallel()

		buckets, err := Bucket(f, "day_of_processing", "quantite_traitee", Weekly, period)
		require.NoError(t, err)
		starts, _ := buckets.Column("day_of_processing")
		require.Equal(t, day(2023, 1, 9), starts.Time(0), "tuesday and thursday fold into the same week")
		sums, _ := buckets.Column("quantite_traitee")
		require.Equal(t, 15.0, sums.Float(0))
	})
}

func TestPublicStats_Icpe_ConsumptionRate(t *testing.T) {
	t.Parallel()

	require.Nil(t, ConsumptionRate(250, nil), "no declared cap means no rate")
	require.Nil(t, ConsumptionRate(250, ptr(0.0)), "zero capacity never divides")
	rate := ConsumptionRate(250, ptr(1000.0))
	require.NotNil(t, rate)
	require.Equal(t, 0.25, *rate)
}

func TestPublicStats_Icpe_StrictSum(t *testing.T) {
	t.Parallel()

	require.Nil(t, StrictSum(nil))
	require.Nil(t, StrictSum([]*float64{ptr(10.0), nil}), "any null member makes the aggregate null")
	sum := StrictSum([]*float64{ptr(10.0), ptr(5.0)})
	require.NotNil(t, sum)
	require.Equal(t, 15.0, *sum)
}

func installationsFixture() (*dataset.Frame, *dataset.Frame) {
	sites := dataset.MustNew(
		dataset.Strings("code_aiot", "A1", "A2", "B1"),
		dataset.Strings("rubrique", "2760-1", "2760-1", "2770"),
		dataset.NullableFloats("quantite_autorisee", ptr(1000.0), nil, ptr(20.0)),
		dataset.Strings("raison_sociale", "Stockage Nord", "Stockage Sud", "Incinération Est"),
	)
	events := dataset.MustNew(
		dataset.Strings("code_aiot", "A1", "A1", "A2", "B1", "B1"),
		dataset.Strings("rubrique", "2760-1", "2760-1", "2760-1", "2770", "2770"),
		dataset.NullableFloats("quantite_autorisee", ptr(1000.0), ptr(1000.0), nil, ptr(20.0), ptr(20.0)),
		dataset.Times("day_of_processing",
			day(2023, 1, 10), day(2023, 4, 2), day(2023, 2, 1), day(2023, 5, 1), day(2023, 5, 2)),
		dataset.Floats("quantite_traitee", 100, 150, 50, 8, 12),
	)
	return sites, events
}

func TestPublicStats_Icpe_Installations(t *testing.T) {
	t.Parallel()

	sites, events := installationsFixture()
	period := dataset.PeriodForYear(2023)

	t.Run("cumulative rubrique", func(t *testing.T) {
		t.Parallel()

		rows, err := Installations(sites, events, "2760-1", period)
		require.NoError(t, err)
		require.Equal(t, 2, rows.Len())

		r := rows.Row(0)
		require.Equal(t, "A1", r.Str("code_aiot"))
		require.Equal(t, 250.0, r.Float("cumul_quantite_traitee"))
		rate := r.FloatOrNil("taux_consommation")
		require.NotNil(t, rate)
		require.Equal(t, 0.25, *rate)
		require.Equal(t, "Stockage Nord", r.Str("raison_sociale"))
		require.Contains(t, r.Str("graph"), "Quantité traitée cumulée")
		require.Contains(t, r.Str("graph"), "Quantité maximale autorisée")

		r = rows.Row(1)
		require.Equal(t, 50.0, r.Float("cumul_quantite_traitee"))
		require.Nil(t, r.FloatOrNil("taux_consommation"), "no declared capacity, no rate")
		require.NotContains(t, r.Str("graph"), "Quantité maximale autorisée")
	})

	t.Run("mean daily rubrique", func(t *testing.T) {
		t.Parallel()

		rows, err := Installations(sites, events, "2770", period)
		require.NoError(t, err)
		require.Equal(t, 1, rows.Len())
		r := rows.Row(0)
		require.Equal(t, 10.0, r.Float("moyenne_quantite_journaliere_traitee"))
		rate := r.FloatOrNil("taux_consommation")
		require.NotNil(t, rate)
		require.Equal(t, 0.5, *rate)
		require.Contains(t, r.Str("graph"), "Quantité journalière traitée")
	})

	t.Run("duplicate installation code fails", func(t *testing.T) {
		t.Parallel()

		dup := dataset.MustNew(
			dataset.Strings("code_aiot", "A1", "A1"),
			dataset.Strings("rubrique", "2760-1", "2760-1"),
			dataset.NullableFloats("quantite_autorisee", ptr(1.0), ptr(2.0)),
		)
		_, err := Installations(dup, events, "2760-1", period)
		require.Error(t, err)
	})
}

func TestPublicStats_Icpe_Regional(t *testing.T) {
	t.Parallel()

	period := dataset.PeriodForYear(2023)
	events := dataset.MustNew(
		dataset.Strings("code_departement_insee", "75", "75", "13"),
		dataset.Strings("code_aiot", "A1", "A2", "B1"),
		dataset.Strings("rubrique", "2760-1", "2760-1", "2760-1"),
		dataset.NullableFloats("quantite_autorisee", ptr(1000.0), nil, ptr(500.0)),
		dataset.Times("day_of_processing", day(2023, 1, 10), day(2023, 2, 1), day(2023, 3, 1)),
		dataset.Floats("quantite_traitee", 100, 50, 25),
	)

	t.Run("mixed null capacity aggregates to null", func(t *testing.T) {
		t.Parallel()

		rows, err := Regional(events, "code_departement_insee", "2760-1", period)
		require.NoError(t, err)
		require.Equal(t, 2, rows.Len())

		r := rows.Row(0)
		require.Equal(t, "75", r.Str("code_departement_insee"))
		require.Nil(t, r.FloatOrNil("quantite_autorisee"))
		require.Nil(t, r.FloatOrNil("taux_consommation"))
		require.Equal(t, 150.0, r.Float("cumul_quantite_traitee"))
		require.Equal(t, 2.0, r.Float("nombre_installations"))

		r = rows.Row(1)
		cap := r.FloatOrNil("quantite_autorisee")
		require.NotNil(t, cap)
		require.Equal(t, 500.0, *cap)
		rate := r.FloatOrNil("taux_consommation")
		require.NotNil(t, rate)
		require.Equal(t, 0.05, *rate)
	})

	t.Run("national rollup is a single keyless row", func(t *testing.T) {
		t.Parallel()

		rows, err := Regional(events, "", "2760-1", period)
		require.NoError(t, err)
		require.Equal(t, 1, rows.Len())
		require.False(t, rows.HasColumn("code_departement_insee"))
		require.Equal(t, 175.0, rows.Row(0).Float("cumul_quantite_traitee"))
		require.Equal(t, 3.0, rows.Row(0).Float("nombre_installations"))
	})
}

func TestPublicStats_Icpe_AllRubriques(t *testing.T) {
	t.Parallel()

	sites, events := installationsFixture()
	period := dataset.PeriodForYear(2023)

	rows, err := AllRubriques(func(rubrique string) (*dataset.Frame, error) {
		return Installations(sites, events, rubrique, period)
	})
	require.NoError(t, err)
	require.Equal(t, 3, rows.Len())
	require.True(t, rows.HasColumn("cumul_quantite_traitee"))
	require.True(t, rows.HasColumn("moyenne_quantite_journaliere_traitee"))

	// Sparse columns: the mean-daily metric is null on cumulative rows.
	require.Nil(t, rows.Row(0).FloatOrNil("moyenne_quantite_journaliere_traitee"))
	require.NotNil(t, rows.Row(2).FloatOrNil("moyenne_quantite_journaliere_traitee"))
}
