package chart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/trackwaste/publicstats/pkg/dataset"
)

func week(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPublicStats_Chart_FormatNumber(t *testing.T) {
	t.Parallel()

	cases := []struct {
		v         float64
		precision int
		want      string
	}{
		{1234567, 0, "1 234 567"},
		{12345.0, 2, "12 345"},
		{12345.678, 2, "12 345.68"},
		{999, 0, "999"},
		{0, 0, "0"},
		{-1234.5, 1, "-1 234.5"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FormatNumber(tc.v, tc.precision))
	}
}

func TestPublicStats_Chart_BreakLongLine(t *testing.T) {
	t.Parallel()

	require.Equal(t, "court", BreakLongLine("court", 20))
	broken := BreakLongLine("Collecte de déchets dangereux en grande quantité", 20)
	require.Contains(t, broken, "<br>")
	require.NotContains(t, broken, " <br>")
}

func TestPublicStats_Chart_WeeklyCreated(t *testing.T) {
	t.Parallel()

	f := dataset.MustNew(
		dataset.Times("semaine", week(2023, 1, 9), week(2023, 1, 2)),
		dataset.Floats("creations", 7, 3),
	)
	fig := WeeklyCreated(f, "semaine", "creations")

	require.Len(t, fig.Data, 1)
	tr := fig.Data[0]
	require.Equal(t, []string{"2023-01-02", "2023-01-09"}, tr.X, "points must come out week ascending")
	require.Equal(t, "", tr.Text[0])
	require.Equal(t, "7", tr.Text[1], "only the last point carries a label")
	require.Contains(t, tr.HoverText[0], "Semaine du 02/01 au 08/01")
	require.NotNil(t, fig.Layout.ShowLegend)
	require.False(t, *fig.Layout.ShowLegend)
}

func TestPublicStats_Chart_WeeklyScatter(t *testing.T) {
	t.Parallel()

	t.Run("skips columns absent from the frame", func(t *testing.T) {
		t.Parallel()

		f := dataset.MustNew(
			dataset.Times("semaine", week(2023, 1, 2)),
			dataset.Floats("creations_bordereaux", 4),
			dataset.Floats("traitements_bordereaux", 2),
		)
		fig := WeeklyScatter(f, "semaine", WeeklyBSFFConfigs, MetricCounts)
		require.Len(t, fig.Data, 2)
		require.Equal(t, "État initial", fig.Data[0].Name)
		require.Equal(t, "Traité", fig.Data[1].Name)
	})

	t.Run("quantity metric switches columns and labels", func(t *testing.T) {
		t.Parallel()

		f := dataset.MustNew(
			dataset.Times("semaine", week(2023, 1, 2)),
			dataset.Floats("quantite_tracee", 12.5),
		)
		fig := WeeklyScatter(f, "semaine", WeeklyBordereauConfigs, MetricQuantity)
		require.Len(t, fig.Data, 1)
		require.Equal(t, "Quantité initiale", fig.Data[0].Name)
		require.Contains(t, fig.Data[0].HoverText[0], "tonnes tracées")
		require.Equal(t, "Quantité (en tonnes)", fig.Layout.YAxisTitle)
	})

	t.Run("secondary traces start legend only", func(t *testing.T) {
		t.Parallel()

		f := dataset.MustNew(
			dataset.Times("semaine", week(2023, 1, 2)),
			dataset.Floats("envois", 1),
			dataset.Floats("traitements", 1),
			dataset.Floats("traitements_operations_non_finales", 1),
			dataset.Floats("traitements_operations_finales", 1),
		)
		fig := WeeklyScatter(f, "semaine", WeeklyBordereauConfigs, MetricCounts)
		require.Len(t, fig.Data, 4)
		visible := map[string]string{}
		for _, tr := range fig.Data {
			visible[tr.Name] = tr.Visible
		}
		require.Equal(t, "legendonly", visible["Pris en charge par le transporteur"])
		require.Equal(t, "", visible["Traité"])
		require.Equal(t, "legendonly", visible["Traité (traitement intermédiaire)"])
		require.Equal(t, "legendonly", visible["Traité (traitement final)"])
	})
}

func TestPublicStats_Chart_WeeklyQuantityProcessed(t *testing.T) {
	t.Parallel()

	period := dataset.PeriodForYear(2023)
	recovered := dataset.MustNew(
		dataset.Times("semaine", week(2023, 12, 25), week(2022, 12, 26)),
		dataset.Floats("quantite_traitee", 10, 99),
	)
	eliminated := dataset.MustNew(
		dataset.Times("semaine", week(2023, 12, 25)),
		dataset.Floats("quantite_traitee", 5),
	)

	fig := WeeklyQuantityProcessed(recovered, eliminated, "semaine", "quantite_traitee", period)
	require.Len(t, fig.Data, 2)
	require.Equal(t, "stack", fig.Layout.BarMode)

	rec := fig.Data[0]
	require.Equal(t, "Déchets valorisés", rec.Name)
	require.Len(t, rec.X, 1, "rows outside the period are dropped")
	require.Contains(t, rec.HoverText[0], "au 31/12", "last week of the year is clamped to the 31st")

	require.Equal(t, "Déchets éliminés", fig.Data[1].Name)
	require.Equal(t, "#5E2A2B", fig.Data[1].MarkerColor)
}

func TestPublicStats_Chart_CapacityLine(t *testing.T) {
	t.Parallel()

	s := CapacityLine(50000, "Capacité annuelle autorisée")
	require.Equal(t, 50000.0, s.Y)
	require.Equal(t, 50000.0, s.Y1)
	require.Equal(t, "dot", s.LineDash)
	require.Equal(t, "red", s.LineColor)
}
