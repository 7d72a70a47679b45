package rollup

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/trackwaste/publicstats/pkg/dataset"
	"github.com/trackwaste/publicstats/pkg/stats"
)

func nafFrame() *dataset.Frame {
	null := (*string)(nil)
	sec := func(s string) *string { return &s }
	return dataset.MustNew(
		dataset.Ints("annee", 2023, 2023, 2023, 2022),
		dataset.Floats("nombre_etablissements", 10, 5, 3, 99),
		dataset.NullableStrings("code_section", sec("F"), sec("F"), null, sec("F")),
		dataset.NullableStrings("libelle_section", sec("Construction"), sec("Construction"), null, sec("Construction")),
		dataset.NullableStrings("code_division", sec("43"), sec("41"), null, sec("43")),
		dataset.NullableStrings("libelle_division", sec("Travaux spécialisés"), sec("Construction de bâtiments"), null, sec("Travaux spécialisés")),
		dataset.NullableStrings("code_groupe", sec("43.2"), sec("41.2"), null, sec("43.2")),
		dataset.NullableStrings("libelle_groupe", sec("Installation électrique"), sec("Construction de bâtiments résidentiels"), null, sec("Installation électrique")),
		dataset.NullableStrings("code_classe", sec("43.21"), sec("41.20"), null, sec("43.21")),
		dataset.NullableStrings("libelle_classe", sec("Installation électrique"), sec("Construction de bâtiments résidentiels"), null, sec("Installation électrique")),
		dataset.NullableStrings("code_sous_classe", sec("43.21A"), sec("41.20A"), null, sec("43.21A")),
		dataset.NullableStrings("libelle_sous_classe", sec("Travaux d'installation électrique"), sec("Construction de maisons individuelles"), null, sec("Construction de maisons individuelles")),
	)
}

func TestPublicStats_Rollup_Treemap(t *testing.T) {
	t.Parallel()

	fig, err := Treemap(nafFrame(), 2023, TreemapEstablishments)
	require.NoError(t, err)
	require.Len(t, fig.Data, 1)
	tr := fig.Data[0]

	t.Run("root comes first and carries the year total", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, "Tous les établissements", tr.IDs[0])
		require.Equal(t, "", tr.Parents[0])
		require.Equal(t, 18.0, tr.Values[0], "2022 rows must be excluded")
	})

	t.Run("null categories land under the sentinel", func(t *testing.T) {
		t.Parallel()
		var found bool
		for i, id := range tr.IDs {
			if id == "Tous les établissements#NAF inconnu" {
				found = true
				require.Equal(t, 3.0, tr.Values[i])
				require.Equal(t, "rgba(183, 21, 64, 1)", tr.MarkerColors[i])
				require.Contains(t, tr.HoverText[i], "code NAF inconnu")
			}
		}
		require.True(t, found)
	})

	t.Run("every parent id exists and precedes its children", func(t *testing.T) {
		t.Parallel()
		seen := map[string]bool{}
		for i, id := range tr.IDs {
			if p := tr.Parents[i]; p != "" {
				require.True(t, seen[p], "parent %q of %q not yet emitted", p, id)
			}
			seen[id] = true
		}
	})

	t.Run("children sum to their parent", func(t *testing.T) {
		t.Parallel()
		childSums := map[string]float64{}
		byID := map[string]float64{}
		for i, id := range tr.IDs {
			byID[id] = tr.Values[i]
			if p := tr.Parents[i]; p != "" {
				childSums[p] += tr.Values[i]
			}
		}
		for parent, sum := range childSums {
			require.InDelta(t, byID[parent], sum, 1e-9, "parent %q", parent)
		}
	})

	t.Run("ids are hierarchy paths", func(t *testing.T) {
		t.Parallel()
		for i, id := range tr.IDs {
			if tr.Parents[i] == "" {
				continue
			}
			require.Equal(t, tr.Parents[i], id[:strings.LastIndex(id, "#")])
		}
	})
}

func TestPublicStats_Rollup_Sunburst(t *testing.T) {
	t.Parallel()

	wk := time.Date(2023, 3, 6, 0, 0, 0, 0, time.UTC)
	f := dataset.MustNew(
		dataset.Times("semaine", wk, wk, wk, wk, wk),
		dataset.Strings("code_operation", "R1", "R5", "R12", "D10", "D5"),
		dataset.Strings("type_operation",
			stats.OperationRecovered, stats.OperationRecovered, stats.OperationRecovered,
			stats.OperationEliminated, stats.OperationEliminated),
		dataset.Floats("quantite_traitee", 80, 15, 5, 70, 30),
	)
	descriptions := map[string]string{"R1": "Utilisation comme combustible", "D10": "Incinération à terre"}

	fig, err := Sunburst(f, descriptions, dataset.PeriodForYear(2023))
	require.NoError(t, err)
	tr := fig.Data[0]

	byID := map[string]float64{}
	parent := map[string]string{}
	for i, id := range tr.IDs {
		byID[id] = tr.Values[i]
		parent[id] = tr.Parents[i]
	}

	t.Run("branch roots carry branch totals", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, 100.0, byID[stats.OperationRecovered])
		require.Equal(t, 100.0, byID[stats.OperationEliminated])
	})

	t.Run("long tail collapses into Autre", func(t *testing.T) {
		t.Parallel()
		// R5 (15%) and R12 (5%): only R12 is at or below the 12% share.
		require.NotContains(t, byID, "R12")
		require.Contains(t, byID, "R5")
		require.Equal(t, 5.0, byID["Autres opérations de valorisation"])
		// D5 is 30% of the eliminated branch, above the 21% share.
		require.Contains(t, byID, "D5")
		require.NotContains(t, byID, "Autres opérations d'élimination")
	})

	t.Run("children sum to branch totals", func(t *testing.T) {
		t.Parallel()
		sums := map[string]float64{}
		for id, p := range parent {
			if p != "" {
				sums[p] += byID[id]
			}
		}
		require.InDelta(t, 100.0, sums[stats.OperationRecovered], 1e-9)
		require.InDelta(t, 100.0, sums[stats.OperationEliminated], 1e-9)
	})

	t.Run("hover uses the description when known", func(t *testing.T) {
		t.Parallel()
		var r1, d5 string
		for i, id := range tr.IDs {
			switch id {
			case "R1":
				r1 = tr.HoverText[i]
			case "D5":
				d5 = tr.HoverText[i]
			}
		}
		require.Contains(t, r1, "Utilisation comme combustible")
		require.Contains(t, d5, "Autre opération de traitement")
	})

	t.Run("rows outside the period are ignored", func(t *testing.T) {
		t.Parallel()
		fig, err := Sunburst(f, nil, dataset.PeriodForYear(2021))
		require.NoError(t, err)
		require.Equal(t, 0.0, fig.Data[0].Values[0])
		require.Equal(t, 0.0, fig.Data[0].Values[1])
	})
}
