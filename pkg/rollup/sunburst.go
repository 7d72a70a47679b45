package rollup

import (
	"fmt"

	"github.com/trackwaste/publicstats/pkg/chart"
	"github.com/trackwaste/publicstats/pkg/dataset"
	"github.com/trackwaste/publicstats/pkg/stats"
)

const (
	sunburstRecoveredColor      = "rgb(102, 103, 61, 1)"
	sunburstEliminatedColor     = "rgb(94, 42, 43, 1)"
	sunburstRecoveredLeafColor  = "rgb(102, 103, 61, 0.7)"
	sunburstEliminatedLeafColor = "rgb(94, 42, 43, 0.7)"

	// Long-tail codes below these shares of their branch total collapse
	// into a single "Autre" slice, so the figure stays readable.
	recoveredOtherShare  = 0.12
	eliminatedOtherShare = 0.21
)

// Sunburst rolls weekly processed quantities into the two-ring sunburst:
// inner ring recovered vs eliminated, outer ring the processing-operation
// codes, with the long tail of each branch collapsed into an "Autre" slice.
// descriptions maps operation codes to their display description.
func Sunburst(f *dataset.Frame, descriptions map[string]string, period dataset.Period) (chart.Figure, error) {
	f = f.FilterPeriod("semaine", period).Filter(func(r dataset.Row) bool {
		return !r.IsNull("code_operation") && r.Str("code_operation") != ""
	})

	byCode, err := f.GroupBy([]string{"code_operation"},
		dataset.Agg{Col: "type_operation", Op: dataset.MaxAgg},
		dataset.Agg{Col: "quantite_traitee", Op: dataset.SumAgg},
	)
	if err != nil {
		return chart.Figure{}, fmt.Errorf("failed to aggregate operation codes: %w", err)
	}

	recovered := byCode.Filter(func(r dataset.Row) bool {
		return r.Str("type_operation") == stats.OperationRecovered
	})
	eliminated := byCode.Filter(func(r dataset.Row) bool {
		return r.Str("type_operation") != stats.OperationRecovered
	})

	totalRecovered, _ := recovered.SumFloat("quantite_traitee")
	totalEliminated, _ := eliminated.SumFloat("quantite_traitee")

	otherCodes := map[string]bool{}
	otherRecovered := bucketLongTail(recovered, totalRecovered, recoveredOtherShare, otherCodes)
	otherEliminated := bucketLongTail(eliminated, totalEliminated, eliminatedOtherShare, otherCodes)

	kept := byCode.Filter(func(r dataset.Row) bool {
		return !otherCodes[r.Str("code_operation")]
	}).SortByFloat("quantite_traitee", true)

	ids := []string{stats.OperationRecovered, stats.OperationEliminated}
	labels := []string{stats.OperationRecovered, stats.OperationEliminated}
	parents := []string{"", ""}
	values := []float64{totalRecovered, totalEliminated}
	colors := []string{sunburstRecoveredColor, sunburstEliminatedColor}
	hovers := []string{
		fmt.Sprintf("<b>%st</b> valorisées", chart.FormatNumber(totalRecovered, 0)),
		fmt.Sprintf("<b>%st</b> éliminées", chart.FormatNumber(totalEliminated, 0)),
	}

	for i := 0; i < kept.Len(); i++ {
		r := kept.Row(i)
		code := r.Str("code_operation")
		qty := r.Float("quantite_traitee")

		ids = append(ids, code)
		labels = append(labels, code)
		parents = append(parents, r.Str("type_operation"))
		values = append(values, qty)
		if r.Str("type_operation") == stats.OperationRecovered {
			colors = append(colors, sunburstRecoveredLeafColor)
		} else {
			colors = append(colors, sunburstEliminatedLeafColor)
		}
		description, ok := descriptions[code]
		if !ok {
			description = "Autre opération de traitement"
		}
		hovers = append(hovers, fmt.Sprintf("%s : %s<br><b>%st</b> traitées", code, description, chart.FormatNumber(qty, 0)))
	}

	if otherRecovered > 0 {
		ids = append(ids, "Autres opérations de valorisation")
		labels = append(labels, "Autre")
		parents = append(parents, stats.OperationRecovered)
		values = append(values, otherRecovered)
		colors = append(colors, sunburstRecoveredLeafColor)
		hovers = append(hovers, fmt.Sprintf("Autres opérations de traitement<br><b>%st</b> traitées", chart.FormatNumber(otherRecovered, 0)))
	}
	if otherEliminated > 0 {
		ids = append(ids, "Autres opérations d'élimination")
		labels = append(labels, "Autre")
		parents = append(parents, stats.OperationEliminated)
		values = append(values, otherEliminated)
		colors = append(colors, sunburstEliminatedLeafColor)
		hovers = append(hovers, fmt.Sprintf("Autres opérations de traitement<br><b>%st</b> traitées", chart.FormatNumber(otherEliminated, 0)))
	}

	return chart.Sunburst(ids, labels, parents, values, hovers, colors), nil
}

// bucketLongTail records the codes of branch whose share of branchTotal is at
// or below share, and returns their summed quantity.
func bucketLongTail(branch *dataset.Frame, branchTotal, share float64, otherCodes map[string]bool) float64 {
	if branchTotal <= 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < branch.Len(); i++ {
		r := branch.Row(i)
		qty := r.Float("quantite_traitee")
		if qty/branchTotal <= share {
			otherCodes[r.Str("code_operation")] = true
			sum += qty
		}
	}
	return sum
}
