// Package rollup builds the hierarchical figures of the yearly statistics:
// the NAF establishment treemap and the processing-operation sunburst. Both
// emit additive hierarchies (branchvalues "total"), so every parent value is
// the exact sum of its children.
package rollup

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/trackwaste/publicstats/pkg/chart"
	"github.com/trackwaste/publicstats/pkg/dataset"
)

// nafLevels lists the NAF hierarchy levels finest first. Input frames carry a
// code_<level> and libelle_<level> column per level.
var nafLevels = []string{"sous_classe", "classe", "groupe", "division", "section"}

const (
	treemapRoot = "Tous les établissements"
	nafUnknown  = "NAF inconnu"
	pathSep     = "#"
)

// sectionColors maps each NAF section label to its fixed tile color, so a
// section keeps its color from one year to the next.
var sectionColors = map[string]string{
	"Activités de services administratifs et de soutien": "rgba(97, 49, 107, 1)",
	"Arts, spectacles et activités récréatives":          "rgba(112, 111, 211, 1)",
	"Activités financières et d'assurance":               "rgba(247, 241, 227, 1)",
	"Hébergement et restauration":                        "rgba(52, 172, 224, 1)",
	"Santé humaine et action sociale":                    "rgba(51, 217, 178, 1)",
	"Enseignement":                                       "rgba(44, 44, 84, 1)",
	"Construction":                                       "rgba(71, 71, 135, 1)",
	"Transports et entreposage":                          "rgba(113, 87, 87, 1)",
	"Autres activités de services":                       "rgba(255, 121, 63, 1)",
	"Activités des ménages en tant qu'employeurs ; activités indifférenciées des ménages en tant que producteurs de biens et services pour usage propre": "rgba(33, 140, 116, 1)",
	"Information et communication":                        "rgba(255, 82, 82, 1)",
	"Industrie manufacturière":                            "rgba(34, 112, 147, 1)",
	"Activités spécialisées, scientifiques et techniques": "rgba(209, 204, 192, 1)",
	"Administration publique":                             "rgba(255, 177, 66, 1)",
	"Production et distribution d'eau ; assainissement, gestion des déchets et dépollution": "rgba(255, 218, 121, 1)",
	"Commerce ; réparation d'automobiles et de motocycles":                                  "rgba(179, 57, 57, 1)",
	"Activités immobilières":                                                                "rgba(100, 98, 93, 1)",
	"Industries extractives":                                                                "rgba(204, 142, 53, 1)",
	"Production et distribution d'électricité, de gaz, de vapeur et d'air conditionné":      "rgba(204, 174, 98, 1)",
	"Activités extra-territoriales":                                                         "rgba(205, 97, 51, 1)",
	"Agriculture, sylviculture et pêche":                                                    "rgba(77, 52, 42, 1)",
	nafUnknown: "rgba(183, 21, 64, 1)",
}

// TreemapMetric selects which statistic a NAF treemap aggregates.
type TreemapMetric int

const (
	// TreemapEstablishments counts registered establishments per category.
	TreemapEstablishments TreemapMetric = iota
	// TreemapQuantity sums produced waste tonnage per category.
	TreemapQuantity
)

func (m TreemapMetric) statColumn() string {
	if m == TreemapQuantity {
		return "quantite_traitee"
	}
	return "nombre_etablissements"
}

// Treemap rolls per-establishment NAF rows for one year into the treemap
// figure. Rows with a null NAF code or label land under the "NAF inconnu"
// sentinel instead of being dropped, so the root total always matches the
// sum of the input.
func Treemap(f *dataset.Frame, year int, metric TreemapMetric) (chart.Figure, error) {
	statCol := metric.statColumn()

	f = f.Filter(func(r dataset.Row) bool {
		return !r.IsNull("annee") && r.Int("annee") == int64(year)
	})
	for _, lvl := range nafLevels {
		f = f.FillNullStrings("code_"+lvl, nafUnknown)
		f = f.FillNullStrings("libelle_"+lvl, nafUnknown)
	}

	total, _ := f.SumFloat(statCol)

	unit := ""
	if metric == TreemapQuantity {
		unit = "t"
	}
	rootLabel := fmt.Sprintf("%s - <b>%.2fk%s</b>", treemapRoot, total/1000, unit)

	ids := []string{treemapRoot}
	labels := []string{rootLabel}
	parents := []string{""}
	values := []float64{total}
	hovers := []string{rootLabel + "<extra></extra>"}
	colors := []string{"rgba(238, 238, 238, 0)"}

	// Coarsest level first so parents precede children in the payload.
	for i := len(nafLevels) - 1; i >= 0; i-- {
		lvl := nafLevels[i]

		aggs := []dataset.Agg{
			{Col: statCol, Op: dataset.SumAgg, As: "value"},
			{Col: "libelle_" + lvl, Op: dataset.MaxAgg},
		}
		for j := i + 1; j < len(nafLevels); j++ {
			aggs = append(aggs, dataset.Agg{Col: "libelle_" + nafLevels[j], Op: dataset.MaxAgg})
		}
		g, err := f.GroupBy([]string{"code_" + lvl}, aggs...)
		if err != nil {
			return chart.Figure{}, fmt.Errorf("failed to aggregate naf level %s: %w", lvl, err)
		}

		for ri := 0; ri < g.Len(); ri++ {
			r := g.Row(ri)
			value := r.Float("value")
			libelle := r.Str("libelle_" + lvl)

			segments := []string{treemapRoot}
			for j := len(nafLevels) - 1; j >= i; j-- {
				segments = append(segments, r.Str("libelle_"+nafLevels[j]))
			}

			ids = append(ids, strings.Join(segments, pathSep))
			parents = append(parents, strings.Join(segments[:len(segments)-1], pathSep))
			values = append(values, value)
			labels = append(labels, tileLabel(libelle, value, unit))
			hovers = append(hovers, tileHover(metric, lvl, r.Str("code_"+lvl), libelle, value, total))
			colors = append(colors, sectionColors[r.Str("libelle_section")])
		}
	}

	return chart.Treemap(ids, labels, parents, values, hovers, colors), nil
}

func tileLabel(libelle string, value float64, unit string) string {
	formatted := chart.FormatNumber(value, 1)
	if value > 1000 {
		formatted = fmt.Sprintf("%.0fk", value/1000)
	}
	return fmt.Sprintf("%s - <b>%s%s</b>", chart.BreakLongLine(libelle, 14), formatted, unit)
}

func tileHover(metric TreemapMetric, lvl, code, libelle string, value, total float64) string {
	pct := math.Round(10000*value/total) / 100
	pctStr := strconv.FormatFloat(pct, 'f', -1, 64)
	levelLabel := strings.ReplaceAll(lvl, "_", " ")

	var b strings.Builder
	b.WriteString("<b>")
	b.WriteString(chart.FormatNumber(value, 0))
	if metric == TreemapQuantity {
		if code == nafUnknown {
			b.WriteString(" tonnes</b> produites par des établissements ayant un code NAF inconnu ")
		} else {
			fmt.Fprintf(&b, " tonnes</b> produites par des établissements inscrits dans la %s NAF %s - <i>%s</i>", levelLabel, code, libelle)
		}
		fmt.Fprintf(&b, "<br>soit <b>%s%%</b> de la quantité totale produite.<extra></extra>", pctStr)
		return b.String()
	}
	if code == nafUnknown {
		b.WriteString("</b> établissements inscrits ayant un code NAF inconnu ")
	} else {
		fmt.Fprintf(&b, "</b> établissements inscrits dans la %s NAF %s - <i>%s</i>", levelLabel, code, libelle)
	}
	fmt.Fprintf(&b, "<br>soit <b>%s%%</b> du total des établissements inscrits.<extra></extra>", pctStr)
	return b.String()
}
