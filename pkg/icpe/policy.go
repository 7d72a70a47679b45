// Package icpe computes throughput metrics for regulated waste-processing
// installations (ICPE) against their authorized capacities, at installation,
// department, region and national granularity.
package icpe

import "fmt"

// Rubriques lists the regulatory rubrique codes the pipeline computes, in
// publication order.
var Rubriques = []string{"2760-1", "2770", "2790"}

// Policy describes how one rubrique's throughput metric is aggregated.
// Storage rubriques (2760-1) consume an annual quantity, so their metric is
// the cumulative sum over the year; incineration and treatment rubriques
// (2770, 2790) are capped per day, so their metric is the mean daily
// quantity.
type Policy struct {
	Rubrique   string
	Cumulative bool

	// MetricColumn names the metric in result rows. Rows of different
	// rubriques are concatenated diagonally, so the two metrics keep
	// distinct columns.
	MetricColumn string

	// CapacityUnit labels the authorized capacity on graphs.
	CapacityUnit string
}

var policies = map[string]Policy{
	"2760-1": {
		Rubrique:     "2760-1",
		Cumulative:   true,
		MetricColumn: "cumul_quantite_traitee",
		CapacityUnit: "t/an",
	},
	"2770": {
		Rubrique:     "2770",
		MetricColumn: "moyenne_quantite_journaliere_traitee",
		CapacityUnit: "t/j",
	},
	"2790": {
		Rubrique:     "2790",
		MetricColumn: "moyenne_quantite_journaliere_traitee",
		CapacityUnit: "t/j",
	},
}

// PolicyFor returns the aggregation policy of a rubrique. An unknown
// rubrique is a configuration error and fails the build.
func PolicyFor(rubrique string) (Policy, error) {
	p, ok := policies[rubrique]
	if !ok {
		return Policy{}, fmt.Errorf("no aggregation policy for rubrique %q", rubrique)
	}
	return p, nil
}
