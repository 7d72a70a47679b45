package icpe

import (
	"fmt"

	"github.com/trackwaste/publicstats/pkg/dataset"
)

// siteAttributeColumns are the installation attributes carried onto each
// installation computation row when present in the source.
var siteAttributeColumns = []string{
	"siret", "raison_sociale", "adresse1", "adresse2", "code_postal",
	"commune", "latitude", "longitude", "unite",
}

// ConsumptionRate returns metric / capacity, or nil when no capacity is
// declared or the declared capacity is zero. A null capacity means "no cap",
// which is not the same thing as a zero rate.
func ConsumptionRate(metric float64, capacity *float64) *float64 {
	if capacity == nil || *capacity == 0 {
		return nil
	}
	rate := metric / *capacity
	return &rate
}

// StrictSum sums the values only when every one of them is non-null. Any
// null makes the result null: an aggregate capacity is only meaningful when
// all member installations declare one.
func StrictSum(vals []*float64) *float64 {
	sum := 0.0
	for _, v := range vals {
		if v == nil {
			return nil
		}
		sum += *v
	}
	if len(vals) == 0 {
		return nil
	}
	return &sum
}

// metricValue computes the policy metric of one entity from its
// period-filtered daily events: sum over the period for cumulative
// rubriques, mean of per-day sums otherwise. Null quantities count as zero.
func metricValue(events *dataset.Frame, policy Policy, period dataset.Period) (float64, error) {
	buckets, err := Bucket(events, "day_of_processing", "quantite_traitee", Daily, period)
	if err != nil {
		return 0, err
	}
	total, _ := buckets.SumFloat("quantite_traitee")
	if policy.Cumulative || buckets.Len() == 0 {
		return total, nil
	}
	return total / float64(buckets.Len()), nil
}

// Installations computes one row per regulated installation of a rubrique:
// authorized capacity, the policy metric, the consumption rate and the
// per-installation graph. Every installation declared for the rubrique gets
// a row, including ones with no processing event in the period. A duplicate
// installation code in the declarations fails the computation instead of
// silently duplicating rows.
func Installations(sites, events *dataset.Frame, rubrique string, period dataset.Period) (*dataset.Frame, error) {
	policy, err := PolicyFor(rubrique)
	if err != nil {
		return nil, err
	}

	sites = sites.Filter(func(r dataset.Row) bool { return r.Str("rubrique") == rubrique })
	events = events.Filter(func(r dataset.Row) bool { return r.Str("rubrique") == rubrique }).
		FilterPeriod("day_of_processing", period)

	codes := make([]string, 0, sites.Len())
	capacities := make([]*float64, 0, sites.Len())
	metrics := make([]float64, 0, sites.Len())
	rates := make([]*float64, 0, sites.Len())
	graphs := make([]string, 0, sites.Len())
	seen := map[string]bool{}

	for i := 0; i < sites.Len(); i++ {
		r := sites.Row(i)
		code := r.Str("code_aiot")
		if seen[code] {
			return nil, fmt.Errorf("installation %s declared twice for rubrique %s", code, rubrique)
		}
		seen[code] = true
		capacity := r.FloatOrNil("quantite_autorisee")

		siteEvents := events.Filter(func(r dataset.Row) bool { return r.Str("code_aiot") == code })
		metric, err := metricValue(siteEvents, policy, period)
		if err != nil {
			return nil, fmt.Errorf("failed to compute metric for installation %s: %w", code, err)
		}
		graph, err := GraphJSON(siteEvents, policy, capacity, period)
		if err != nil {
			return nil, fmt.Errorf("failed to build graph for installation %s: %w", code, err)
		}

		codes = append(codes, code)
		capacities = append(capacities, capacity)
		metrics = append(metrics, metric)
		rates = append(rates, ConsumptionRate(metric, capacity))
		graphs = append(graphs, graph)
	}

	ones := make([]float64, len(codes))
	for i := range ones {
		ones[i] = 1
	}
	rubriques := make([]string, len(codes))
	for i := range rubriques {
		rubriques[i] = rubrique
	}

	out, err := dataset.New(
		dataset.Strings("code_aiot", codes...),
		dataset.Strings("rubrique", rubriques...),
		dataset.NullableFloats("quantite_autorisee", capacities...),
		dataset.Floats(policy.MetricColumn, metrics...),
		dataset.NullableFloats("taux_consommation", rates...),
		dataset.Floats("nombre_installations", ones...),
		dataset.Strings("graph", graphs...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build installation rows: %w", err)
	}

	// Carry site attributes through a strict 1:1 left join so a duplicate
	// attribute row fails loudly.
	attrCols := []string{"code_aiot"}
	for _, c := range siteAttributeColumns {
		if sites.HasColumn(c) {
			attrCols = append(attrCols, c)
		}
	}
	attrs, err := sites.Select(attrCols...)
	if err != nil {
		return nil, fmt.Errorf("failed to select installation attributes: %w", err)
	}
	out, err = out.Join(attrs, []string{"code_aiot"}, dataset.LeftJoin, dataset.OneToOne)
	if err != nil {
		return nil, fmt.Errorf("failed to attach installation attributes: %w", err)
	}
	return out, nil
}

// Regional computes one row per geographic entity (department or region) of
// a rubrique, or a single national row when keyCol is empty. Aggregate
// capacity is the strict sum of member installation capacities and the
// installation count is the number of distinct installations.
func Regional(events *dataset.Frame, keyCol, rubrique string, period dataset.Period) (*dataset.Frame, error) {
	policy, err := PolicyFor(rubrique)
	if err != nil {
		return nil, err
	}

	events = events.Filter(func(r dataset.Row) bool { return r.Str("rubrique") == rubrique }).
		FilterPeriod("day_of_processing", period)

	keys := []string{}
	if keyCol != "" {
		seen := map[string]bool{}
		for i := 0; i < events.Len(); i++ {
			k := events.Row(i).Str(keyCol)
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	} else {
		keys = append(keys, "")
	}

	capacities := make([]*float64, 0, len(keys))
	metrics := make([]float64, 0, len(keys))
	rates := make([]*float64, 0, len(keys))
	counts := make([]float64, 0, len(keys))
	graphs := make([]string, 0, len(keys))

	for _, key := range keys {
		entityEvents := events
		if keyCol != "" {
			entityEvents = events.Filter(func(r dataset.Row) bool { return r.Str(keyCol) == key })
		}

		capacity, count := entityCapacity(entityEvents)
		metric, err := metricValue(entityEvents, policy, period)
		if err != nil {
			return nil, fmt.Errorf("failed to compute metric for %s %q: %w", keyCol, key, err)
		}
		graph, err := GraphJSON(entityEvents, policy, capacity, period)
		if err != nil {
			return nil, fmt.Errorf("failed to build graph for %s %q: %w", keyCol, key, err)
		}

		capacities = append(capacities, capacity)
		metrics = append(metrics, metric)
		rates = append(rates, ConsumptionRate(metric, capacity))
		counts = append(counts, float64(count))
		graphs = append(graphs, graph)
	}

	rubriques := make([]string, len(keys))
	for i := range rubriques {
		rubriques[i] = rubrique
	}

	cols := []*dataset.Series{}
	if keyCol != "" {
		cols = append(cols, dataset.Strings(keyCol, keys...))
	}
	cols = append(cols,
		dataset.Strings("rubrique", rubriques...),
		dataset.NullableFloats("quantite_autorisee", capacities...),
		dataset.Floats(policy.MetricColumn, metrics...),
		dataset.NullableFloats("taux_consommation", rates...),
		dataset.Floats("nombre_installations", counts...),
		dataset.Strings("graph", graphs...),
	)
	out, err := dataset.New(cols...)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s rows: %w", keyCol, err)
	}
	return out, nil
}

// entityCapacity strict-sums the per-installation capacities of an entity's
// events and counts its distinct installations. Each installation
// contributes its capacity once, regardless of how many events it has.
func entityCapacity(events *dataset.Frame) (*float64, int) {
	perSite := map[string]*float64{}
	order := []string{}
	for i := 0; i < events.Len(); i++ {
		r := events.Row(i)
		code := r.Str("code_aiot")
		if _, ok := perSite[code]; !ok {
			order = append(order, code)
		}
		if v := r.FloatOrNil("quantite_autorisee"); v != nil {
			perSite[code] = v
		} else if _, ok := perSite[code]; !ok {
			perSite[code] = nil
		}
	}
	vals := make([]*float64, 0, len(order))
	for _, code := range order {
		vals = append(vals, perSite[code])
	}
	return StrictSum(vals), len(order)
}

// AllRubriques runs compute for every known rubrique and stacks the results
// by schema union, so the two metric columns stay sparse but distinct.
func AllRubriques(compute func(rubrique string) (*dataset.Frame, error)) (*dataset.Frame, error) {
	frames := make([]*dataset.Frame, 0, len(Rubriques))
	for _, rubrique := range Rubriques {
		f, err := compute(rubrique)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	out, err := dataset.ConcatDiagonal(frames...)
	if err != nil {
		return nil, fmt.Errorf("failed to combine rubrique rows: %w", err)
	}
	return out, nil
}
