package icpe

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/trackwaste/publicstats/pkg/chart"
	"github.com/trackwaste/publicstats/pkg/dataset"
)

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

func frenchMonth(t time.Time) string { return frenchMonths[int(t.Month())-1] }

// Graph builds the per-entity figure for one rubrique: a daily scatter for
// mean-daily rubriques, monthly bars with a running-cumulative line for
// cumulative ones. events must already be restricted to the entity.
func Graph(events *dataset.Frame, policy Policy, capacity *float64, period dataset.Period) (chart.Figure, error) {
	if policy.Cumulative {
		return cumulativeGraph(events, policy, capacity, period)
	}
	return dailyGraph(events, policy, capacity, period)
}

// GraphJSON is Graph serialized, the form persisted on computation rows.
func GraphJSON(events *dataset.Frame, policy Policy, capacity *float64, period dataset.Period) (string, error) {
	fig, err := Graph(events, policy, capacity, period)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(fig)
	if err != nil {
		return "", fmt.Errorf("failed to serialize graph: %w", err)
	}
	return string(raw), nil
}

func dailyGraph(events *dataset.Frame, policy Policy, capacity *float64, period dataset.Period) (chart.Figure, error) {
	buckets, err := Bucket(events, "day_of_processing", "quantite_traitee", Daily, period)
	if err != nil {
		return chart.Figure{}, err
	}

	n := buckets.Len()
	x := make([]string, 0, n)
	y := make([]*float64, 0, n)
	hovers := make([]string, 0, n)
	for i := 0; i < n; i++ {
		r := buckets.Row(i)
		at := r.Time("day_of_processing")
		v := r.Float("quantite_traitee")
		x = append(x, at.Format("2006-01-02"))
		y = append(y, &v)
		hovers = append(hovers, fmt.Sprintf("Le %s : <b>%.2ft</b> traitées", at.Format("02-01-2006"), v))
	}

	fig := chart.Figure{
		Data: []chart.Trace{{
			Type:        "scatter",
			Name:        "Quantité journalière traitée",
			X:           x,
			Y:           y,
			HoverText:   hovers,
			HoverInfo:   "text",
			MarkerColor: "#8D533E",
		}},
		Layout: chart.Layout{YAxisTitle: "tonnes"},
	}
	addCapacityLine(&fig, policy, capacity)
	return fig, nil
}

func cumulativeGraph(events *dataset.Frame, policy Policy, capacity *float64, period dataset.Period) (chart.Figure, error) {
	buckets, err := Bucket(events, "day_of_processing", "quantite_traitee", Monthly, period)
	if err != nil {
		return chart.Figure{}, err
	}

	n := buckets.Len()
	x := make([]string, 0, n)
	monthly := make([]*float64, 0, n)
	cumulative := make([]*float64, 0, n)
	monthlyHovers := make([]string, 0, n)
	cumulativeHovers := make([]string, 0, n)
	for i := 0; i < n; i++ {
		r := buckets.Row(i)
		at := r.Time("day_of_processing")
		m := r.Float("quantite_traitee")
		c := r.Float("quantite_traitee_cumulee")
		x = append(x, at.Format("2006-01-02"))
		monthly = append(monthly, &m)
		cumulative = append(cumulative, &c)
		monthlyHovers = append(monthlyHovers, fmt.Sprintf("En %s : <b>%.2ft</b> traitées", frenchMonth(at), m))
		cumulativeHovers = append(cumulativeHovers,
			fmt.Sprintf("En %s : <b>%.2ft</b> traitées en cumulé sur l'année", frenchMonth(at), c))
	}

	fig := chart.Figure{
		Data: []chart.Trace{
			{
				Type:        "bar",
				Name:        "Quantité mensuelle traitée",
				X:           x,
				Y:           monthly,
				HoverText:   monthlyHovers,
				HoverInfo:   "text",
				MarkerColor: "#8D533E",
			},
			{
				Type:      "scatter",
				Mode:      "lines+text+markers",
				Name:      "Quantité traitée cumulée",
				X:         x,
				Y:         cumulative,
				HoverText: cumulativeHovers,
				HoverInfo: "text",
				LineColor: "#272747",
			},
		},
		Layout: chart.Layout{YAxisTitle: "tonnes"},
	}
	addCapacityLine(&fig, policy, capacity)
	return fig, nil
}

func addCapacityLine(fig *chart.Figure, policy Policy, capacity *float64) {
	if capacity == nil {
		return
	}
	label := fmt.Sprintf("Quantité maximale autorisée : <b>%.0f</b> %s", *capacity, policy.CapacityUnit)
	fig.Layout.Shapes = append(fig.Layout.Shapes, chart.CapacityLine(*capacity, label))
}
