package chart

import (
	"fmt"
	"time"

	"github.com/trackwaste/publicstats/pkg/dataset"
)

const dayFormat = "2006-01-02"

// WeeklyCreated builds the line figure for weekly created companies or user
// accounts. Only the last point carries an inline text label.
func WeeklyCreated(f *dataset.Frame, weekCol, statCol string) Figure {
	f = f.SortByTime(weekCol)

	n := f.Len()
	x := make([]string, 0, n)
	y := make([]*float64, 0, n)
	texts := make([]string, 0, n)
	hovers := make([]string, 0, n)
	for i := 0; i < n; i++ {
		r := f.Row(i)
		at := r.Time(weekCol)
		v := r.FloatOrNil(statCol)
		x = append(x, at.Format(dayFormat))
		y = append(y, v)
		text := ""
		if i == n-1 && v != nil {
			text = FormatNumber(*v, 0)
		}
		texts = append(texts, text)
		count := 0.0
		if v != nil {
			count = *v
		}
		hovers = append(hovers, fmt.Sprintf("Semaine du %s au %s<br><b>%s</b> créations",
			at.Format("02/01"), at.AddDate(0, 0, 6).Format("02/01"), FormatNumber(count, 0)))
	}

	showLegend := false
	return Figure{
		Data: []Trace{{
			Type:      "scatter",
			Mode:      "lines+markers+text",
			X:         x,
			Y:         y,
			Text:      texts,
			HoverText: hovers,
			HoverInfo: "text",
		}},
		Layout: Layout{XAxisTitle: "Semaine de création", ShowLegend: &showLegend},
	}
}

// LineConfig describes one trace of a weekly bordereau scatter figure: the
// counts and quantity columns it reads and the labels for each metric.
type LineConfig struct {
	CountsColumn   string
	QuantityColumn string
	CountsName     string
	CountsSuffix   string
	QuantityName   string
	QuantitySuffix string
	Color          string
	Visible        string
}

// Metric selects which side of a LineConfig a weekly scatter figure plots.
type Metric string

const (
	MetricCounts   Metric = "counts"
	MetricQuantity Metric = "quantity"
)

// WeeklyScatter builds the multi-line weekly figure for one bordereau type,
// one trace per configured status column. Columns absent from the frame are
// skipped so one config table serves every bordereau type.
func WeeklyScatter(f *dataset.Frame, weekCol string, configs []LineConfig, metric Metric) Figure {
	f = f.SortByTime(weekCol)

	var traces []Trace
	for _, cfg := range configs {
		col := cfg.CountsColumn
		name := cfg.CountsName
		suffix := cfg.CountsSuffix
		if metric == MetricQuantity {
			col = cfg.QuantityColumn
			name = cfg.QuantityName
			suffix = cfg.QuantitySuffix
		}
		if col == "" || !f.HasColumn(col) {
			continue
		}

		n := f.Len()
		x := make([]string, 0, n)
		y := make([]*float64, 0, n)
		hovers := make([]string, 0, n)
		lastNonNull := -1
		for i := 0; i < n; i++ {
			r := f.Row(i)
			at := r.Time(weekCol)
			v := r.FloatOrNil(col)
			x = append(x, at.Format(dayFormat))
			y = append(y, v)
			value := 0.0
			if v != nil {
				value = *v
				lastNonNull = i
			}
			hovers = append(hovers, fmt.Sprintf("Semaine du %s au %s<br><b>%s</b> %s",
				at.Format("02/01"), at.AddDate(0, 0, 6).Format("02/01"), FormatNumber(value, 2), suffix))
		}
		texts := make([]string, n)
		if lastNonNull >= 0 {
			texts[lastNonNull] = FormatNumber(*y[lastNonNull], 0)
		}

		traces = append(traces, Trace{
			Type:      "scatter",
			Mode:      "lines+text",
			Name:      name,
			X:         x,
			Y:         y,
			Text:      texts,
			HoverText: hovers,
			HoverInfo: "text",
			LineColor: cfg.Color,
			Visible:   cfg.Visible,
		})
	}

	legendTitle := "Statut du bordereau :"
	yTitle := ""
	if metric == MetricQuantity {
		legendTitle = "Statut :"
		yTitle = "Quantité (en tonnes)"
	}
	return Figure{
		Data:   traces,
		Layout: Layout{LegendTitle: legendTitle, YAxisTitle: yTitle},
	}
}

// WeeklyQuantityProcessed builds the stacked-bar figure of weekly processed
// quantities, one bar series for recovered waste and one for eliminated.
func WeeklyQuantityProcessed(recovered, eliminated *dataset.Frame, weekCol, valueCol string, period dataset.Period) Figure {
	type conf struct {
		frame *dataset.Frame
		name  string
		color string
	}
	confs := []conf{
		{frame: recovered, name: "Déchets valorisés", color: "#66673D"},
		{frame: eliminated, name: "Déchets éliminés", color: "#5E2A2B"},
	}

	var traces []Trace
	for _, c := range confs {
		f := c.frame.FilterPeriod(weekCol, period).SortByTime(weekCol)
		n := f.Len()
		x := make([]string, 0, n)
		y := make([]*float64, 0, n)
		hovers := make([]string, 0, n)
		for i := 0; i < n; i++ {
			r := f.Row(i)
			at := r.Time(weekCol)
			v := r.FloatOrNil(valueCol)
			x = append(x, at.Format(dayFormat))
			y = append(y, v)
			qty := 0.0
			if v != nil {
				qty = *v
			}
			hovers = append(hovers, fmt.Sprintf("Semaine du %s au %s<br><b>%s</b> tonnes de %s",
				at.Format("02/01"), weekHoverEnd(at, period).Format("02/01"), FormatNumber(qty, 0), c.name))
		}
		traces = append(traces, Trace{
			Type:        "bar",
			Name:        c.name,
			X:           x,
			Y:           y,
			HoverText:   hovers,
			HoverInfo:   "text",
			MarkerColor: c.color,
		})
	}

	return Figure{
		Data: traces,
		Layout: Layout{
			BarMode:     "stack",
			XAxisTitle:  "Semaine de traitement",
			YAxisTitle:  "Quantité (en tonnes)",
			LegendTitle: "Type de traitement :",
		},
	}
}

// weekHoverEnd clamps the displayed week end so the last bar of a year does
// not spill into January of the next one.
func weekHoverEnd(weekStart time.Time, period dataset.Period) time.Time {
	end := weekStart.AddDate(0, 0, 6)
	if !end.Before(period.End) {
		return period.End.AddDate(0, 0, -1)
	}
	return end
}

// Treemap assembles a treemap figure from pre-built hierarchy rows.
func Treemap(ids, labels, parents []string, values []float64, hovers, colors []string) Figure {
	return Figure{
		Data: []Trace{{
			Type:         "treemap",
			IDs:          ids,
			Labels:       labels,
			Parents:      parents,
			Values:       values,
			HoverText:    hovers,
			HoverInfo:    "text",
			MarkerColors: colors,
			BranchValues: "total",
		}},
	}
}

// Sunburst assembles a sunburst figure from pre-built hierarchy rows.
func Sunburst(ids, labels, parents []string, values []float64, hovers, colors []string) Figure {
	return Figure{
		Data: []Trace{{
			Type:         "sunburst",
			IDs:          ids,
			Labels:       labels,
			Parents:      parents,
			Values:       values,
			HoverText:    hovers,
			HoverInfo:    "text",
			MarkerColors: colors,
			BranchValues: "total",
		}},
	}
}
