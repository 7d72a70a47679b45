// Package chart builds the serialized figure payloads persisted alongside
// each computation snapshot. The payload shape follows the plotly figure
// convention (data traces + layout) that the front end already consumes; the
// pipeline core treats it as an opaque JSON-serializable blob.
package chart

// Figure is a chart payload: a list of traces and a layout.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one plotted series. Y values are pointers so missing points
// serialize as null instead of a fabricated zero.
type Trace struct {
	Type        string     `json:"type"`
	Name        string     `json:"name,omitempty"`
	Mode        string     `json:"mode,omitempty"`
	X           []string   `json:"x,omitempty"`
	Y           []*float64 `json:"y,omitempty"`
	Text        []string   `json:"text,omitempty"`
	HoverText   []string   `json:"hovertext,omitempty"`
	HoverInfo   string     `json:"hoverinfo,omitempty"`
	LineColor   string     `json:"line_color,omitempty"`
	MarkerColor string     `json:"marker_color,omitempty"`
	Visible     string     `json:"visible,omitempty"`

	// Hierarchical traces (treemap, sunburst).
	IDs          []string   `json:"ids,omitempty"`
	Labels       []string   `json:"labels,omitempty"`
	Parents      []string   `json:"parents,omitempty"`
	Values       []float64  `json:"values,omitempty"`
	MarkerColors []string   `json:"marker_colors,omitempty"`
	BranchValues string     `json:"branchvalues,omitempty"`
}

// Layout carries the subset of layout options the front end honors.
type Layout struct {
	BarMode     string  `json:"barmode,omitempty"`
	XAxisTitle  string  `json:"xaxis_title,omitempty"`
	YAxisTitle  string  `json:"yaxis_title,omitempty"`
	LegendTitle string  `json:"legend_title,omitempty"`
	ShowLegend  *bool   `json:"showlegend,omitempty"`
	Shapes      []Shape `json:"shapes,omitempty"`
}

// Shape is a layout annotation; only horizontal reference lines are used,
// for the authorized-capacity overlay on regulated-site graphs.
type Shape struct {
	Type      string  `json:"type"`
	Y         float64 `json:"y0"`
	Y1        float64 `json:"y1"`
	XRef      string  `json:"xref"`
	LineColor string  `json:"line_color,omitempty"`
	LineDash  string  `json:"line_dash,omitempty"`
	Label     string  `json:"label,omitempty"`
}

// CapacityLine returns the dotted red horizontal line marking an authorized
// annual or daily capacity.
func CapacityLine(capacity float64, label string) Shape {
	return Shape{
		Type:      "line",
		Y:         capacity,
		Y1:        capacity,
		XRef:      "paper",
		LineColor: "red",
		LineDash:  "dot",
		Label:     label,
	}
}
