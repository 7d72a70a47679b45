package dataset

import (
	"fmt"
	"strings"
	"time"
)

// AggOp is an aggregation applied to one column within a group.
type AggOp int

const (
	// SumAgg sums non-null values; a group with only nulls aggregates to null.
	SumAgg AggOp = iota
	// MeanAgg averages non-null values; a group with only nulls aggregates to null.
	MeanAgg
	// MaxAgg keeps the maximum non-null value. For strings this doubles as a
	// deterministic carry-forward of labels that are invariant within a group.
	MaxAgg
	// FirstAgg keeps the first value in group insertion order, null included.
	FirstAgg
	// CountAgg counts rows in the group.
	CountAgg
)

// Agg names a column and the operation to apply to it. As optionally renames
// the output column.
type Agg struct {
	Col string
	Op  AggOp
	As  string
}

func (a Agg) outName() string {
	if a.As != "" {
		return a.As
	}
	return a.Col
}

// GroupBy groups rows by the key columns and applies the aggregations,
// emitting one row per group in first-seen (insertion) order. Null keys form
// their own group.
func (f *Frame) GroupBy(keys []string, aggs ...Agg) (*Frame, error) {
	keyCols := make([]*Series, len(keys))
	for i, k := range keys {
		c, ok := f.Column(k)
		if !ok {
			return nil, fmt.Errorf("no key column %q", k)
		}
		keyCols[i] = c
	}
	for _, a := range aggs {
		if _, ok := f.Column(a.Col); !ok {
			return nil, fmt.Errorf("no aggregation column %q", a.Col)
		}
	}

	groupIdx := make(map[string]int)
	var groups [][]int
	var firstRows []int
	for i := 0; i < f.Len(); i++ {
		k := groupKey(keyCols, i)
		gi, ok := groupIdx[k]
		if !ok {
			gi = len(groups)
			groupIdx[k] = gi
			groups = append(groups, nil)
			firstRows = append(firstRows, i)
		}
		groups[gi] = append(groups[gi], i)
	}

	out := make([]*Series, 0, len(keys)+len(aggs))
	for ki, k := range keys {
		nc := Empty(k, keyCols[ki].typ)
		for _, first := range firstRows {
			nc.appendFrom(keyCols[ki], first)
		}
		out = append(out, nc)
	}

	for _, a := range aggs {
		src, _ := f.Column(a.Col)
		nc, err := aggregate(src, a, groups)
		if err != nil {
			return nil, err
		}
		out = append(out, nc)
	}

	return New(out...)
}

func groupKey(keyCols []*Series, i int) string {
	var b strings.Builder
	for _, c := range keyCols {
		if c.IsNull(i) {
			b.WriteString("\x00null")
		} else {
			switch c.typ {
			case String:
				b.WriteString(c.Str(i))
			case Int:
				fmt.Fprintf(&b, "%d", c.Int(i))
			case Float:
				fmt.Fprintf(&b, "%g", c.Float(i))
			case Time:
				b.WriteString(c.Time(i).Format(time.RFC3339))
			}
		}
		b.WriteByte('\x1f')
	}
	return b.String()
}

func aggregate(src *Series, a Agg, groups [][]int) (*Series, error) {
	name := a.outName()
	switch a.Op {
	case SumAgg, MeanAgg:
		nc := Empty(name, Float)
		for _, rows := range groups {
			var total float64
			var n int
			for _, i := range rows {
				if src.IsNull(i) {
					continue
				}
				total += src.Float(i)
				n++
			}
			if n == 0 {
				nc.appendNull()
			} else if a.Op == MeanAgg {
				nc.appendFloat(total / float64(n))
			} else {
				nc.appendFloat(total)
			}
		}
		return nc, nil
	case MaxAgg:
		nc := Empty(name, src.typ)
		for _, rows := range groups {
			best := -1
			for _, i := range rows {
				if src.IsNull(i) {
					continue
				}
				if best == -1 || greater(src, i, best) {
					best = i
				}
			}
			if best == -1 {
				nc.appendNull()
			} else {
				nc.appendFrom(src, best)
			}
		}
		return nc, nil
	case FirstAgg:
		nc := Empty(name, src.typ)
		for _, rows := range groups {
			nc.appendFrom(src, rows[0])
		}
		return nc, nil
	case CountAgg:
		nc := Empty(name, Int)
		for _, rows := range groups {
			nc.appendInt(int64(len(rows)))
		}
		return nc, nil
	default:
		return nil, fmt.Errorf("unsupported aggregation op %d", a.Op)
	}
}

func greater(s *Series, a, b int) bool {
	switch s.typ {
	case String:
		return s.Str(a) > s.Str(b)
	case Int:
		return s.Int(a) > s.Int(b)
	case Float:
		return s.Float(a) > s.Float(b)
	case Time:
		return s.Time(a).After(s.Time(b))
	default:
		return false
	}
}
