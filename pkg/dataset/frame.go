package dataset

import (
	"fmt"
	"sort"
	"time"
)

// Frame is an immutable-by-convention table of equally sized typed columns.
// Every transform returns a fresh frame; inputs are never mutated.
type Frame struct {
	cols []*Series
}

// New builds a frame from the given columns. All columns must have the same
// length and distinct names.
func New(cols ...*Series) (*Frame, error) {
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if _, ok := seen[c.name]; ok {
			return nil, fmt.Errorf("duplicate column %q", c.name)
		}
		seen[c.name] = struct{}{}
		if c.Len() != cols[0].Len() {
			return nil, fmt.Errorf("column %q has length %d, want %d", c.name, c.Len(), cols[0].Len())
		}
	}
	return &Frame{cols: cols}, nil
}

// MustNew is New for statically known schemas, typically test fixtures.
func MustNew(cols ...*Series) *Frame {
	f, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Frame) Len() int {
	if len(f.cols) == 0 {
		return 0
	}
	return f.cols[0].Len()
}

func (f *Frame) Columns() []*Series { return f.cols }

func (f *Frame) ColumnNames() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.name
	}
	return names
}

func (f *Frame) Column(name string) (*Series, bool) {
	for _, c := range f.cols {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

func (f *Frame) HasColumn(name string) bool {
	_, ok := f.Column(name)
	return ok
}

// Row is a positional view over one frame row.
type Row struct {
	f *Frame
	i int
}

func (f *Frame) Row(i int) Row { return Row{f: f, i: i} }

func (r Row) col(name string) *Series {
	c, ok := r.f.Column(name)
	if !ok {
		panic(fmt.Sprintf("dataset: no column %q", name))
	}
	return c
}

func (r Row) IsNull(name string) bool { return r.col(name).IsNull(r.i) }

func (r Row) Str(name string) string { return r.col(name).Str(r.i) }

func (r Row) Int(name string) int64 { return r.col(name).Int(r.i) }

func (r Row) Float(name string) float64 { return r.col(name).Float(r.i) }

func (r Row) Time(name string) time.Time { return r.col(name).Time(r.i) }

// FloatOrNil returns a pointer so callers can carry nulls through without
// inventing a zero.
func (r Row) FloatOrNil(name string) *float64 {
	c := r.col(name)
	if c.IsNull(r.i) {
		return nil
	}
	v := c.Float(r.i)
	return &v
}

func (r Row) StrOrNil(name string) *string {
	c := r.col(name)
	if c.IsNull(r.i) {
		return nil
	}
	v := c.Str(r.i)
	return &v
}

// take returns a new frame holding the given row indices, in order.
func (f *Frame) take(idx []int) *Frame {
	out := make([]*Series, len(f.cols))
	for ci, c := range f.cols {
		nc := Empty(c.name, c.typ)
		for _, i := range idx {
			nc.appendFrom(c, i)
		}
		out[ci] = nc
	}
	return &Frame{cols: out}
}

// Filter returns the rows matching the predicate, preserving order.
func (f *Frame) Filter(pred func(Row) bool) *Frame {
	var idx []int
	for i := 0; i < f.Len(); i++ {
		if pred(f.Row(i)) {
			idx = append(idx, i)
		}
	}
	return f.take(idx)
}

// FilterPeriod keeps rows whose date column falls inside the half-open
// period [start, end). Null dates are dropped.
func (f *Frame) FilterPeriod(dateCol string, p Period) *Frame {
	return f.Filter(func(r Row) bool {
		return !r.IsNull(dateCol) && p.Contains(r.Time(dateCol))
	})
}

// SortByTime returns the frame sorted ascending by a time column. The sort is
// stable so insertion order survives within equal keys. Nulls sort first.
func (f *Frame) SortByTime(col string) *Frame {
	c, ok := f.Column(col)
	if !ok {
		return f
	}
	idx := make([]int, f.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		if c.IsNull(ia) || c.IsNull(ib) {
			return c.IsNull(ia) && !c.IsNull(ib)
		}
		return c.Time(ia).Before(c.Time(ib))
	})
	return f.take(idx)
}

// SortByFloat returns the frame sorted by a numeric column. Nulls sort first.
func (f *Frame) SortByFloat(col string, descending bool) *Frame {
	c, ok := f.Column(col)
	if !ok {
		return f
	}
	idx := make([]int, f.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		if c.IsNull(ia) || c.IsNull(ib) {
			return c.IsNull(ia) && !c.IsNull(ib)
		}
		if descending {
			return c.Float(ia) > c.Float(ib)
		}
		return c.Float(ia) < c.Float(ib)
	})
	return f.take(idx)
}

// WithColumn returns a frame with the column appended, or replaced when a
// column of the same name exists.
func (f *Frame) WithColumn(s *Series) (*Frame, error) {
	if f.Len() != s.Len() && len(f.cols) > 0 {
		return nil, fmt.Errorf("column %q has length %d, want %d", s.name, s.Len(), f.Len())
	}
	out := make([]*Series, 0, len(f.cols)+1)
	replaced := false
	for _, c := range f.cols {
		if c.name == s.name {
			out = append(out, s)
			replaced = true
			continue
		}
		out = append(out, c)
	}
	if !replaced {
		out = append(out, s)
	}
	return &Frame{cols: out}, nil
}

// Select returns a frame restricted to the named columns, in the given order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	out := make([]*Series, 0, len(names))
	for _, name := range names {
		c, ok := f.Column(name)
		if !ok {
			return nil, fmt.Errorf("no column %q", name)
		}
		out = append(out, c)
	}
	return &Frame{cols: out}, nil
}

// FillNullStrings replaces nulls in a string column with the sentinel value.
func (f *Frame) FillNullStrings(col string, sentinel string) *Frame {
	c, ok := f.Column(col)
	if !ok || c.typ != String {
		return f
	}
	nc := Empty(col, String)
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			nc.appendString(sentinel)
		} else {
			nc.appendString(c.strs[i])
		}
	}
	out, _ := f.WithColumn(nc)
	return out
}

// SumFloat sums a numeric column skipping nulls; ok is false when every
// value is null or the frame is empty.
func (f *Frame) SumFloat(col string) (float64, bool) {
	c, ok := f.Column(col)
	if !ok {
		return 0, false
	}
	return c.Sum()
}
