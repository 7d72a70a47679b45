package dataset

import (
	"fmt"
)

// ConcatDiagonal stacks frames vertically on the union of their schemas.
// Columns missing from a frame are filled with null for its rows; absent
// values stay null, they are never coerced to zero. Column order follows
// first appearance across the inputs.
func ConcatDiagonal(frames ...*Frame) (*Frame, error) {
	var order []string
	types := make(map[string]Type)
	for _, f := range frames {
		for _, c := range f.cols {
			if t, ok := types[c.name]; ok {
				if t != c.typ {
					return nil, fmt.Errorf("column %q has conflicting types %s and %s", c.name, t, c.typ)
				}
				continue
			}
			types[c.name] = c.typ
			order = append(order, c.name)
		}
	}

	out := make([]*Series, len(order))
	for i, name := range order {
		out[i] = Empty(name, types[name])
	}

	for _, f := range frames {
		n := f.Len()
		for i, name := range order {
			if c, ok := f.Column(name); ok {
				for ri := 0; ri < n; ri++ {
					out[i].appendFrom(c, ri)
				}
			} else {
				for ri := 0; ri < n; ri++ {
					out[i].appendNull()
				}
			}
		}
	}

	return New(out...)
}
