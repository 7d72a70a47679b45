package dataset

import (
	"fmt"
)

// JoinKind selects how unmatched left rows are handled.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
)

// Cardinality declares the expected key multiplicity. A join declared
// OneToOne fails when the key is duplicated on either side; silent row
// duplication is exactly the failure mode this guards against.
type Cardinality int

const (
	// OneToOne requires the key to be unique on both sides.
	OneToOne Cardinality = iota
	// ManyToOne requires the key to be unique on the right side only.
	ManyToOne
)

// Join joins two frames on the given key columns. Right-side key columns are
// dropped from the output; other right columns that clash with left names get
// a "_right" suffix. Null keys never match.
func (f *Frame) Join(right *Frame, on []string, kind JoinKind, card Cardinality) (*Frame, error) {
	leftKeys := make([]*Series, len(on))
	rightKeys := make([]*Series, len(on))
	for i, k := range on {
		lc, ok := f.Column(k)
		if !ok {
			return nil, fmt.Errorf("left frame has no key column %q", k)
		}
		rc, ok := right.Column(k)
		if !ok {
			return nil, fmt.Errorf("right frame has no key column %q", k)
		}
		leftKeys[i] = lc
		rightKeys[i] = rc
	}

	rightIdx := make(map[string]int, right.Len())
	for i := 0; i < right.Len(); i++ {
		if anyNull(rightKeys, i) {
			continue
		}
		k := groupKey(rightKeys, i)
		if _, dup := rightIdx[k]; dup {
			return nil, fmt.Errorf("join key %v is not unique on the right side", keyValues(rightKeys, i))
		}
		rightIdx[k] = i
	}

	if card == OneToOne {
		seen := make(map[string]struct{}, f.Len())
		for i := 0; i < f.Len(); i++ {
			if anyNull(leftKeys, i) {
				continue
			}
			k := groupKey(leftKeys, i)
			if _, dup := seen[k]; dup {
				return nil, fmt.Errorf("join key %v is not unique on the left side", keyValues(leftKeys, i))
			}
			seen[k] = struct{}{}
		}
	}

	onSet := make(map[string]struct{}, len(on))
	for _, k := range on {
		onSet[k] = struct{}{}
	}

	outLeft := make([]*Series, len(f.cols))
	for i, c := range f.cols {
		outLeft[i] = Empty(c.name, c.typ)
	}
	var rightSrc []*Series
	var outRight []*Series
	for _, c := range right.cols {
		if _, isKey := onSet[c.name]; isKey {
			continue
		}
		name := c.name
		if f.HasColumn(name) {
			name += "_right"
		}
		rightSrc = append(rightSrc, c)
		outRight = append(outRight, Empty(name, c.typ))
	}

	for i := 0; i < f.Len(); i++ {
		ri, matched := -1, false
		if !anyNull(leftKeys, i) {
			ri, matched = lookup(rightIdx, groupKey(leftKeys, i))
		}
		if !matched && kind == InnerJoin {
			continue
		}
		for ci, c := range f.cols {
			outLeft[ci].appendFrom(c, i)
		}
		for ci, c := range rightSrc {
			if matched {
				outRight[ci].appendFrom(c, ri)
			} else {
				outRight[ci].appendNull()
			}
		}
	}

	return New(append(outLeft, outRight...)...)
}

func lookup(idx map[string]int, k string) (int, bool) {
	i, ok := idx[k]
	return i, ok
}

func anyNull(cols []*Series, i int) bool {
	for _, c := range cols {
		if c.IsNull(i) {
			return true
		}
	}
	return false
}

func keyValues(cols []*Series, i int) []any {
	vals := make([]any, len(cols))
	for ci, c := range cols {
		switch c.typ {
		case String:
			vals[ci] = c.Str(i)
		case Int:
			vals[ci] = c.Int(i)
		case Float:
			vals[ci] = c.Float(i)
		case Time:
			vals[ci] = c.Time(i)
		}
	}
	return vals
}
