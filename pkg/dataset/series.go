package dataset

import (
	"fmt"
	"time"
)

// Type is the data type of a Series.
type Type int

const (
	String Type = iota
	Int
	Float
	Time
)

func (t Type) String() string {
	switch t {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Time:
		return "time"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Series is a named, typed, null-aware column. Values are stored in the
// slice matching the series type; entries with valid[i] == false are null.
type Series struct {
	name  string
	typ   Type
	strs  []string
	ints  []int64
	fls   []float64
	times []time.Time
	valid []bool
}

func Strings(name string, vals ...string) *Series {
	valid := make([]bool, len(vals))
	for i := range valid {
		valid[i] = true
	}
	return &Series{name: name, typ: String, strs: vals, valid: valid}
}

func Ints(name string, vals ...int64) *Series {
	valid := make([]bool, len(vals))
	for i := range valid {
		valid[i] = true
	}
	return &Series{name: name, typ: Int, ints: vals, valid: valid}
}

func Floats(name string, vals ...float64) *Series {
	valid := make([]bool, len(vals))
	for i := range valid {
		valid[i] = true
	}
	return &Series{name: name, typ: Float, fls: vals, valid: valid}
}

func Times(name string, vals ...time.Time) *Series {
	valid := make([]bool, len(vals))
	for i := range valid {
		valid[i] = true
	}
	return &Series{name: name, typ: Time, times: vals, valid: valid}
}

// NullableStrings builds a string series where nil entries are null.
func NullableStrings(name string, vals ...*string) *Series {
	s := &Series{name: name, typ: String, strs: make([]string, len(vals)), valid: make([]bool, len(vals))}
	for i, v := range vals {
		if v != nil {
			s.strs[i] = *v
			s.valid[i] = true
		}
	}
	return s
}

// NullableFloats builds a float series where nil entries are null.
func NullableFloats(name string, vals ...*float64) *Series {
	s := &Series{name: name, typ: Float, fls: make([]float64, len(vals)), valid: make([]bool, len(vals))}
	for i, v := range vals {
		if v != nil {
			s.fls[i] = *v
			s.valid[i] = true
		}
	}
	return s
}

// NullableInts builds an int series where nil entries are null.
func NullableInts(name string, vals ...*int64) *Series {
	s := &Series{name: name, typ: Int, ints: make([]int64, len(vals)), valid: make([]bool, len(vals))}
	for i, v := range vals {
		if v != nil {
			s.ints[i] = *v
			s.valid[i] = true
		}
	}
	return s
}

// NullableTimes builds a time series where nil entries are null.
func NullableTimes(name string, vals ...*time.Time) *Series {
	s := &Series{name: name, typ: Time, times: make([]time.Time, len(vals)), valid: make([]bool, len(vals))}
	for i, v := range vals {
		if v != nil {
			s.times[i] = *v
			s.valid[i] = true
		}
	}
	return s
}

// Empty returns a zero-length series of the given type, used to pad frames
// during diagonal concatenation.
func Empty(name string, typ Type) *Series {
	return &Series{name: name, typ: typ}
}

func (s *Series) Name() string { return s.name }
func (s *Series) Type() Type   { return s.typ }
func (s *Series) Len() int     { return len(s.valid) }

// Renamed returns a shallow copy of the series under a new name.
func (s *Series) Renamed(name string) *Series {
	c := *s
	c.name = name
	return &c
}

func (s *Series) IsNull(i int) bool { return !s.valid[i] }

func (s *Series) Str(i int) string {
	return s.strs[i]
}

func (s *Series) Int(i int) int64 {
	return s.ints[i]
}

func (s *Series) Float(i int) float64 {
	if s.typ == Int {
		return float64(s.ints[i])
	}
	return s.fls[i]
}

func (s *Series) Time(i int) time.Time {
	return s.times[i]
}

// Sum returns the sum of non-null values. ok is false when the series holds
// no non-null value, which callers must treat as null, not zero.
func (s *Series) Sum() (total float64, ok bool) {
	for i := range s.valid {
		if !s.valid[i] {
			continue
		}
		total += s.Float(i)
		ok = true
	}
	return total, ok
}

// Mean returns the mean of non-null values. ok is false when there are none.
func (s *Series) Mean() (float64, bool) {
	var total float64
	var n int
	for i := range s.valid {
		if !s.valid[i] {
			continue
		}
		total += s.Float(i)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return total / float64(n), true
}

func (s *Series) appendNull() {
	switch s.typ {
	case String:
		s.strs = append(s.strs, "")
	case Int:
		s.ints = append(s.ints, 0)
	case Float:
		s.fls = append(s.fls, 0)
	case Time:
		s.times = append(s.times, time.Time{})
	}
	s.valid = append(s.valid, false)
}

func (s *Series) appendFrom(src *Series, i int) {
	if src.IsNull(i) {
		s.appendNull()
		return
	}
	switch s.typ {
	case String:
		s.strs = append(s.strs, src.strs[i])
	case Int:
		s.ints = append(s.ints, src.ints[i])
	case Float:
		s.fls = append(s.fls, src.Float(i))
	case Time:
		s.times = append(s.times, src.times[i])
	}
	s.valid = append(s.valid, true)
}

func (s *Series) appendString(v string) {
	s.strs = append(s.strs, v)
	s.valid = append(s.valid, true)
}

func (s *Series) appendFloat(v float64) {
	s.fls = append(s.fls, v)
	s.valid = append(s.valid, true)
}

func (s *Series) appendInt(v int64) {
	s.ints = append(s.ints, v)
	s.valid = append(s.valid, true)
}

func (s *Series) appendTime(v time.Time) {
	s.times = append(s.times, v)
	s.valid = append(s.valid, true)
}
