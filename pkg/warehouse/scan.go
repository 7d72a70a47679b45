package warehouse

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/trackwaste/publicstats/pkg/dataset"
)

// floatColumns are quantity columns that some warehouse views expose as
// decimal strings. They are coerced to floats on extraction so every
// downstream aggregation works on one type.
var floatColumns = map[string]bool{
	"quantite_tracee":                         true,
	"quantite_emise":                          true,
	"quantite_envoyee":                        true,
	"quantite_recue":                          true,
	"quantite_traitee":                        true,
	"quantite_traitee_operations_non_finales": true,
	"quantite_traitee_operations_finales":     true,
	"quantite_produite":                       true,
	"quantite_autorisee":                      true,
}

// ScanFrame drains rows into a frame, one typed series per column. Nullable
// warehouse columns become null entries; string columns listed in
// floatColumns are parsed into floats.
func ScanFrame(rows driver.Rows) (*dataset.Frame, error) {
	defer rows.Close()

	types := rows.ColumnTypes()
	names := rows.Columns()

	builders := make([]*columnBuilder, len(types))
	targets := make([]any, len(types))
	for i, ct := range types {
		builders[i] = newColumnBuilder(names[i])
		targets[i] = reflect.New(ct.ScanType()).Interface()
	}

	for rows.Next() {
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan warehouse row: %w", err)
		}
		for i, target := range targets {
			if err := builders[i].append(reflect.ValueOf(target).Elem().Interface()); err != nil {
				return nil, fmt.Errorf("column %s: %w", names[i], err)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read warehouse rows: %w", err)
	}

	cols := make([]*dataset.Series, len(builders))
	for i, b := range builders {
		cols[i] = b.series()
	}
	frame, err := dataset.New(cols...)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble frame: %w", err)
	}
	return frame, nil
}

// columnBuilder accumulates one column's values; the series type is fixed by
// the first appended value.
type columnBuilder struct {
	name    string
	toFloat bool

	strs  []*string
	ints  []*int64
	fls   []*float64
	times []*time.Time
	n     int
}

func newColumnBuilder(name string) *columnBuilder {
	return &columnBuilder{name: name, toFloat: floatColumns[name]}
}

func (b *columnBuilder) append(v any) error {
	defer func() { b.n++ }()

	switch v := v.(type) {
	case string:
		return b.appendString(&v)
	case *string:
		return b.appendString(v)
	case float64:
		b.fls = b.padFloats()
		b.fls = append(b.fls, &v)
	case *float64:
		b.fls = b.padFloats()
		b.fls = append(b.fls, v)
	case float32:
		f := float64(v)
		b.fls = b.padFloats()
		b.fls = append(b.fls, &f)
	case time.Time:
		b.times = b.padTimes()
		b.times = append(b.times, &v)
	case *time.Time:
		b.times = b.padTimes()
		b.times = append(b.times, v)
	case nil:
		b.appendNull()
	default:
		i, ok := asInt64(v)
		if !ok {
			return fmt.Errorf("unsupported warehouse type %T", v)
		}
		b.ints = b.padInts()
		b.ints = append(b.ints, i)
	}
	return nil
}

func (b *columnBuilder) appendString(v *string) error {
	if b.toFloat {
		b.fls = b.padFloats()
		if v == nil {
			b.fls = append(b.fls, nil)
			return nil
		}
		f, err := strconv.ParseFloat(*v, 64)
		if err != nil {
			return fmt.Errorf("failed to coerce %q to float: %w", *v, err)
		}
		b.fls = append(b.fls, &f)
		return nil
	}
	b.strs = b.padStrings()
	b.strs = append(b.strs, v)
	return nil
}

func (b *columnBuilder) appendNull() {
	switch {
	case b.fls != nil || b.toFloat:
		b.fls = append(b.padFloats(), nil)
	case b.ints != nil:
		b.ints = append(b.padInts(), nil)
	case b.times != nil:
		b.times = append(b.padTimes(), nil)
	default:
		b.strs = append(b.padStrings(), nil)
	}
}

// pad* backfill nulls when the first non-null value arrives after leading
// nulls landed in another buffer.
func (b *columnBuilder) padFloats() []*float64 {
	for len(b.fls) < b.n {
		b.fls = append(b.fls, nil)
	}
	return b.fls
}

func (b *columnBuilder) padInts() []*int64 {
	for len(b.ints) < b.n {
		b.ints = append(b.ints, nil)
	}
	return b.ints
}

func (b *columnBuilder) padTimes() []*time.Time {
	for len(b.times) < b.n {
		b.times = append(b.times, nil)
	}
	return b.times
}

func (b *columnBuilder) padStrings() []*string {
	for len(b.strs) < b.n {
		b.strs = append(b.strs, nil)
	}
	return b.strs
}

func (b *columnBuilder) series() *dataset.Series {
	switch {
	case b.fls != nil || b.toFloat:
		return dataset.NullableFloats(b.name, b.padFloats()...)
	case b.ints != nil:
		return dataset.NullableInts(b.name, b.padInts()...)
	case b.times != nil:
		return dataset.NullableTimes(b.name, b.padTimes()...)
	default:
		return dataset.NullableStrings(b.name, b.padStrings()...)
	}
}

func asInt64(v any) (*int64, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, true
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := rv.Int()
		return &i, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i := int64(rv.Uint())
		return &i, true
	}
	return nil, false
}
