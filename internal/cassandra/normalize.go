package cassandra

import (
	"fmt"
	"net"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"github.com/rzpsarthak13/cqlbrowser/internal/core"
)

var (
	durationUnit = regexp.MustCompile(`(\d+)(mo|ms|us|µs|ns|y|w|d|h|m|s)`)

	// tupleField matches the "name[i]" keys MapScan uses for tuple elements.
	tupleField = regexp.MustCompile(`^(.+)\[(\d+)\]$`)
)

// nanoseconds per sub-day duration unit
var durationNanos = map[string]int64{
	"h":  int64(3600e9),
	"m":  int64(60e9),
	"s":  int64(1e9),
	"ms": int64(1e6),
	"us": int64(1e3),
	"µs": int64(1e3),
	"ns": 1,
}

// ParseDuration converts a literal such as "1y2mo3w4d5h6m7s8ms" into a
// gocql.Duration. Years and months fold into Months, weeks and days into Days.
func ParseDuration(lit core.DurationLiteral) (gocql.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(string(lit)))
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	matches := durationUnit.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return gocql.Duration{}, fmt.Errorf("invalid duration %q", lit)
	}

	var d gocql.Duration
	pos := 0
	for _, m := range matches {
		if m[0] != pos {
			return gocql.Duration{}, fmt.Errorf("invalid duration %q", lit)
		}
		pos = m[1]

		n, err := strconv.ParseInt(s[m[2]:m[3]], 10, 64)
		if err != nil {
			return gocql.Duration{}, fmt.Errorf("invalid duration %q: %w", lit, err)
		}
		switch unit := s[m[4]:m[5]]; unit {
		case "y":
			d.Months += int32(n * 12)
		case "mo":
			d.Months += int32(n)
		case "w":
			d.Days += int32(n * 7)
		case "d":
			d.Days += int32(n)
		default:
			d.Nanoseconds += n * durationNanos[unit]
		}
	}
	if pos != len(s) {
		return gocql.Duration{}, fmt.Errorf("invalid duration %q", lit)
	}

	if neg {
		d.Months, d.Days, d.Nanoseconds = -d.Months, -d.Days, -d.Nanoseconds
	}
	return d, nil
}

// FormatDuration renders a gocql.Duration as a literal ParseDuration accepts.
// Zero renders as "0s".
func FormatDuration(d gocql.Duration) core.DurationLiteral {
	if d.Months == 0 && d.Days == 0 && d.Nanoseconds == 0 {
		return "0s"
	}

	var b strings.Builder
	months, days, nanos := int64(d.Months), int64(d.Days), d.Nanoseconds
	if months < 0 || days < 0 || nanos < 0 {
		b.WriteByte('-')
		months, days, nanos = abs(months), abs(days), abs(nanos)
	}

	write := func(n int64, unit string) {
		if n != 0 {
			b.WriteString(strconv.FormatInt(n, 10))
			b.WriteString(unit)
		}
	}
	write(months/12, "y")
	write(months%12, "mo")
	write(days, "d")
	for _, unit := range []string{"h", "m", "s", "ms", "us", "ns"} {
		per := durationNanos[unit]
		write(nanos/per, unit)
		nanos %= per
	}
	return core.DurationLiteral(b.String())
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// toDriver converts the values the query builder produces into types gocql
// can marshal. Collections are converted element by element.
func toDriver(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case uuid.UUID:
		return gocql.UUID(v), nil
	case core.DurationLiteral:
		return ParseDuration(v)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, e := range v {
			conv, err := toDriver(e)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	case map[interface{}]interface{}:
		out := make(map[interface{}]interface{}, len(v))
		for k, e := range v {
			ck, err := toDriver(k)
			if err != nil {
				return nil, err
			}
			ce, err := toDriver(e)
			if err != nil {
				return nil, err
			}
			out[ck] = ce
		}
		return out, nil
	default:
		return value, nil
	}
}

func toDriverArgs(args []interface{}) ([]interface{}, error) {
	out := make([]interface{}, len(args))
	for i, a := range args {
		v, err := toDriver(a)
		if err != nil {
			return nil, fmt.Errorf("bind value %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// normalizeRow rewrites a MapScan result into driver-neutral values and
// regroups tuple elements into a single []interface{} column.
func normalizeRow(raw map[string]interface{}) core.Row {
	row := make(core.Row, len(raw))
	tuples := make(map[string]map[int]interface{})

	for name, value := range raw {
		if m := tupleField.FindStringSubmatch(name); m != nil {
			idx, _ := strconv.Atoi(m[2])
			if tuples[m[1]] == nil {
				tuples[m[1]] = make(map[int]interface{})
			}
			tuples[m[1]][idx] = normalizeValue(value)
			continue
		}
		row[name] = normalizeValue(value)
	}

	for name, elems := range tuples {
		idx := make([]int, 0, len(elems))
		for i := range elems {
			idx = append(idx, i)
		}
		sort.Ints(idx)
		tuple := make([]interface{}, idx[len(idx)-1]+1)
		for _, i := range idx {
			tuple[i] = elems[i]
		}
		row[name] = tuple
	}
	return row
}

func normalizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case nil:
		return nil
	case gocql.UUID:
		if v == (gocql.UUID{}) {
			return nil
		}
		return uuid.UUID(v)
	case net.IP:
		if v == nil {
			return nil
		}
		return v.String()
	case gocql.Duration:
		return FormatDuration(v)
	case []byte, string:
		return v
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]interface{}, rv.Len())
		for i := range out {
			out[i] = normalizeValue(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		// UDT values stay keyed by field name.
		if rv.Type().Key().Kind() == reflect.String && rv.Type().Elem().Kind() == reflect.Interface {
			out := make(map[string]interface{}, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				out[iter.Key().String()] = normalizeValue(iter.Value().Interface())
			}
			return out
		}
		out := make(map[interface{}]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[normalizeValue(iter.Key().Interface())] = normalizeValue(iter.Value().Interface())
		}
		return out
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
	}
	return value
}
