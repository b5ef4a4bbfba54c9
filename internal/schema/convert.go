package schema

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/inf.v0"

	"github.com/rzpsarthak13/cqlbrowser/internal/core"
)

// inputJSON decodes collection input. Numbers stay json.Number so each element
// can be converted at the width of its declared type.
var inputJSON = jsoniter.Config{UseNumber: true}.Froze()

var durationPattern = regexp.MustCompile(`^-?(\d+(mo|ms|us|µs|ns|y|w|d|h|m|s))+$`)

// ConvertForWrite coerces caller input to the driver-native value for type t.
//
// Empty input (nil or "") is reported as absent so the column is omitted from
// the statement, except for uuid and timeuuid where a fresh identifier is
// generated instead. Conversion failures wrap core.ErrConversion.
func (r *TypeRegistry) ConvertForWrite(value interface{}, t core.TypeExpression) (interface{}, bool, error) {
	if IsEmptyInput(value) {
		switch r.Resolve(t).Kind {
		case KindUUID:
			return r.generate(r.newRandomUUID, value, t)
		case KindTimeUUID:
			return r.generate(r.newTimeUUID, value, t)
		}
		return nil, false, nil
	}

	native, err := r.convertRaw(value, t)
	if err != nil {
		return nil, false, &core.ConversionError{Type: t.String(), Value: value, Err: err}
	}
	return native, true, nil
}

// ConvertColumn is ConvertForWrite for a schema column; errors name the column.
func (r *TypeRegistry) ConvertColumn(col core.Column, value interface{}) (interface{}, bool, error) {
	native, present, err := r.ConvertForWrite(value, col.Type)
	if err != nil {
		var convErr *core.ConversionError
		if errors.As(err, &convErr) {
			convErr.Column = col.Name
		}
		return nil, false, err
	}
	return native, present, nil
}

func (r *TypeRegistry) generate(gen func() (uuid.UUID, error), value interface{}, t core.TypeExpression) (interface{}, bool, error) {
	id, err := gen()
	if err != nil {
		return nil, false, &core.ConversionError{Type: t.String(), Value: value, Err: err}
	}
	return id, true, nil
}

func (r *TypeRegistry) convertRaw(value interface{}, t core.TypeExpression) (interface{}, error) {
	return r.Describe(t.Base).convert(r, value, t)
}

// IsEmptyInput reports whether value counts as "not provided": nil, a nil
// pointer or the empty string.
func IsEmptyInput(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(value)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

// Integers

func convertInteger(r *TypeRegistry, value interface{}, t core.TypeExpression) (interface{}, error) {
	kind := r.Describe(t.Base).Kind
	bits := 64
	switch kind {
	case KindTinyInt:
		bits = 8
	case KindSmallInt:
		bits = 16
	case KindInt:
		bits = 32
	}

	n, err := toInt64(value, bits)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindTinyInt:
		return int8(n), nil
	case KindSmallInt:
		return int16(n), nil
	case KindInt:
		return int32(n), nil
	default:
		return n, nil
	}
}

func toInt64(value interface{}, bits int) (int64, error) {
	var n int64
	switch v := value.(type) {
	case int:
		n = int64(v)
	case int8:
		n = int64(v)
	case int16:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows %d-bit integer", v, bits)
		}
		n = int64(v)
	case uint8:
		n = int64(v)
	case uint16:
		n = int64(v)
	case uint32:
		n = int64(v)
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows %d-bit integer", v, bits)
		}
		n = int64(v)
	case float32:
		return floatToInt(float64(v), bits)
	case float64:
		return floatToInt(v, bits)
	case json.Number:
		return strconv.ParseInt(v.String(), 10, bits)
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, bits)
	default:
		return 0, fmt.Errorf("cannot convert %T to %d-bit integer", value, bits)
	}
	return checkIntRange(n, bits)
}

func checkIntRange(n int64, bits int) (int64, error) {
	if bits < 64 {
		lo := int64(-1) << (bits - 1)
		hi := -lo - 1
		if n < lo || n > hi {
			return 0, fmt.Errorf("%d overflows %d-bit integer", n, bits)
		}
	}
	return n, nil
}

func floatToInt(f float64, bits int) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%v overflows %d-bit integer", f, bits)
	}
	return checkIntRange(int64(f), bits)
}

func convertVarint(_ *TypeRegistry, value interface{}, _ core.TypeExpression) (interface{}, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case json.Number:
		return parseBigInt(v.String())
	case string:
		return parseBigInt(v)
	case float32, float64:
		f := reflect.ValueOf(v).Float()
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return nil, fmt.Errorf("%v is not an integer", f)
		}
		b, _ := big.NewFloat(f).Int(nil)
		return b, nil
	default:
		n, err := toInt64(value, 64)
		if err != nil {
			return nil, err
		}
		return big.NewInt(n), nil
	}
}

func parseBigInt(s string) (*big.Int, error) {
	b, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return b, nil
}

// Floating point and decimal

func convertFloat(r *TypeRegistry, value interface{}, t core.TypeExpression) (interface{}, error) {
	bits := 64
	if r.Describe(t.Base).Kind == KindFloat {
		bits = 32
	}

	var f float64
	switch v := value.(type) {
	case float32:
		f = float64(v)
	case float64:
		f = v
	case json.Number:
		parsed, err := strconv.ParseFloat(v.String(), bits)
		if err != nil {
			return nil, err
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), bits)
		if err != nil {
			return nil, err
		}
		f = parsed
	default:
		n, err := toInt64(value, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %T to float", value)
		}
		f = float64(n)
	}

	if bits == 32 {
		if !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			return nil, fmt.Errorf("%v overflows float", f)
		}
		return float32(f), nil
	}
	return f, nil
}

func convertDecimal(_ *TypeRegistry, value interface{}, _ core.TypeExpression) (interface{}, error) {
	switch v := value.(type) {
	case *inf.Dec:
		return new(inf.Dec).Set(v), nil
	case *big.Int:
		return inf.NewDecBig(new(big.Int).Set(v), 0), nil
	case json.Number:
		return parseDecimal(v.String())
	case string:
		return parseDecimal(v)
	case float32:
		return parseDecimal(strconv.FormatFloat(float64(v), 'f', -1, 32))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%v is not a decimal", v)
		}
		return parseDecimal(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		n, err := toInt64(value, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %T to decimal", value)
		}
		return inf.NewDec(n, 0), nil
	}
}

// maxDecimalExponent bounds the exponent accepted in scientific notation.
const maxDecimalExponent = 1 << 20

// parseDecimal accepts plain decimals and scientific notation ("1.5e-3").
// The exponent is folded into the scale, so no precision is lost.
func parseDecimal(s string) (*inf.Dec, error) {
	mantissa, exp := strings.TrimSpace(s), 0
	if i := strings.IndexAny(mantissa, "eE"); i >= 0 {
		e, err := strconv.Atoi(mantissa[i+1:])
		if err != nil || e > maxDecimalExponent || e < -maxDecimalExponent {
			return nil, fmt.Errorf("invalid decimal %q", s)
		}
		mantissa, exp = mantissa[:i], e
	}
	d, ok := new(inf.Dec).SetString(mantissa)
	if !ok {
		return nil, fmt.Errorf("invalid decimal %q", s)
	}
	return d.SetScale(d.Scale() - inf.Scale(exp)), nil
}

// Boolean and strings

func convertBool(_ *TypeRegistry, value interface{}, _ core.TypeExpression) (interface{}, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return parseBool(v)
	case json.Number:
		return parseBool(v.String())
	default:
		n, err := toInt64(value, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %T to boolean", value)
		}
		switch n {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
		return nil, fmt.Errorf("%d is not a boolean", n)
	}
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q (expected true/false, 1/0 or yes/no)", s)
}

func convertText(_ *TypeRegistry, value interface{}, _ core.TypeExpression) (interface{}, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to text", value)
	}
}

func convertASCII(r *TypeRegistry, value interface{}, t core.TypeExpression) (interface{}, error) {
	s, err := convertText(r, value, t)
	if err != nil {
		return nil, err
	}
	for i, c := range s.(string) {
		if c > unicode.MaxASCII {
			return nil, fmt.Errorf("non-ASCII character %q at offset %d", c, i)
		}
	}
	return s, nil
}

func convertOpaque(_ *TypeRegistry, value interface{}, _ core.TypeExpression) (interface{}, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// Identifiers and network

func convertUUID(r *TypeRegistry, value interface{}, t core.TypeExpression) (interface{}, error) {
	var (
		id  uuid.UUID
		err error
	)
	switch v := value.(type) {
	case uuid.UUID:
		id = v
	case [16]byte:
		id = uuid.UUID(v)
	case []byte:
		id, err = uuid.FromBytes(v)
	case string:
		id, err = uuid.Parse(strings.TrimSpace(v))
	case fmt.Stringer:
		id, err = uuid.Parse(v.String())
	default:
		return nil, fmt.Errorf("cannot convert %T to uuid", value)
	}
	if err != nil {
		return nil, err
	}

	if r.Describe(t.Base).Kind == KindTimeUUID && id.Version() != 1 {
		return nil, fmt.Errorf("timeuuid requires a version 1 UUID, got version %d", id.Version())
	}
	return id, nil
}

func convertInet(_ *TypeRegistry, value interface{}, _ core.TypeExpression) (interface{}, error) {
	switch v := value.(type) {
	case net.IP:
		return v.String(), nil
	case string:
		s := strings.TrimSpace(v)
		if net.ParseIP(s) == nil {
			return nil, fmt.Errorf("invalid IP address %q", v)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to inet", value)
	}
}

func convertBlob(_ *TypeRegistry, value interface{}, _ core.TypeExpression) (interface{}, error) {
	switch v := value.(type) {
	case []byte:
		return append([]byte(nil), v...), nil
	case string:
		s := strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, v)
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			s = s[2:]
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid hex: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to blob", value)
	}
}

// Temporal

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-0700",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func convertTimestamp(_ *TypeRegistry, value interface{}, _ core.TypeExpression) (interface{}, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		return parseTimestamp(v)
	default:
		// Numeric input is milliseconds since the epoch, as stored by Cassandra.
		n, err := toInt64(value, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %T to timestamp", value)
		}
		return time.UnixMilli(n).UTC(), nil
	}
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp %q", s)
}

func convertDate(_ *TypeRegistry, value interface{}, _ core.TypeExpression) (interface{}, error) {
	var t time.Time
	switch v := value.(type) {
	case time.Time:
		t = v
	case string:
		parsed, err := parseTimestamp(v)
		if err != nil {
			return nil, fmt.Errorf("cannot parse date %q", v)
		}
		t = parsed
	default:
		return nil, fmt.Errorf("cannot convert %T to date", value)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

func convertTime(_ *TypeRegistry, value interface{}, _ core.TypeExpression) (interface{}, error) {
	var d time.Duration
	switch v := value.(type) {
	case time.Duration:
		d = v
	case time.Time:
		h, m, s := v.Clock()
		d = time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
			time.Duration(s)*time.Second + time.Duration(v.Nanosecond())
	case string:
		parsed, err := parseTimeOfDay(v)
		if err != nil {
			return nil, err
		}
		d = parsed
	default:
		n, err := toInt64(value, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %T to time", value)
		}
		d = time.Duration(n)
	}
	if d < 0 || d >= 24*time.Hour {
		return nil, fmt.Errorf("time of day %v out of range", d)
	}
	return d, nil
}

func parseTimeOfDay(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute +
			time.Duration(t.Second())*time.Second + time.Duration(t.Nanosecond()), nil
	}
	return 0, fmt.Errorf("cannot parse time of day %q", s)
}

func convertDuration(_ *TypeRegistry, value interface{}, _ core.TypeExpression) (interface{}, error) {
	var s string
	switch v := value.(type) {
	case core.DurationLiteral:
		s = string(v)
	case string:
		s = v
	case time.Duration:
		return core.DurationLiteral(strconv.FormatInt(v.Nanoseconds(), 10) + "ns"), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to duration", value)
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if !durationPattern.MatchString(s) {
		return nil, fmt.Errorf("invalid duration %q (expected e.g. 1h30m or 2mo3d)", s)
	}
	return core.DurationLiteral(s), nil
}

// Collections

func convertFrozen(r *TypeRegistry, value interface{}, t core.TypeExpression) (interface{}, error) {
	if len(t.Params) != 1 {
		return nil, fmt.Errorf("frozen requires exactly one type parameter")
	}
	return r.convertRaw(value, t.Params[0])
}

func convertList(r *TypeRegistry, value interface{}, t core.TypeExpression) (interface{}, error) {
	if len(t.Params) != 1 {
		return nil, fmt.Errorf("%s requires exactly one type parameter", t.Base)
	}
	elems, err := toSlice(value)
	if err != nil {
		return nil, err
	}
	out := make([]interface{}, 0, len(elems))
	for i, e := range elems {
		if e == nil {
			return nil, fmt.Errorf("element %d: null elements are not allowed", i)
		}
		v, err := r.convertRaw(e, t.Params[0])
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func convertSet(r *TypeRegistry, value interface{}, t core.TypeExpression) (interface{}, error) {
	converted, err := convertList(r, value, t)
	if err != nil {
		return nil, err
	}
	elems := converted.([]interface{})
	seen := make(map[string]struct{}, len(elems))
	out := elems[:0]
	for _, e := range elems {
		key := r.FormatForDisplay(e, t.Params[0])
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out, nil
}

func convertMap(r *TypeRegistry, value interface{}, t core.TypeExpression) (interface{}, error) {
	if len(t.Params) != 2 {
		return nil, fmt.Errorf("map requires exactly two type parameters")
	}

	if s, ok := value.(string); ok {
		decoded, err := decodeJSON(s)
		if err != nil {
			return nil, err
		}
		value = decoded
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("expected a JSON object, got %T", value)
	}

	out := make(map[interface{}]interface{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		rawKey := iter.Key().Interface()
		rawVal := iter.Value().Interface()

		key, err := r.convertRaw(rawKey, t.Params[0])
		if err != nil {
			return nil, fmt.Errorf("key %v: %w", rawKey, err)
		}
		if !reflect.TypeOf(key).Comparable() {
			return nil, fmt.Errorf("map keys of type %s are not supported", t.Params[0])
		}
		if rawVal == nil {
			return nil, fmt.Errorf("key %v: null values are not allowed", rawKey)
		}
		val, err := r.convertRaw(rawVal, t.Params[1])
		if err != nil {
			return nil, fmt.Errorf("key %v: %w", rawKey, err)
		}
		out[key] = val
	}
	return out, nil
}

func convertTuple(r *TypeRegistry, value interface{}, t core.TypeExpression) (interface{}, error) {
	elems, err := toSlice(value)
	if err != nil {
		return nil, err
	}
	if len(elems) != len(t.Params) {
		return nil, fmt.Errorf("tuple expects %d elements, got %d", len(t.Params), len(elems))
	}
	out := make([]interface{}, len(elems))
	for i, e := range elems {
		if e == nil {
			continue
		}
		v, err := r.convertRaw(e, t.Params[i])
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func toSlice(value interface{}) ([]interface{}, error) {
	if s, ok := value.(string); ok {
		decoded, err := decodeJSON(s)
		if err != nil {
			return nil, err
		}
		value = decoded
	}
	if elems, ok := value.([]interface{}); ok {
		return elems, nil
	}

	rv := reflect.ValueOf(value)
	if (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) || rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, fmt.Errorf("expected a JSON array, got %T", value)
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

func decodeJSON(s string) (interface{}, error) {
	var out interface{}
	if err := inputJSON.UnmarshalFromString(s, &out); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return out, nil
}
