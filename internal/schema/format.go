package schema

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"net"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/inf.v0"

	"github.com/rzpsarthak13/cqlbrowser/internal/core"
)

// displayJSON renders collections with sorted map keys and no HTML escaping.
var displayJSON = jsoniter.Config{
	SortMapKeys: true,
	EscapeHTML:  false,
}.Froze()

var jsonNumberPattern = regexp.MustCompile(`^-?(0|[1-9]\d*)(\.\d+)?([eE][+-]?\d+)?$`)

// FormatForDisplay renders a native value as text. It is the inverse of
// ConvertForWrite: collections render as JSON, blobs as lowercase hex and
// temporal values as ISO-8601. Null renders as the empty string.
func (r *TypeRegistry) FormatForDisplay(value interface{}, t core.TypeExpression) string {
	if isNull(value) {
		return ""
	}
	return r.Describe(t.Base).format(r, value, t)
}

// FormatColumn renders a row value for the given column.
func (r *TypeRegistry) FormatColumn(col core.Column, value interface{}) string {
	return r.FormatForDisplay(value, col.Type)
}

// FormatRow renders every value in row, keyed by column name. Columns the
// schema does not know are rendered with the opaque formatter.
func (r *TypeRegistry) FormatRow(schema *core.TableSchema, row core.Row) map[string]string {
	out := make(map[string]string, len(row))
	for name, value := range row {
		if col := schema.Column(name); col != nil {
			out[name] = r.FormatColumn(*col, value)
			continue
		}
		out[name] = r.FormatForDisplay(value, core.TypeExpression{})
	}
	return out
}

func isNull(value interface{}) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func formatInteger(_ *TypeRegistry, value interface{}, _ core.TypeExpression) string {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case *big.Int:
		return v.String()
	case json.Number:
		return v.String()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func formatVarint(r *TypeRegistry, value interface{}, t core.TypeExpression) string {
	switch v := value.(type) {
	case *big.Int:
		return v.String()
	case big.Int:
		return v.String()
	default:
		return formatInteger(r, value, t)
	}
}

func formatFloat(_ *TypeRegistry, value interface{}, _ core.TypeExpression) string {
	switch v := value.(type) {
	case float32:
		return shortestFloat(float64(v), 32)
	case float64:
		return shortestFloat(v, 64)
	case json.Number:
		return v.String()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// shortestFloat renders f in the fewest digits that parse back to f:
// plain notation for magnitudes in [1e-6, 1e21), exponent notation outside.
func shortestFloat(f float64, bitSize int) string {
	if abs := math.Abs(f); abs != 0 && !math.IsInf(f, 0) && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'e', -1, bitSize)
	}
	return strconv.FormatFloat(f, 'f', -1, bitSize)
}

func formatDecimal(_ *TypeRegistry, value interface{}, _ core.TypeExpression) string {
	switch v := value.(type) {
	case *inf.Dec:
		return v.String()
	case *big.Int:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func formatBool(_ *TypeRegistry, value interface{}, _ core.TypeExpression) string {
	if b, ok := value.(bool); ok {
		return strconv.FormatBool(b)
	}
	return fmt.Sprint(value)
}

func formatText(_ *TypeRegistry, value interface{}, _ core.TypeExpression) string {
	switch v := value.(type) {
	case string:
		return v
	case core.DurationLiteral:
		return string(v)
	case []byte:
		return string(v)
	case net.IP:
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func formatUUID(r *TypeRegistry, value interface{}, t core.TypeExpression) string {
	if b, ok := value.([16]byte); ok {
		return uuid.UUID(b).String()
	}
	return formatText(r, value, t)
}

func formatBlob(_ *TypeRegistry, value interface{}, _ core.TypeExpression) string {
	switch v := value.(type) {
	case []byte:
		return hex.EncodeToString(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func formatTimestamp(_ *TypeRegistry, value interface{}, _ core.TypeExpression) string {
	switch v := value.(type) {
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case int64:
		return time.UnixMilli(v).UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}

func formatDate(_ *TypeRegistry, value interface{}, _ core.TypeExpression) string {
	if t, ok := value.(time.Time); ok {
		return t.Format("2006-01-02")
	}
	return fmt.Sprint(value)
}

func formatTime(_ *TypeRegistry, value interface{}, _ core.TypeExpression) string {
	switch v := value.(type) {
	case time.Duration:
		return formatTimeOfDay(v)
	case int64:
		return formatTimeOfDay(time.Duration(v))
	case time.Time:
		h, m, s := v.Clock()
		return formatTimeOfDay(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
			time.Duration(s)*time.Second + time.Duration(v.Nanosecond()))
	default:
		return fmt.Sprint(v)
	}
}

func formatTimeOfDay(d time.Duration) string {
	if d < 0 {
		return d.String()
	}
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	out := fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	if ns := d % time.Second; ns > 0 {
		out += "." + strings.TrimRight(fmt.Sprintf("%09d", int64(ns)), "0")
	}
	return out
}

func formatFrozen(r *TypeRegistry, value interface{}, t core.TypeExpression) string {
	if len(t.Params) == 1 {
		return r.FormatForDisplay(value, t.Params[0])
	}
	return formatOpaque(r, value, t)
}

func formatOpaque(_ *TypeRegistry, value interface{}, _ core.TypeExpression) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Map || (rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8) {
		if b, err := displayJSON.Marshal(untypedJSON(value)); err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(value)
}

func formatCollection(r *TypeRegistry, value interface{}, t core.TypeExpression) string {
	b, err := displayJSON.Marshal(r.jsonCompatible(value, t))
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(b)
}

// jsonCompatible converts a native value of type t into plain JSON values.
// Numbers become json.Number so decimals and varints keep full precision,
// map keys become their display strings, and every other scalar becomes its
// display string.
func (r *TypeRegistry) jsonCompatible(value interface{}, t core.TypeExpression) interface{} {
	if isNull(value) {
		return nil
	}
	t = unfreeze(t)
	d := r.Describe(t.Base)

	rv := reflect.ValueOf(value)
	switch d.Kind {
	case KindList, KindSet, KindTuple:
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return untypedJSON(value)
		}
		out := make([]interface{}, rv.Len())
		for i := range out {
			elemType := t.Param(0)
			if d.Kind == KindTuple {
				elemType = t.Param(i)
			}
			out[i] = r.jsonCompatible(rv.Index(i).Interface(), elemType)
		}
		return out
	case KindMap:
		if rv.Kind() != reflect.Map {
			return untypedJSON(value)
		}
		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := r.FormatForDisplay(iter.Key().Interface(), t.Param(0))
			out[key] = r.jsonCompatible(iter.Value().Interface(), t.Param(1))
		}
		return out
	case KindBoolean:
		if b, ok := value.(bool); ok {
			return b
		}
	case KindTinyInt, KindSmallInt, KindInt, KindBigInt, KindCounter, KindVarint, KindFloat, KindDouble, KindDecimal:
		s := r.FormatForDisplay(value, t)
		if jsonNumberPattern.MatchString(s) {
			return json.Number(s)
		}
		return s
	case KindOpaque:
		return untypedJSON(value)
	}
	return r.FormatForDisplay(value, t)
}

// untypedJSON makes arbitrary maps marshalable by stringifying their keys.
func untypedJSON(value interface{}) interface{} {
	if isNull(value) {
		return nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map:
		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = untypedJSON(iter.Value().Interface())
		}
		return out
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return hex.EncodeToString(rv.Bytes())
		}
		out := make([]interface{}, rv.Len())
		for i := range out {
			out[i] = untypedJSON(rv.Index(i).Interface())
		}
		return out
	case reflect.Float32, reflect.Float64:
		if f := rv.Float(); math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Sprint(f)
		}
	}
	return value
}

func unfreeze(t core.TypeExpression) core.TypeExpression {
	for strings.EqualFold(t.Base, "frozen") && len(t.Params) == 1 {
		t = t.Params[0]
	}
	return t
}
