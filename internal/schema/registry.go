package schema

import (
	"strings"

	"github.com/google/uuid"

	"github.com/rzpsarthak13/cqlbrowser/internal/core"
)

// Kind is the closed set of CQL base-type families the registry understands.
type Kind int

const (
	// KindOpaque is the fallback for unknown types (including user-defined types).
	// Values are carried and displayed as strings.
	KindOpaque Kind = iota
	KindTinyInt
	KindSmallInt
	KindInt
	KindBigInt
	KindCounter
	KindVarint
	KindFloat
	KindDouble
	KindDecimal
	KindBoolean
	KindText
	KindASCII
	KindUUID
	KindTimeUUID
	KindTimestamp
	KindDate
	KindTime
	KindDuration
	KindBlob
	KindInet
	KindList
	KindSet
	KindMap
	KindTuple
	KindFrozen
)

var kindNames = map[Kind]string{
	KindOpaque:    "opaque",
	KindTinyInt:   "tinyint",
	KindSmallInt:  "smallint",
	KindInt:       "int",
	KindBigInt:    "bigint",
	KindCounter:   "counter",
	KindVarint:    "varint",
	KindFloat:     "float",
	KindDouble:    "double",
	KindDecimal:   "decimal",
	KindBoolean:   "boolean",
	KindText:      "text",
	KindASCII:     "ascii",
	KindUUID:      "uuid",
	KindTimeUUID:  "timeuuid",
	KindTimestamp: "timestamp",
	KindDate:      "date",
	KindTime:      "time",
	KindDuration:  "duration",
	KindBlob:      "blob",
	KindInet:      "inet",
	KindList:      "list",
	KindSet:       "set",
	KindMap:       "map",
	KindTuple:     "tuple",
	KindFrozen:    "frozen",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "opaque"
}

// IsCollection reports whether values of this kind are JSON-encoded for display.
func (k Kind) IsCollection() bool {
	switch k {
	case KindList, KindSet, KindMap, KindTuple:
		return true
	}
	return false
}

type convertFunc func(r *TypeRegistry, value interface{}, t core.TypeExpression) (interface{}, error)

type formatFunc func(r *TypeRegistry, value interface{}, t core.TypeExpression) string

// Descriptor describes how one CQL base type maps to Go.
type Descriptor struct {
	// Kind is the type family.
	Kind Kind

	// Name is the CQL base name the descriptor was registered under.
	Name string

	// NativeType names the Go type produced by ConvertForWrite.
	NativeType string

	// ReadOnly marks types that cannot be written with INSERT or UPDATE.
	ReadOnly bool

	// Placeholder is an input hint for editors.
	Placeholder string

	convert convertFunc
	format  formatFunc
}

// TypeRegistry converts between caller input, driver-native values and display
// strings for every CQL type. It is immutable after construction and safe for
// concurrent use.
type TypeRegistry struct {
	descriptors map[string]Descriptor
	opaque      Descriptor

	newRandomUUID func() (uuid.UUID, error)
	newTimeUUID   func() (uuid.UUID, error)
}

// NewTypeRegistry creates a registry populated with every built-in CQL type.
func NewTypeRegistry() *TypeRegistry {
	r := &TypeRegistry{
		descriptors:   make(map[string]Descriptor),
		newRandomUUID: uuid.NewRandom,
		newTimeUUID:   uuid.NewUUID,
		opaque: Descriptor{
			Kind:       KindOpaque,
			NativeType: "string",
			convert:    convertOpaque,
			format:     formatOpaque,
		},
	}

	r.register(Descriptor{Kind: KindTinyInt, Name: "tinyint", NativeType: "int8", convert: convertInteger, format: formatInteger})
	r.register(Descriptor{Kind: KindSmallInt, Name: "smallint", NativeType: "int16", convert: convertInteger, format: formatInteger})
	r.register(Descriptor{Kind: KindInt, Name: "int", NativeType: "int32", convert: convertInteger, format: formatInteger})
	r.register(Descriptor{Kind: KindBigInt, Name: "bigint", NativeType: "int64", convert: convertInteger, format: formatInteger})
	r.register(Descriptor{Kind: KindCounter, Name: "counter", NativeType: "int64", ReadOnly: true, convert: convertInteger, format: formatInteger})
	r.register(Descriptor{Kind: KindVarint, Name: "varint", NativeType: "*big.Int", convert: convertVarint, format: formatVarint})
	r.register(Descriptor{Kind: KindFloat, Name: "float", NativeType: "float32", convert: convertFloat, format: formatFloat})
	r.register(Descriptor{Kind: KindDouble, Name: "double", NativeType: "float64", convert: convertFloat, format: formatFloat})
	r.register(Descriptor{Kind: KindDecimal, Name: "decimal", NativeType: "*inf.Dec", convert: convertDecimal, format: formatDecimal})
	r.register(Descriptor{Kind: KindBoolean, Name: "boolean", NativeType: "bool", convert: convertBool, format: formatBool})
	r.register(Descriptor{Kind: KindText, Name: "text", NativeType: "string", convert: convertText, format: formatText})
	r.register(Descriptor{Kind: KindText, Name: "varchar", NativeType: "string", convert: convertText, format: formatText})
	r.register(Descriptor{Kind: KindASCII, Name: "ascii", NativeType: "string", convert: convertASCII, format: formatText})
	r.register(Descriptor{Kind: KindUUID, Name: "uuid", NativeType: "uuid.UUID", Placeholder: "UUID (auto-generated if empty)", convert: convertUUID, format: formatUUID})
	r.register(Descriptor{Kind: KindTimeUUID, Name: "timeuuid", NativeType: "uuid.UUID", Placeholder: "TimeUUID (auto-generated if empty)", convert: convertUUID, format: formatUUID})
	r.register(Descriptor{Kind: KindTimestamp, Name: "timestamp", NativeType: "time.Time", Placeholder: "2006-01-02T15:04:05Z", convert: convertTimestamp, format: formatTimestamp})
	r.register(Descriptor{Kind: KindDate, Name: "date", NativeType: "time.Time", Placeholder: "2006-01-02", convert: convertDate, format: formatDate})
	r.register(Descriptor{Kind: KindTime, Name: "time", NativeType: "time.Duration", Placeholder: "15:04:05", convert: convertTime, format: formatTime})
	r.register(Descriptor{Kind: KindDuration, Name: "duration", NativeType: "core.DurationLiteral", Placeholder: "1h30m", convert: convertDuration, format: formatText})
	r.register(Descriptor{Kind: KindBlob, Name: "blob", NativeType: "[]byte", Placeholder: "Hex string", convert: convertBlob, format: formatBlob})
	r.register(Descriptor{Kind: KindInet, Name: "inet", NativeType: "string", Placeholder: "IP address", convert: convertInet, format: formatText})
	r.register(Descriptor{Kind: KindList, Name: "list", NativeType: "[]interface{}", Placeholder: `JSON array: ["item1", "item2"]`, convert: convertList, format: formatCollection})
	r.register(Descriptor{Kind: KindSet, Name: "set", NativeType: "[]interface{}", Placeholder: `JSON array: ["item1", "item2"]`, convert: convertSet, format: formatCollection})
	r.register(Descriptor{Kind: KindMap, Name: "map", NativeType: "map[interface{}]interface{}", Placeholder: `JSON object: {"key": "value"}`, convert: convertMap, format: formatCollection})
	r.register(Descriptor{Kind: KindTuple, Name: "tuple", NativeType: "[]interface{}", Placeholder: "JSON array", convert: convertTuple, format: formatCollection})
	r.register(Descriptor{Kind: KindFrozen, Name: "frozen", NativeType: "", convert: convertFrozen, format: formatFrozen})

	return r
}

func (r *TypeRegistry) register(d Descriptor) {
	r.descriptors[d.Name] = d
}

// Describe returns the descriptor for a base type name. Unknown names yield
// the opaque descriptor rather than an error.
func (r *TypeRegistry) Describe(base string) Descriptor {
	if d, ok := r.descriptors[strings.ToLower(strings.TrimSpace(base))]; ok {
		return d
	}
	d := r.opaque
	d.Name = base
	return d
}

// Resolve returns the descriptor for a full expression, looking through
// frozen wrappers.
func (r *TypeRegistry) Resolve(t core.TypeExpression) Descriptor {
	d := r.Describe(t.Base)
	if d.Kind == KindFrozen && len(t.Params) == 1 {
		return r.Resolve(t.Params[0])
	}
	return d
}

// IsReadOnly reports whether columns of this type reject writes.
func (r *TypeRegistry) IsReadOnly(t core.TypeExpression) bool {
	return r.Resolve(t).ReadOnly
}

// AutoGenerates reports whether an empty value for this type is replaced by a
// freshly generated one instead of being omitted.
func (r *TypeRegistry) AutoGenerates(t core.TypeExpression) bool {
	k := r.Resolve(t).Kind
	return k == KindUUID || k == KindTimeUUID
}
