package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the declared type of an index metadata field.
type Kind string

const (
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindBool   Kind = "bool"
	KindJSON   Kind = "json"
)

// Field is one (name, type) entry of an index's fixed metadata schema.
// The text body, vector and primary-key fields are never part of a schema.
type Field struct {
	Name string
	Kind Kind
}

// Value is a tagged scalar (or structured) metadata value. The zero Value
// is an empty string.
type Value struct {
	kind Kind
	str  string
	num  int64
	flt  float64
	bl   bool
	obj  map[string]any
}

func StringValue(s string) Value  { return Value{kind: KindString, str: s} }
func IntValue(i int64) Value      { return Value{kind: KindInt, num: i} }
func FloatValue(f float64) Value  { return Value{kind: KindFloat, flt: f} }
func BoolValue(b bool) Value      { return Value{kind: KindBool, bl: b} }
func JSONValue(m map[string]any) Value {
	if m == nil {
		m = map[string]any{}
	}
	return Value{kind: KindJSON, obj: m}
}

// FromAny converts an arbitrary decoded value (e.g. from JSON) into a
// tagged Value. Unknown types are stringified.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return StringValue("")
	case string:
		return StringValue(t)
	case bool:
		return BoolValue(t)
	case int:
		return IntValue(int64(t))
	case int32:
		return IntValue(int64(t))
	case int64:
		return IntValue(t)
	case float32:
		return FloatValue(float64(t))
	case float64:
		// JSON numbers decode as float64; keep integral ones as ints.
		if t == float64(int64(t)) {
			return IntValue(int64(t))
		}
		return FloatValue(t)
	case map[string]any:
		return JSONValue(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return IntValue(i)
		}
		if f, err := t.Float64(); err == nil {
			return FloatValue(f)
		}
		return StringValue(t.String())
	default:
		return StringValue(fmt.Sprintf("%v", v))
	}
}

func (v Value) Kind() Kind {
	if v.kind == "" {
		return KindString
	}
	return v.kind
}

// String returns the value rendered as a string, regardless of kind.
func (v Value) String() string {
	switch v.Kind() {
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.flt, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.bl)
	case KindJSON:
		b, err := json.Marshal(v.obj)
		if err != nil {
			return "{}"
		}
		return string(b)
	default:
		return v.str
	}
}

func (v Value) Int() int64           { return v.num }
func (v Value) Float() float64      { return v.flt }
func (v Value) Bool() bool          { return v.bl }
func (v Value) JSON() map[string]any { return v.obj }

// Any unwraps the value into its plain Go representation.
func (v Value) Any() any {
	switch v.Kind() {
	case KindInt:
		return v.num
	case KindFloat:
		return v.flt
	case KindBool:
		return v.bl
	case KindJSON:
		if v.obj == nil {
			return map[string]any{}
		}
		return v.obj
	default:
		return v.str
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = FromAny(raw)
	return nil
}

// Metadata is a document's tagged metadata mapping.
type Metadata map[string]Value

// Any flattens the mapping into plain Go values, e.g. for JSON payloads.
func (m Metadata) Any() map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Any()
	}
	return out
}

// MetadataFromAny builds tagged metadata from a plain mapping.
func MetadataFromAny(m map[string]any) Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = FromAny(v)
	}
	return out
}

// ZeroOf returns the defined default for a kind: "" / 0 / 0.0 / false / {}.
func ZeroOf(k Kind) Value {
	switch k {
	case KindInt:
		return IntValue(0)
	case KindFloat:
		return FloatValue(0)
	case KindBool:
		return BoolValue(false)
	case KindJSON:
		return JSONValue(map[string]any{})
	default:
		return StringValue("")
	}
}

var truthy = map[string]bool{"true": true, "1": true, "yes": true, "y": true, "t": true}

// CastToKind coerces a value into the given kind. The cast is total: any
// value that cannot be represented collapses to the kind's zero value
// instead of failing.
func CastToKind(v Value, k Kind) Value {
	if v.Kind() == k {
		return v
	}
	switch k {
	case KindString:
		return StringValue(v.String())
	case KindInt:
		switch v.Kind() {
		case KindFloat:
			return IntValue(int64(v.flt))
		case KindBool:
			if v.bl {
				return IntValue(1)
			}
			return IntValue(0)
		case KindString:
			s := strings.TrimSpace(v.str)
			if s == "" {
				return ZeroOf(k)
			}
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return IntValue(i)
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return IntValue(int64(f))
			}
			return ZeroOf(k)
		default:
			return ZeroOf(k)
		}
	case KindFloat:
		switch v.Kind() {
		case KindInt:
			return FloatValue(float64(v.num))
		case KindBool:
			if v.bl {
				return FloatValue(1)
			}
			return FloatValue(0)
		case KindString:
			s := strings.TrimSpace(v.str)
			if s == "" {
				return ZeroOf(k)
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return FloatValue(f)
			}
			return ZeroOf(k)
		default:
			return ZeroOf(k)
		}
	case KindBool:
		switch v.Kind() {
		case KindString:
			return BoolValue(truthy[strings.ToLower(strings.TrimSpace(v.str))])
		case KindInt:
			return BoolValue(v.num != 0)
		case KindFloat:
			return BoolValue(v.flt != 0)
		default:
			return ZeroOf(k)
		}
	case KindJSON:
		// Scalars have no structured representation.
		return ZeroOf(k)
	default:
		return StringValue(v.String())
	}
}
