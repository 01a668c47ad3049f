package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindAbsent Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindList
	KindMap
	KindEntity
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "boolean"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindEntity:
		return "entity"
	}
	return "unknown"
}

// Value is a tagged union over the types a context slot can hold:
// string, integer, float, boolean, ordered list, mapping, or a resolved
// entity. Coercion, resolution, and validation all switch on Kind instead
// of reflecting over any.
type Value struct {
	kind Kind
	str  string
	i    int64
	f    float64
	b    bool
	list []Value
	m    map[string]Value
	ent  *Entity
}

func Absent() Value               { return Value{kind: KindAbsent} }
func StringValue(s string) Value  { return Value{kind: KindString, str: s} }
func IntValue(i int64) Value      { return Value{kind: KindInt, i: i} }
func FloatValue(f float64) Value  { return Value{kind: KindFloat, f: f} }
func BoolValue(b bool) Value      { return Value{kind: KindBool, b: b} }
func ListValue(vs []Value) Value  { return Value{kind: KindList, list: vs} }
func EntityValue(e *Entity) Value { return Value{kind: KindEntity, ent: e} }

func MapValue(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: KindMap, m: m}
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Str returns the string variant, or "" when the value is not a string.
func (v Value) Str() string { return v.str }

func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }
func (v Value) AsInt() (int64, bool)     { return v.i, v.kind == KindInt }
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }
func (v Value) AsBool() (bool, bool)     { return v.b, v.kind == KindBool }

func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}

func (v Value) AsMap() (map[string]Value, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.m, true
}

func (v Value) AsEntity() (*Entity, bool) {
	if v.kind != KindEntity {
		return nil, false
	}
	return v.ent, true
}

// MapGet looks up a key inside a map value. Returns Absent for non-maps
// and missing keys.
func (v Value) MapGet(key string) Value {
	if v.kind != KindMap {
		return Absent()
	}
	got, ok := v.m[key]
	if !ok {
		return Absent()
	}
	return got
}

// FromAny converts a decoded JSON/YAML value into a Value. Numbers decoded
// as json.Number keep their integer-ness; plain float64 values with no
// fractional part become integers, matching how textual input is coerced.
func FromAny(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Absent()
	case Value:
		return t
	case *Entity:
		return EntityValue(t)
	case string:
		return StringValue(t)
	case bool:
		return BoolValue(t)
	case int:
		return IntValue(int64(t))
	case int64:
		return IntValue(t)
	case float64:
		if t == float64(int64(t)) {
			return IntValue(int64(t))
		}
		return FloatValue(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return IntValue(i)
		}
		if f, err := t.Float64(); err == nil {
			return FloatValue(f)
		}
		return StringValue(t.String())
	case []any:
		out := make([]Value, 0, len(t))
		for _, el := range t {
			out = append(out, FromAny(el))
		}
		return ListValue(out)
	case map[string]any:
		out := make(map[string]Value, len(t))
		for k, el := range t {
			out[k] = FromAny(el)
		}
		return MapValue(out)
	default:
		return StringValue(fmt.Sprint(t))
	}
}

// ToAny converts a Value back into plain Go data for serialization.
// Entities flatten to their reference form.
func (v Value) ToAny() any {
	switch v.kind {
	case KindAbsent:
		return nil
	case KindString:
		return v.str
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindList:
		out := make([]any, 0, len(v.list))
		for _, el := range v.list {
			out = append(out, el.ToAny())
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, el := range v.m {
			out[k] = el.ToAny()
		}
		return out
	case KindEntity:
		return map[string]any{"kind": v.ent.Kind, "id": v.ent.ID, "name": v.ent.Name}
	}
	return nil
}

// Render returns a human-readable form of the value for output and logs.
func (v Value) Render() string {
	switch v.kind {
	case KindAbsent:
		return ""
	case KindString:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		parts := make([]string, 0, len(v.list))
		for _, el := range v.list {
			parts = append(parts, el.Render())
		}
		return strings.Join(parts, ", ")
	case KindMap:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+v.m[k].Render())
		}
		return strings.Join(parts, ", ")
	case KindEntity:
		return fmt.Sprintf("%s:%s (%s)", v.ent.Kind, v.ent.ID, v.ent.Name)
	}
	return ""
}
