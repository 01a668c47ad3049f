package capability

import (
	"encoding/json"
	"strconv"
	"strings"

	"caprun/internal/domain"
)

// CoerceScalar converts raw textual input into a typed value. Rules apply
// in order: structured (JSON) parse, true/false/null literals
// (case-insensitive), numeric token, trimmed string.
func CoerceScalar(raw string) domain.Value {
	trimmed := strings.TrimSpace(raw)

	if v, ok := tryParseStructured(trimmed); ok {
		return v
	}

	switch strings.ToLower(trimmed) {
	case "true":
		return domain.BoolValue(true)
	case "false":
		return domain.BoolValue(false)
	case "null":
		return domain.Absent()
	}

	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return domain.IntValue(i)
	}
	if !strings.Contains(trimmed, ".") {
		// Only a decimal point makes a numeric token a float.
		return domain.StringValue(trimmed)
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return domain.FloatValue(f)
	}

	return domain.StringValue(trimmed)
}

// tryParseStructured attempts a strict JSON parse of the full token.
func tryParseStructured(s string) (domain.Value, bool) {
	if s == "" {
		return domain.Absent(), false
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return domain.Absent(), false
	}
	if dec.More() {
		// Trailing garbage after the first value: not a well-formed token.
		return domain.Absent(), false
	}
	return domain.FromAny(raw), true
}

// ApplyType applies the declared context type as the authoritative second
// cast over an already-coerced value. Unparseable casts leave the value
// unchanged so validation can report the mismatch.
func ApplyType(v domain.Value, t domain.ContextType) domain.Value {
	ts := string(t)
	switch {
	case strings.HasPrefix(ts, string(domain.TypeBoolean)):
		return castBool(v)
	case strings.HasPrefix(ts, string(domain.TypeInteger)):
		if v.Kind() == domain.KindList {
			// Arrays pass through rather than being flattened.
			return v
		}
		return castInt(v)
	case strings.HasPrefix(ts, string(domain.TypeFloat)):
		return castFloat(v)
	case t == domain.TypeList:
		return castList(v)
	default:
		return v
	}
}

func castBool(v domain.Value) domain.Value {
	switch v.Kind() {
	case domain.KindBool:
		return v
	case domain.KindInt:
		i, _ := v.AsInt()
		return domain.BoolValue(i != 0)
	case domain.KindFloat:
		f, _ := v.AsFloat()
		return domain.BoolValue(f != 0)
	case domain.KindString:
		s := strings.ToLower(strings.TrimSpace(v.Str()))
		return domain.BoolValue(s != "" && s != "false" && s != "0")
	case domain.KindAbsent:
		return v
	default:
		return v
	}
}

func castInt(v domain.Value) domain.Value {
	switch v.Kind() {
	case domain.KindInt:
		return v
	case domain.KindFloat:
		f, _ := v.AsFloat()
		return domain.IntValue(int64(f))
	case domain.KindBool:
		if b, _ := v.AsBool(); b {
			return domain.IntValue(1)
		}
		return domain.IntValue(0)
	case domain.KindString:
		if i, err := strconv.ParseInt(strings.TrimSpace(v.Str()), 10, 64); err == nil {
			return domain.IntValue(i)
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(v.Str()), 64); err == nil {
			return domain.IntValue(int64(f))
		}
		return v
	default:
		return v
	}
}

func castFloat(v domain.Value) domain.Value {
	switch v.Kind() {
	case domain.KindFloat:
		return v
	case domain.KindInt:
		i, _ := v.AsInt()
		return domain.FloatValue(float64(i))
	case domain.KindString:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v.Str()), 64); err == nil {
			return domain.FloatValue(f)
		}
		return v
	default:
		return v
	}
}

// castList splits a string on commas, trimming elements and dropping empty
// ones. An already-structured list is never stringified or re-split.
func castList(v domain.Value) domain.Value {
	switch v.Kind() {
	case domain.KindList:
		return v
	case domain.KindString:
		parts := strings.Split(v.Str(), ",")
		out := make([]domain.Value, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			out = append(out, domain.StringValue(p))
		}
		return domain.ListValue(out)
	default:
		return v
	}
}
