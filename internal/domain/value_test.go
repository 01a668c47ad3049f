package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestFromAny_Numbers(t *testing.T) {
	if i, ok := FromAny(float64(5)).AsInt(); !ok || i != 5 {
		t.Fatal("integral float64 should become an integer")
	}
	if f, ok := FromAny(5.5).AsFloat(); !ok || f != 5.5 {
		t.Fatal("fractional float64 should stay a float")
	}
	if i, ok := FromAny(json.Number("9007199254740993")).AsInt(); !ok || i != 9007199254740993 {
		t.Fatal("json.Number should keep integer precision")
	}
	if f, ok := FromAny(json.Number("2.5")).AsFloat(); !ok || f != 2.5 {
		t.Fatal("json.Number with a fraction should become a float")
	}
}

func TestFromAny_Structures(t *testing.T) {
	v := FromAny(map[string]any{
		"name":  "x",
		"tags":  []any{"a", "b"},
		"count": 3,
	})
	if v.Kind() != KindMap {
		t.Fatalf("expected map, got %s", v.Kind())
	}
	tags, ok := v.MapGet("tags").AsList()
	if !ok || len(tags) != 2 {
		t.Fatalf("nested list lost: %s", v.Render())
	}
	if i, _ := v.MapGet("count").AsInt(); i != 3 {
		t.Fatalf("nested int lost: %s", v.MapGet("count").Render())
	}
}

func TestFromAny_PassThrough(t *testing.T) {
	original := IntValue(7)
	if got := FromAny(original); !reflect.DeepEqual(got, original) {
		t.Fatal("Value input should pass through unchanged")
	}
	ent := &Entity{Kind: "agent", ID: "1"}
	if got, ok := FromAny(ent).AsEntity(); !ok || got != ent {
		t.Fatal("entity input should pass through")
	}
	if !FromAny(nil).IsAbsent() {
		t.Fatal("nil should be absent")
	}
}

func TestToAny(t *testing.T) {
	ent := &Entity{Kind: "agent", ID: "1", Name: "scout"}
	v := MapValue(map[string]Value{
		"who":  EntityValue(ent),
		"n":    IntValue(2),
		"tags": ListValue([]Value{StringValue("a")}),
	})
	out, ok := v.ToAny().(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", v.ToAny())
	}
	who, ok := out["who"].(map[string]any)
	if !ok || who["id"] != "1" || who["kind"] != "agent" {
		t.Fatalf("entity reference form wrong: %v", out["who"])
	}
	if out["n"] != int64(2) {
		t.Fatalf("int lost: %v", out["n"])
	}
}

func TestMapGet(t *testing.T) {
	v := MapValue(map[string]Value{"a": IntValue(1)})
	if v.MapGet("missing").Kind() != KindAbsent {
		t.Fatal("missing key should be absent")
	}
	if StringValue("x").MapGet("a").Kind() != KindAbsent {
		t.Fatal("MapGet on a non-map should be absent")
	}
}

func TestRender(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{StringValue("hi"), "hi"},
		{IntValue(-3), "-3"},
		{BoolValue(true), "true"},
		{ListValue([]Value{IntValue(1), IntValue(2)}), "1, 2"},
		{MapValue(map[string]Value{"b": IntValue(2), "a": IntValue(1)}), "a=1, b=2"},
		{EntityValue(&Entity{Kind: "agent", ID: "1", Name: "scout"}), "agent:1 (scout)"},
		{Absent(), ""},
	}
	for _, tc := range cases {
		if got := tc.v.Render(); got != tc.want {
			t.Fatalf("render %s: expected %q, got %q", tc.v.Kind(), tc.want, got)
		}
	}
}
