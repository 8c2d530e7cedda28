package interpreter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axarion/axscript/pkg/types"
)

func TestTruthy(t *testing.T) {
	tests := []struct {
		value    Value
		expected bool
	}{
		{Undefined{}, false},
		{Null{}, false},
		{Bool{Value: false}, false},
		{Bool{Value: true}, true},
		{Number{Value: 0}, false},
		{Number{Value: math.NaN()}, false},
		{Number{Value: -0.5}, true},
		{String{Value: ""}, false},
		{String{Value: "0"}, true},
		{NewArray(nil), false},
		{NewArray([]Value{Null{}}), true},
		{NewObject(), true},
		{&Instance{Class: &Class{Name: "C"}, Props: NewObject()}, true},
	}

	for i, tt := range tests {
		if got := Truthy(tt.value); got != tt.expected {
			t.Errorf("test %d: Truthy(%v) = %v, want %v", i, tt.value, got, tt.expected)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[float64]string{
		7:                    "7",
		-3:                   "-3",
		2.5:                  "2.5",
		0.30000000000000004:  "0.30000000000000004",
		math.Copysign(0, -1): "0",
		1e21:                 "1e+21",
		math.Inf(1):          "Infinity",
		math.Inf(-1):         "-Infinity",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatNumber(in))
	}
	assert.Equal(t, "NaN", FormatNumber(math.NaN()))
}

func TestInferTypeOnCyclicArray(t *testing.T) {
	arr := NewArray(nil)
	arr.Elements = append(arr.Elements, arr)

	got := InferType(arr)
	assert.Equal(t, types.KindArray, got.Kind)
	require.NotNil(t, got.Elem)
}

func TestToNativeOnCyclicValues(t *testing.T) {
	arr := NewArray(nil)
	arr.Elements = append(arr.Elements, arr, Number{Value: 1})
	native, ok := ToNative(arr).([]any)
	require.True(t, ok)
	assert.Len(t, native, 2)
	assert.Equal(t, 1.0, native[1])

	obj := NewObject()
	obj.Set("self", obj)
	m, ok := ToNative(obj).(map[string]any)
	require.True(t, ok)
	assert.Contains(t, m, "self")
}

func TestToDisplayString(t *testing.T) {
	obj := NewObject(KeyValue{Key: "b", Value: Number{Value: 1}}, KeyValue{Key: "a", Value: String{Value: "x"}})
	inst := &Instance{Class: &Class{Name: "Point"}, Props: NewObject(KeyValue{Key: "x", Value: Number{Value: 2}})}

	assert.Equal(t, `[1, "two", null, [true]]`, ToDisplayString(NewArray([]Value{
		Number{Value: 1}, String{Value: "two"}, Null{}, NewArray([]Value{Bool{Value: true}}),
	})))
	assert.Equal(t, `{b: 1, a: "x"}`, ToDisplayString(obj))
	assert.Equal(t, "Point {x: 2}", ToDisplayString(inst))
	assert.Equal(t, "<function add>", ToDisplayString(&Function{Name: "add"}))
	assert.Equal(t, "undefined", ToDisplayString(Undefined{}))

	self := NewArray(nil)
	self.Elements = append(self.Elements, self)
	assert.Contains(t, ToDisplayString(self), "...")
}

func TestEqual(t *testing.T) {
	arr := NewArray(nil)
	assert.True(t, Equal(Null{}, Undefined{}, false))
	assert.False(t, Equal(Null{}, Undefined{}, true))
	assert.True(t, Equal(arr, arr, true))
	assert.False(t, Equal(arr, NewArray(nil), false))
	assert.False(t, Equal(Number{Value: 1}, String{Value: "1"}, false))
	assert.False(t, Equal(Number{Value: math.NaN()}, Number{Value: math.NaN()}, true))
}

func TestObjectKeepsInsertionOrder(t *testing.T) {
	o := NewObject()
	o.Set("z", Number{Value: 1})
	o.Set("a", Number{Value: 2})
	o.Set("z", Number{Value: 3})
	assert.Equal(t, []string{"z", "a"}, o.Keys())
	v, ok := o.Get("z")
	require.True(t, ok)
	assert.Equal(t, Number{Value: 3}, v)
	assert.False(t, o.Has("missing"))
}

func TestEnvNamespaces(t *testing.T) {
	global := NewEnv(nil)
	global.Define("x", Number{Value: 1})
	global.DefineFunction("x", &Function{Name: "x"})
	global.DefineClass("X", &Class{Name: "X"})
	child := global.Child()

	v, err := child.Get("x")
	require.NoError(t, err)
	assert.Equal(t, Number{Value: 1}, v)
	_, ok := child.LookupFunction("x")
	assert.True(t, ok)
	_, ok = child.LookupClass("X")
	assert.True(t, ok)

	_, err = child.Get("nope")
	assert.EqualError(t, err, "Undefined variable: nope")

	child.Set("x", Number{Value: 2})
	v, _ = global.Get("x")
	assert.Equal(t, Number{Value: 2}, v, "Set updates the defining scope")

	child.Set("fresh", Bool{Value: true})
	assert.True(t, child.Has("fresh"))
	assert.False(t, global.Has("fresh"))
	assert.False(t, global.Update("fresh", Null{}))
}

func TestInferTypeAndConforms(t *testing.T) {
	animal := &Class{Name: "Animal"}
	dog := &Class{Name: "Dog", Super: animal}
	rex := &Instance{Class: dog, Props: NewObject()}

	assert.Equal(t, "number[]", InferType(NewArray([]Value{Number{Value: 1}, Number{Value: 2}})).String())
	assert.Equal(t, "any[]", InferType(NewArray([]Value{Number{Value: 1}, String{Value: "a"}})).String())
	assert.Equal(t, "Dog", InferType(rex).String())

	assert.True(t, conforms(rex, types.Class("Animal")))
	assert.False(t, conforms(&Instance{Class: animal, Props: NewObject()}, types.Class("Dog")))
	assert.True(t, conforms(NewArray([]Value{Number{Value: 1}}), types.ArrayOf(types.Number())))
	assert.False(t, conforms(NewArray([]Value{Bool{Value: true}}), types.ArrayOf(types.Number())))
	assert.True(t, conforms(String{Value: "5"}, types.Number()))
}

func TestJSON(t *testing.T) {
	v, err := ParseJSON([]byte(`{"b": [1, 2.5, "x"], "a": {"n": null, "t": true}}`))
	require.NoError(t, err)
	obj := v.(*Object)
	assert.Equal(t, []string{"b", "a"}, obj.Keys())

	out, err := ValueToJSON(v, "")
	require.NoError(t, err)
	assert.Equal(t, `{"b":[1,2.5,"x"],"a":{"n":null,"t":true}}`, string(out))

	out, err = ValueToJSON(NewArray([]Value{Undefined{}, Number{Value: math.NaN()}, &Function{}}), "")
	require.NoError(t, err)
	assert.Equal(t, `[null,null,null]`, string(out))

	out, err = ValueToJSON(NewObject(KeyValue{Key: "k", Value: Number{Value: 1}}), "  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"k\": 1\n}", string(out))

	_, err = ParseJSON([]byte(`{"a": 1} trailing`))
	assert.Error(t, err)
	_, err = ParseJSON([]byte(`{"a": `))
	assert.Error(t, err)
}

func TestNativeConversion(t *testing.T) {
	v := FromNative(map[string]any{"y": 2.0, "x": []any{"a", true, nil}})
	assert.Equal(t, `{x: ["a", true, null], y: 2}`, ToDisplayString(v))
	assert.Equal(t, map[string]any{"x": []any{"a", true, nil}, "y": 2.0}, ToNative(v))

	type host struct{ id int }
	h := &host{id: 1}
	wrapped := FromNative(h)
	assert.Equal(t, h, ToNative(wrapped))
}
