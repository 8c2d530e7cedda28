package stdlib_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axarion/axscript/pkg/diagnostics"
	"github.com/axarion/axscript/pkg/interpreter"
	"github.com/axarion/axscript/pkg/parser"
	"github.com/axarion/axscript/pkg/stdlib"
)

func opts(modules *stdlib.ModuleSystem) interpreter.ExecOptions {
	return interpreter.ExecOptions{
		Builtins:   stdlib.Defaults().All(),
		Globals:    stdlib.Globals(),
		Prototypes: stdlib.Prototypes(),
		Modules:    modules,
	}
}

func exec(t *testing.T, src string) (*interpreter.ExecResult, error) {
	t.Helper()
	prog, diags := parser.Parse(src, "stdlib_test.axs")
	require.Empty(t, diags, "parse errors: %s", diagnostics.FormatDiagnostics(diags, true))
	return interpreter.Execute(context.Background(), prog, opts(stdlib.Standard()))
}

func output(t *testing.T, src string) string {
	t.Helper()
	res, err := exec(t, src)
	require.NoError(t, err)
	return strings.Join(res.Output, "\n")
}

func failure(t *testing.T, src string) *interpreter.RuntimeError {
	t.Helper()
	_, err := exec(t, src)
	require.Error(t, err)
	var rt *interpreter.RuntimeError
	require.True(t, errors.As(err, &rt), "expected RuntimeError, got %T: %v", err, err)
	return rt
}

func TestMathModule(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"print(Math.floor(2.7), Math.ceil(2.1), Math.abs(-3));", "2 3 3"},
		{"print(Math.round(2.5), Math.round(-2.5), Math.round(1.4));", "3 -2 1"},
		{"print(Math.max(1, 5, 3), Math.min([4, 2, 9]));", "5 2"},
		{"print(Math.pow(2, 10), Math.sqrt(16), Math.sign(-3));", "1024 4 -1"},
		{"print(Math.PI > 3.14 && Math.PI < 3.15, Math.E > 2.71);", "true true"},
		{"print(Math.atan2(0, 1), Math.log(1), Math.exp(0));", "0 0 1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, output(t, "import Math;\n"+tt.src), tt.src)
	}
}

func TestMathErrors(t *testing.T) {
	rt := failure(t, "import Math; Math.sqrt(-1);")
	assert.Equal(t, "Cannot take square root of negative number", rt.Message)

	rt = failure(t, "import Math; Math.max();")
	assert.Equal(t, "max() requires at least one argument", rt.Message)

	rt = failure(t, `import Math; Math.floor("x");`)
	assert.Equal(t, diagnostics.EType, rt.Code)

	assert.Equal(t, "caught", output(t, `
import Math;
try { Math.sqrt(-4); } catch (e) { print("caught"); }
`))
}

func TestMathRandomRanges(t *testing.T) {
	out := output(t, `
import { randint, random, choice } from "Math";
var ok = true;
for (var i = 0; i < 200; i++) {
  var n = randint(1, 3);
  var r = random();
  var c = choice(["a", "b"]);
  if (n < 1 || n > 3 || n != floor(n)) { ok = false; }
  if (r < 0 || r >= 1) { ok = false; }
  if (c != "a" && c != "b") { ok = false; }
}
print(ok);
`)
	assert.Equal(t, "true", out)
}

func TestStringModule(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`print(String.toUpperCase("straße"), "MiXeD".toLowerCase());`, "STRASSE mixed"},
		{`print("  pad  ".trim() + "|", "  a".trimStart(), "b  ".trimEnd() + "|");`, "pad| a b|"},
		{`print("a,b,c".split(","), "abc".split(""));`, `["a", "b", "c"] ["a", "b", "c"]`},
		{`print(String.join(["x", 1, null], "-"), ",".join([1, 2]));`, "x-1- 1,2"},
		{`print("aXbX".replace("X", "_"));`, "a_bX"},
		{`print("héllo".indexOf("l"), "héllo".lastIndexOf("l"), "abc".indexOf("z"), "abcabc".indexOf("a", 1));`, "2 3 -1 3"},
		{`print("héllo".charAt(1), "abc".charAt(9) == "");`, "é true"},
		{`print("hello".substring(1, 3), "hello".substring(4, 1), "hello".substring(-2, 2), "hello".substring(3));`, "el ell he lo"},
		{`print(String.length("héllo"), "abc".includes("b"), "abc".startsWith("ab"), "abc".endsWith("bc"));`, "5 true true true"},
		{`print("ab".repeat(3), "5".padStart(3, "0"), "x".padEnd(4, "ab") + "|");`, "ababab 005 xaba|"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, output(t, "import String;\n"+tt.src), tt.src)
	}
}

func TestStringRegex(t *testing.T) {
	out := output(t, `
print("abc123def".search("[0-9]+"));
print("héllo".search("l+"));
print("a1b22c333".match("[0-9]+", "g"));
print("2024-10".match("([0-9]+)-([0-9]+)"));
print("nothing".match("[0-9]"));
print("Hello".test("^hello$", "i"), "Hello".test("^hello$"));
print("one\ntwo".test("^two$", "m"));
`)
	assert.Equal(t, strings.Join([]string{
		"3",
		"2",
		`["1", "22", "333"]`,
		`["2024-10", "2024", "10"]`,
		"null",
		"true false",
		"true",
	}, "\n"), out)

	rt := failure(t, `"x".test("x", "q");`)
	assert.Equal(t, "Invalid regular expression flag 'q'", rt.Message)

	rt = failure(t, `"x".test("(");`)
	assert.Contains(t, rt.Message, "Invalid regular expression /(/")

	assert.Equal(t, `["a", "A", "a"] 3`, output(t, `
import String;
print(String.match("aAa", "a", "gi"), String.search("xA\nA", "^a", "im"));
`))
}

func TestArrayMutators(t *testing.T) {
	out := output(t, `
var a = [1, 2, 3];
print(a.push(4, 5), a);
print(a.pop(), a.shift(), a);
print(a.unshift(0), a);
print([].pop(), [].shift());
var b = [1, 2, 3, 4, 5];
print(b.splice(1, 2), b);
print(b.splice(1, 0, "x", "y"), b);
print(b.splice(-1), b);
`)
	assert.Equal(t, strings.Join([]string{
		"5 [1, 2, 3, 4, 5]",
		"5 1 [2, 3, 4]",
		"4 [0, 2, 3, 4]",
		"null null",
		"[2, 3] [1, 4, 5]",
		`[] [1, "x", "y", 4, 5]`,
		`[5] [1, "x", "y", 4]`,
	}, "\n"), out)
}

func TestArrayQueries(t *testing.T) {
	out := output(t, `
var a = [10, 20, 30, 40];
print(a.slice(1, 3), a.slice(-2), a.slice(), a.slice(3, 1));
print(a.indexOf(30), a.indexOf("30"), a.includes(40), a.length);
print(a.join(), a.join(" - "), [1, null, 2].join());
print(a.concat([50], 60, [[70]]));
`)
	assert.Equal(t, strings.Join([]string{
		"[20, 30] [30, 40] [10, 20, 30, 40] []",
		"2 -1 true 4",
		"10,20,30,40 10 - 20 - 30 - 40 1,,2",
		"[10, 20, 30, 40, 50, 60, [70]]",
	}, "\n"), out)
}

func TestArrayCallbacks(t *testing.T) {
	out := output(t, `
var nums = [1, 2, 3, 4, 5];
print(nums.filter(function(n) { return n % 2 == 1; }));
print(nums.map(function(n, i) { return n * i; }));
print(nums.reduce(function(acc, n) { return acc + n; }));
print(nums.reduce(function(acc, n) { return acc + n; }, 100));
print(nums.find(function(n) { return n > 3; }), nums.find(function(n) { return n > 9; }));
print(nums.findIndex(function(n) { return n == 3; }));
print(nums.some(function(n) { return n > 4; }), nums.every(function(n) { return n > 4; }));
var seen = "";
nums.forEach(function(n, i, arr) { seen = seen + n + "/" + len(arr) + " "; });
print(seen);
`)
	assert.Equal(t, strings.Join([]string{
		"[1, 3, 5]",
		"[0, 2, 6, 12, 20]",
		"15",
		"115",
		"4 null",
		"2",
		"true false",
		"1/5 2/5 3/5 4/5 5/5 ",
	}, "\n"), out)

	rt := failure(t, "[].reduce(function(a, b) { return a + b; });")
	assert.Equal(t, "Reduce of empty array with no initial value", rt.Message)

	rt = failure(t, "[1].map(5);")
	assert.Equal(t, diagnostics.EType, rt.Code)
}

func TestArraySortAndReverse(t *testing.T) {
	out := output(t, `
var a = [10, 9, 1, 100];
a.sort();
print(a);
print(["pear", "apple", "fig"].sort());
print([3, 1, 2].sort(function(x, y) { return y - x; }));
print([1, 2, 3].reverse());
`)
	assert.Equal(t, strings.Join([]string{
		"[1, 9, 10, 100]",
		`["apple", "fig", "pear"]`,
		"[3, 2, 1]",
		"[3, 2, 1]",
	}, "\n"), out)

	rt := failure(t, `[2, 1].sort(function(a, b) { return "x"; });`)
	assert.Equal(t, "sort() comparator must return a number, got string", rt.Message)

	res, err := exec(t, `[2, 1].sort(function(a, b) { throw "boom"; });`)
	require.Error(t, err)
	msg, ok := interpreter.CatchMessage(err)
	require.True(t, ok)
	assert.Equal(t, "boom", msg)
	assert.NotNil(t, res)
}

func TestConsoleModule(t *testing.T) {
	out := output(t, `
import Console;
Console.log("a", 1);
Console.warn("w");
Console.error("e");
Console.info("i");
Console.debug("d", [1]);
Console.time();
Console.timeEnd("load");
`)
	assert.Equal(t, strings.Join([]string{
		"a 1",
		"WARNING: w",
		"ERROR: e",
		"INFO: i",
		"DEBUG: d [1]",
		"Timer 'default' started",
		"Timer 'load' ended",
	}, "\n"), out)
}

func TestJSONModule(t *testing.T) {
	out := output(t, `
import JSON;
var v = JSON.parse("{\"b\": [1, true], \"a\": null}");
print(v.b[0], v.a, keys(v));
print(JSON.stringify(v));
print(JSON.stringify({k: 1}, 2));
print(JSON.stringify([1], "\t"));
`)
	assert.Equal(t, strings.Join([]string{
		`1 null ["b", "a"]`,
		`{"b":[1,true],"a":null}`,
		"{\n  \"k\": 1\n}",
		"[\n\t1\n]",
	}, "\n"), out)

	rt := failure(t, `import JSON; JSON.parse("{bad");`)
	assert.Contains(t, rt.Message, "JSON.parse:")
}

func TestGlobalBuiltins(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`print(isNumber(1), isString("s"), isBoolean(false), isArray([]), isObject({}), isNull(null), isNull(undefined));`,
			"true true true true true true false"},
		{`function f() {} print(isFunction(f), isFunction(print), isFunction(1));`, "true true false"},
		{`print(toString([1, "a"]) + "!", toNumber("4.5") + 1, toNumber(true), toNumber("x"));`, `[1, "a"]! 5.5 1 NaN`},
		{`print(parseInt("42px"), parseInt("-7.9"), parseInt("ff", 16), parseInt("0x1A", 16), parseInt("z"));`, "42 -7 255 26 NaN"},
		{`print(parseFloat("3.25abc"), parseFloat(".5"), parseFloat("1e3x"), parseFloat("abc"));`, "3.25 0.5 1000 NaN"},
		{`print(len([1, 2]), len("héllo"), len({a: 1}), len(null));`, "2 5 1 0"},
		{`print(keys({b: 1, a: 2}), values({b: 1, a: 2}), entries({k: "v"}));`, `["b", "a"] [1, 2] [["k", "v"]]`},
		{`print(merge({a: 1, b: 2}, {b: 3, c: 4}));`, "{a: 1, b: 3, c: 4}"},
		{`print(range(3), range(2, 5), range(5, 2));`, "[0, 1, 2] [2, 3, 4] []"},
		{`print(distance(0, 0, 3, 4), clamp(15, 0, 10), clamp(-1, 0, 10), lerp(0, 10, 0.25));`, "5 10 0 2.5"},
		{`print(floor(PI), round(E), min(3, 1), max(3, 1), pow(3, 2), abs(-2), sqrt(9));`, "3 3 1 3 9 2 3"},
		{`print(time() > 1600000000);`, "true"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, output(t, tt.src), tt.src)
	}
}

func TestModulesAreNotGlobals(t *testing.T) {
	rt := failure(t, "Math.floor(1);")
	assert.Equal(t, "Undefined variable: Math", rt.Message)
}

type mapLoader map[string]*interpreter.Object

func (m mapLoader) Load(_ context.Context, name string) (*interpreter.Object, error) {
	if exports, ok := m[name]; ok {
		return exports, nil
	}
	return nil, stdlib.ErrModuleNotFound
}

func TestModuleSystem(t *testing.T) {
	ms := stdlib.Standard()
	assert.Equal(t, []string{"Array", "Console", "JSON", "Math", "String"}, ms.Names())

	got, err := ms.ImportFrom("Math", []string{"PI", "floor"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = ms.ImportFrom("Math", []string{"nope"})
	assert.EqualError(t, err, "Module 'Math' has no export 'nope'")
	_, err = ms.ImportFrom("Missing", nil)
	assert.True(t, errors.Is(err, stdlib.ErrModuleNotFound))

	_, err = ms.Resolve(context.Background(), "Lazy")
	assert.EqualError(t, err, "Module not found: Lazy")

	lazy := interpreter.NewObject(interpreter.KeyValue{Key: "x", Value: interpreter.Number{Value: 1}})
	ms.SetLoader(mapLoader{"Lazy": lazy})
	first, err := ms.Resolve(context.Background(), "Lazy")
	require.NoError(t, err)
	assert.Same(t, lazy, first)
	_, ok := ms.Module("Lazy")
	assert.True(t, ok, "loaded modules are cached")

	_, err = ms.Resolve(context.Background(), "Other")
	assert.EqualError(t, err, "Module not found: Other")
}

func TestRegistry(t *testing.T) {
	r := stdlib.NewRegistry()
	r.Register("twice", func(c *interpreter.Call, args []interpreter.Value) (interpreter.Value, error) {
		return interpreter.Number{Value: 2 * args[0].(interpreter.Number).Value}, nil
	})
	require.NotNil(t, r.Get("twice"))
	assert.Nil(t, r.Get("missing"))
	assert.Len(t, r.All(), 1)

	d := stdlib.Defaults()
	for _, name := range []string{"print", "isNull", "parseInt", "len", "distance", "clamp", "lerp", "time"} {
		assert.NotNil(t, d.Get(name), name)
	}
}
