package parser_test

import (
	"testing"

	"github.com/axarion/axscript/pkg/parser"
)

// FuzzParse feeds random inputs to the parser to catch panics.
// The parser should never panic; it should return diagnostics for invalid input.
func FuzzParse(f *testing.F) {
	seeds := []string{
		`var x = 42;`,
		`function add(a: number, b: number): number { return a + b; }`,
		`class A extends B { constructor(x) { super(x); this.x = x; } m() { return super.m(); } }`,
		`if (a) { b(); } else if (c) { d(); } else e();`,
		`while (i < 10) { i++; if (i == 5) break; }`,
		`do { x--; } while (x > 0);`,
		`for (var i = 0; i < 3; i++) { continue; }`,
		`for (var k in {a: 1}) print(k);`,
		`switch (v) { case 1: case 2: print("x"); break; default: print("d"); }`,
		`try { throw "e"; } catch (err) { print(err); } finally { done(); }`,
		`import { sin, cos } from "Math"; import Math as M;`,
		`export var a = 1; export { a };`,
		`var f = function (x) { return x * 2; };`,
		`a = b ? c : d ? e : f;`,
		`arr[0] += obj.p++ - --q;`,
		`typeof(x) === "number" && !y || z;`,
		// Broken inputs
		``,
		`{`,
		`}`,
		`(((`,
		`var`,
		`function`,
		`class {`,
		`switch (x) { oops }`,
		`for (var i in) {}`,
		`super`,
		`import { } from`,
		`export`,
		`new`,
		`a ? b`,
		`1 +`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Parse panicked on input %q: %v", input, r)
				}
			}()
			prog, diags := parser.Parse(input, "fuzz.axs")
			if prog == nil && len(diags) == 0 {
				t.Fatalf("Parse returned neither program nor diagnostics for %q", input)
			}
		}()
	})
}
