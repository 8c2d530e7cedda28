package formatter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axarion/axscript/pkg/diagnostics"
	"github.com/axarion/axscript/pkg/formatter"
	"github.com/axarion/axscript/pkg/parser"
)

func format(t *testing.T, src string) string {
	t.Helper()
	prog, diags := parser.Parse(src, "fmt_test.axs")
	require.Empty(t, diags, "parse errors: %s", diagnostics.FormatDiagnostics(diags, true))
	return formatter.Format(prog)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "spacing",
			src:  "var x=1;print( x );",
			want: "var x = 1;\nprint(x);\n",
		},
		{
			name: "annotations",
			src:  "let n:number=2;function f(a:number,b):string{return a+b;}",
			want: "let n: number = 2;\nfunction f(a: number, b): string {\n  return a + b;\n}\n",
		},
		{
			name: "precedence kept",
			src:  "var y = (1 + 2) * 3 - (4 - 5) / -(-x);",
			want: "var y = (1 + 2) * 3 - (4 - 5) / -(-x);\n",
		},
		{
			name: "redundant parens dropped",
			src:  "var z = (a * b) + (c);",
			want: "var z = a * b + c;\n",
		},
		{
			name: "logical and conditional",
			src:  "var r = (a || b) && !c ? x = 1 : typeof y;",
			want: "var r = (a || b) && !c ? x = 1 : typeof y;\n",
		},
		{
			name: "if else chain",
			src:  "if(a){b();}else if(c){d();}else{e();}",
			want: "if (a) {\n  b();\n} else if (c) {\n  d();\n} else {\n  e();\n}\n",
		},
		{
			name: "unbraced bodies",
			src:  "while(i<3) i++;",
			want: "while (i < 3)\n  i++;\n",
		},
		{
			name: "loops",
			src:  "for(var i=0;i<2;i+=1){continue;}for(;;){break;}for(k in obj){}do{n--;}while(n>0);",
			want: "for (var i = 0; i < 2; i += 1) {\n  continue;\n}\nfor (;;) {\n  break;\n}\nfor (k in obj) {}\ndo {\n  n--;\n} while (n > 0);\n",
		},
		{
			name: "class",
			src:  "class Dog extends Animal{constructor(n){super(n);}speak():string{return \"woof\";}}",
			want: "class Dog extends Animal {\n  constructor(n) {\n    super(n);\n  }\n\n  speak(): string {\n    return \"woof\";\n  }\n}\n",
		},
		{
			name: "switch",
			src:  "switch(x){case 1:case 2:print(\"low\");break;default:print(\"high\");}",
			want: "switch (x) {\n  case 1:\n  case 2:\n    print(\"low\");\n    break;\n  default:\n    print(\"high\");\n}\n",
		},
		{
			name: "try",
			src:  "try{throw \"x\";}catch(e){print(e);}finally{done();}try{}catch{}",
			want: "try {\n  throw \"x\";\n} catch (e) {\n  print(e);\n} finally {\n  done();\n}\ntry {} catch {}\n",
		},
		{
			name: "modules",
			src:  "import Math;import Math as M;import * as U from \"lib/utils\";import {a,b as c} from \"Mod\";export var v=1;export {v};",
			want: "import Math;\nimport Math as M;\nimport * as U from \"lib/utils\";\nimport { a, b as c } from \"Mod\";\nexport var v = 1;\nexport { v };\n",
		},
		{
			name: "literals",
			src:  "var o={a:1,\"b c\":[1,2.50,'q\"\\n']};",
			want: "var o = { a: 1, \"b c\": [1, 2.50, \"q\\\"\\n\"] };\n",
		},
		{
			name: "function expression",
			src:  "var f=function(a){return;};",
			want: "var f = function(a) {\n  return;\n};\n",
		},
		{
			name: "new and members",
			src:  "var p=new Point(1,2).scale(2)[0];new Thing;",
			want: "var p = new Point(1, 2).scale(2)[0];\nnew Thing();\n",
		},
		{
			name: "object statement",
			src:  "({a:1}).a;",
			want: "({ a: 1 }.a);\n",
		},
		{
			name: "blank lines collapse",
			src:  "var a = 1;\n\n\n\nvar b = 2;\nvar c = 3;",
			want: "var a = 1;\n\nvar b = 2;\nvar c = 3;\n",
		},
		{
			name: "empty program",
			src:  "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, format(t, tt.src))
		})
	}
}

func TestFormatIsStable(t *testing.T) {
	src := `
class Counter {
  constructor() { this.n = 0; }
  inc(by: number): number { this.n += by; return this.n; }
}
var c = new Counter();
var items = ["alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta", "iota"];
for (var item in items) { if (item.length > 4) c.inc(1); else c.inc(2); }
print(c.n > 3 ? "many" : "few", -(-1), x - -1);
`
	once := format(t, src)
	assert.Equal(t, once, format(t, once))
	assert.Contains(t, once, "var items = [\n  \"alpha\",\n")
}

func TestLongObjectsBreak(t *testing.T) {
	out := format(t, `var cfg = {name: "a longer enough name", speed: 12345, color: "blue", tags: ["x"]};`)
	assert.Equal(t, "var cfg = {\n  name: \"a longer enough name\",\n  speed: 12345,\n  color: \"blue\",\n  tags: [\"x\"]\n};\n", out)
}

func TestHasComments(t *testing.T) {
	assert.True(t, formatter.HasComments("var x = 1; // note"))
	assert.True(t, formatter.HasComments("/* block */ var x;"))
	assert.False(t, formatter.HasComments(`var url = "http://example.com";`))
	assert.False(t, formatter.HasComments(`var s = 'a \' // b';`))
	assert.False(t, formatter.HasComments("var q = 4 / 2;"))
}
