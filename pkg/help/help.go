// Package help provides the reference text behind `axscript help`.
package help

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/axarion/axscript/pkg/bindings"
	"github.com/axarion/axscript/pkg/stdlib"
	"github.com/axarion/axscript/pkg/types"
)

// Version is the language and CLI version.
const Version = "v0.3"

// TopicList is the order topics are listed in.
var TopicList = []string{
	"syntax", "types", "classes", "errors", "modules",
	"stdlib", "bindings", "config", "diagnostics", "examples",
}

// QUICKREF is printed by `axscript help` with no topic.
var QUICKREF = `AXScript ` + Version + ` quick reference

  var x = 1;  let y: number = 2;  const NAME = "hero";
  function add(a: number, b: number): number { return a + b; }
  class Dog extends Animal { constructor(n) { super(n); } speak() { return "woof"; } }
  if / else, while, do-while, for (;;), for (x in xs), switch, break, continue
  try { ... } catch (e) { ... } finally { ... }   throw "message";
  import Math;  import { max as biggest } from "Math";  export var speed = 4;

  print(...)  len(x)  keys(o)  range(n)  clamp(v, lo, hi)  lerp(a, b, t)
  move(dx, dy)  getPosition()  setProperty("hp", 10)  keyPressed("left")

Run:    axscript run game.axs --entity hero.yaml --input input.yaml
Check:  axscript check game.axs
Format: axscript fmt --write game.axs

Topics: ` + strings.Join(TopicList, ", ") + `
Use 'axscript help <topic>' (prefixes work: 'axscript help diag').
`

// Topics maps a topic name to its text.
var Topics = map[string]string{
	"syntax": `SYNTAX

Statements end with ';'. Blocks use braces and open a new scope.

  var a = 1;            function-scoped in spirit, block-scoped in practice
  let b = 2;            same as var
  const C = 3;          must be initialized; reassignment is reported (W_CONST)

Operators, loosest to tightest:
  = += -= *= /= %=      assignment (right associative)
  ? :                   conditional
  ||  &&                short-circuit, yield an operand
  == != === !==         == compares loosely, === also compares types
  < > <= >=
  + -                   + concatenates when either side is a string
  * / %                 division or modulo by zero throws
  ! - typeof ++ --      prefix
  call() .member [index] ++ --   postfix

Loops: while, do { } while (...);, for (init; test; update), for (x in iterable).
for-in walks array elements, string characters or object keys.
switch compares with === and falls through until break.
Comments: // line and /* block */.
`,
	"types": `TYPES

Values: number, string, boolean, null, undefined, array, object,
function, class instance.

Annotations are optional and go after names:
  var hp: number = 10;
  function greet(name: string, times: number): string { ... }
  var tags: string[] = ["a"];

Known annotations: number, string, boolean, null, undefined, object,
function, any, any class name, and T[] for arrays.

Findings from annotations are advisory: they are collected as type errors
and the script keeps running. The exception is a declared return type:
returning a value of the wrong type stops the script.
A number and a numeric string are compatible; any is compatible with all.
Falsy values: false, 0, "", null, undefined, NaN and the empty array.
`,
	"classes": `CLASSES

  class Animal {
    constructor(name) { this.name = name; }
    describe() { return this.name + " says " + this.sound(); }
    sound() { return "..."; }
  }
  class Dog extends Animal {
    constructor(name) { super(name); }
    sound() { return "woof"; }
  }
  var d = new Dog("rex");

Methods are looked up along the superclass chain. Inside a method, 'this'
is the instance even when the method is inherited; super(...) calls the
parent constructor and super.m(...) the parent's method.
A class without a constructor inherits its parent's.
At top level 'this' is the game object the script is attached to.
`,
	"errors": `ERRORS

  try {
    risky();
  } catch (e) {
    print("failed: " + e);
  } finally {
    cleanup();
  }

throw accepts any value; catch binds it. Runtime errors (undefined
variables, bad calls, division by zero) are catchable and bind their
message. finally runs on every exit path, including return, break and
continue; control flow inside finally replaces the pending one.
Budget errors (iteration limit, timeout, cancellation) cannot be caught.
An uncaught error ends the run with success=false; output printed before
the error is kept.
`,
	"modules": `MODULES

  import Math;                         whole module bound as Math
  import Math as M;                    ... or under another name
  import * as M from "Math";           same thing
  import { max, min as lo } from "Math";

Standard modules: Math, String, Array, Console, JSON.
Other names are looked up as <Name>.axs in the module paths (see 'config').
A file module runs once per runtime and is cached; what it exports is what
importers see. Circular imports are errors.

  export var speed = 4;
  export function helper() { ... }
  export class Point { ... }
  export { a, b };

Exports of the main script are returned to the host.
`,
	"stdlib": `STDLIB

Global builtins are always in scope. Strings and arrays also have methods:
  "abc".toUpperCase()  s.split(",")  s.padStart(5, "0")
  xs.push(4)  xs.map(fn)  xs.filter(fn)  xs.reduce(fn, 0)  xs.join(", ")

Modules bundle more functions; import them by name (see 'modules').
String.search, String.match and String.test take a pattern string and
optional flags (g, i, m): String.test(s, "^a+$", "i").
JSON.stringify and JSON.parse convert between values and text.

` + StdlibIndex(),
	"bindings": `BINDINGS

Bindings drive the game object the script is attached to. Each one needs a
capability; when the object lacks it (or no object is bound) the binding
returns a safe default and records a warning. A policy can deny a
capability, which makes every binding that needs it throw.

` + BindingIndex(),
	"config": `CONFIG

Settings come from, highest precedence first:
  AXSCRIPT_* environment variables
  AXSCRIPT_* lines in ./.env
  ./.axscript.yaml
  $XDG_CONFIG_HOME/axscript/config.yaml
  built-in defaults

  strict: false            assignment to undeclared names is an error
  max_iterations: 1000000  loop iterations per run, 0 for no limit
  max_call_depth: 256
  timeout: 10s
  log_level: warn
  module_paths: ["."]
  deny: [physics]          capabilities to refuse

Environment names: AXSCRIPT_STRICT, AXSCRIPT_MAX_ITERATIONS,
AXSCRIPT_MAX_CALL_DEPTH, AXSCRIPT_TIMEOUT, AXSCRIPT_LOG_LEVEL,
AXSCRIPT_MODULE_PATH (path list), AXSCRIPT_DENY (comma list).
'axscript config' prints the effective settings.
`,
	"diagnostics": `DIAGNOSTICS

Parse errors stop everything:
  Parse error at line L, column C: <message>

Runtime errors end the run; the message carries the line:
  Undefined variable: y (line 3)

Codes:
  E_LEX          bad character or string literal
  E_PARSE        syntax error
  E_UNDEFINED    undefined variable
  E_TYPE         bad operand or argument
  E_ARITY        wrong argument count for a user function
  E_DIV_ZERO     division or modulo by zero
  E_THROW        uncaught throw
  E_PROPERTY     property access on null or undefined
  E_ASSIGN       invalid assignment target or undeclared name in strict mode
  E_ITERATE      for-in over a value that cannot be iterated
  E_NOT_CALLABLE call of a non-function
  E_CLASS        unknown class or bad super call
  E_THIS         'this' with nothing bound
  E_CONTROL      break/continue outside a loop
  E_MODULE       module not found, bad import, circular import
  E_FN           declared return type violated
  E_CAP_DENIED   capability denied by policy
  E_STACK        call depth exceeded
  E_BUDGET       iteration limit, timeout or cancellation
  W_TYPE         annotation mismatch (advisory)
  W_CONST        assignment to a constant (advisory)
  W_SHADOW       function shadowed by a builtin
  W_ANNOTATION   unknown type annotation
  W_DUP_PARAM    duplicate parameter name
  W_BINDING      binding fell back to its default

'axscript check' reports static findings without running the script.
`,
	"examples": `EXAMPLES

Patrol between two points:

  var speed = 2;
  var dir = 1;
  function update() {
    move(speed * dir, 0);
    var p = getPosition();
    if (p.x > 100 || p.x < 0) { dir = -dir; }
  }
  update();

Player input:

  var m = getMovement();
  move(m.x * 3, m.y * 3);
  if (keyJustPressed("space") && isOnGround()) { jump(8); }

Counting enemies with a module:

  import { filter } from "Array";
  var bosses = filter(findObjectsByTag("enemy"), function(e) {
    return e.name == "boss";
  });
  print(len(bosses) + " bosses");
`,
}

// MatchTopic finds a topic by exact name or unambiguous prefix.
func MatchTopic(query string) (string, string, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if content, ok := Topics[q]; ok {
		return q, content, nil
	}
	var matches []string
	if q != "" {
		for _, name := range TopicList {
			if strings.HasPrefix(name, q) {
				matches = append(matches, name)
			}
		}
	}
	switch len(matches) {
	case 0:
		return "", "", errors.Errorf("unknown help topic %q (topics: %s)", query, strings.Join(TopicList, ", "))
	case 1:
		return matches[0], Topics[matches[0]], nil
	}
	return "", "", errors.Errorf("ambiguous help topic %q matches %s", query, strings.Join(matches, ", "))
}

// StdlibIndex lists the global builtins with their signatures, then the
// exports of each standard module.
func StdlibIndex() string {
	var b strings.Builder
	globals := stdlib.Defaults().All()
	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	sort.Strings(names)

	b.WriteString("Global builtins:\n")
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, name := range names {
		sig := "(...)"
		ret := "any"
		if ft, ok := types.BuiltinSignature(name); ok {
			sig = signature(ft)
			ret = ft.Return.String()
		}
		fmt.Fprintf(w, "  %s%s\t-> %s\n", name, sig, ret)
	}
	w.Flush()
	total := len(names)

	modules := stdlib.Standard()
	for _, mod := range modules.Names() {
		exports, _ := modules.Module(mod)
		keys := exports.Keys()
		sort.Strings(keys)
		fmt.Fprintf(&b, "\n%s (%d): %s\n", mod, len(keys), strings.Join(keys, ", "))
		total += len(keys)
	}
	fmt.Fprintf(&b, "\nGlobals: PI, E\nTotal: %d functions\n", total)
	return b.String()
}

func signature(ft types.FunctionType) string {
	parts := make([]string, len(ft.Params))
	for i, p := range ft.Params {
		part := p.String()
		if i >= ft.Min {
			part += "?"
		}
		if ft.Variadic && i == len(ft.Params)-1 {
			part = "..." + part
		}
		parts[i] = part
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// BindingIndex lists the game-object bindings with their mode and capability.
func BindingIndex() string {
	r := bindings.Defaults()
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  BINDING\tMODE\tCAPABILITY")
	for _, name := range r.Names() {
		def := r.Get(name)
		fmt.Fprintf(w, "  %s\t%s\t%s\n", def.Usage, def.Mode, def.Capability)
	}
	w.Flush()
	fmt.Fprintf(&b, "\nTotal: %d bindings\n", len(r.Names()))
	return b.String()
}
