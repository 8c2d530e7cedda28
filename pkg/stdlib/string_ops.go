package stdlib

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/axarion/axscript/pkg/interpreter"
)

// Casers carry state, so each call gets its own.
func toUpper(s string) string { return cases.Upper(language.Und).String(s) }
func toLower(s string) string { return cases.Lower(language.Und).String(s) }

// StringModule returns the exports of the String module. Every function takes
// the string as its first argument; indices count characters, not bytes.
func StringModule() *interpreter.Object {
	return module([]member{
		{"toUpperCase", strMap(toUpper)},
		{"toLowerCase", strMap(toLower)},
		{"trim", strMap(strings.TrimSpace)},
		{"trimStart", strMap(func(s string) string { return strings.TrimLeft(s, " \t\r\n\v\f") })},
		{"trimEnd", strMap(func(s string) string { return strings.TrimRight(s, " \t\r\n\v\f") })},
		{"split", strSplit},
		{"join", strJoin},
		{"replace", strReplace},
		{"indexOf", strIndexOf},
		{"lastIndexOf", strLastIndexOf},
		{"includes", strIncludes},
		{"charAt", strCharAt},
		{"substring", strSubstring},
		{"length", strLength},
		{"startsWith", strStartsWith},
		{"endsWith", strEndsWith},
		{"repeat", strRepeat},
		{"padStart", strPad(true)},
		{"padEnd", strPad(false)},
		{"search", strSearch},
		{"match", strMatch},
		{"test", strTest},
	})
}

func strMap(f func(string) string) interpreter.BuiltinFunc {
	return func(c *call, args []value) (value, error) {
		s, err := argString(c, args, 0)
		if err != nil {
			return nil, err
		}
		return str(f(s)), nil
	}
}

func twoStrings(c *call, args []value) (string, string, error) {
	a, err := argString(c, args, 0)
	if err != nil {
		return "", "", err
	}
	b, err := argString(c, args, 1)
	if err != nil {
		return "", "", err
	}
	return a, b, nil
}

func runeIndex(s string, byteIdx int) int {
	if byteIdx < 0 {
		return -1
	}
	return utf8.RuneCountInString(s[:byteIdx])
}

// split(s, sep) → list of parts; an empty separator splits into characters
func strSplit(c *call, args []value) (value, error) {
	s, err := argString(c, args, 0)
	if err != nil {
		return nil, err
	}
	sep, err := optString(c, args, 1, " ")
	if err != nil {
		return nil, err
	}
	parts := strings.Split(s, sep)
	if s == "" && sep != "" {
		parts = []string{""}
	}
	items := make([]value, len(parts))
	for i, p := range parts {
		items[i] = str(p)
	}
	return interpreter.NewArray(items), nil
}

// join(arr, sep) → string; also accepts (sep, arr) so `",".join(arr)` works
func strJoin(c *call, args []value) (value, error) {
	if s, ok := arg(args, 0).(interpreter.String); ok {
		if arr, ok := arg(args, 1).(*interpreter.Array); ok {
			return str(joinValues(arr.Elements, s.Value)), nil
		}
	}
	arr, err := argArray(c, args, 0)
	if err != nil {
		return nil, err
	}
	sep, err := optString(c, args, 1, "")
	if err != nil {
		return nil, err
	}
	return str(joinValues(arr.Elements, sep)), nil
}

func joinValues(elems []value, sep string) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		switch e.(type) {
		case interpreter.Null, interpreter.Undefined:
		default:
			parts[i] = interpreter.ToDisplayString(e)
		}
	}
	return strings.Join(parts, sep)
}

// replace(s, old, new) → s with the first occurrence of old replaced
func strReplace(c *call, args []value) (value, error) {
	s, old, err := twoStrings(c, args)
	if err != nil {
		return nil, err
	}
	repl, err := argString(c, args, 2)
	if err != nil {
		return nil, err
	}
	return str(strings.Replace(s, old, repl, 1)), nil
}

// indexOf(s, sub, from?) → character index or -1
func strIndexOf(c *call, args []value) (value, error) {
	s, sub, err := twoStrings(c, args)
	if err != nil {
		return nil, err
	}
	from, err := optNumber(c, args, 2, 0)
	if err != nil {
		return nil, err
	}
	runes := []rune(s)
	start := clampIndex(from, len(runes))
	rest := string(runes[start:])
	i := strings.Index(rest, sub)
	if i < 0 {
		return num(-1), nil
	}
	return num(float64(start + runeIndex(rest, i))), nil
}

func strLastIndexOf(c *call, args []value) (value, error) {
	s, sub, err := twoStrings(c, args)
	if err != nil {
		return nil, err
	}
	return num(float64(runeIndex(s, strings.LastIndex(s, sub)))), nil
}

func strIncludes(c *call, args []value) (value, error) {
	s, sub, err := twoStrings(c, args)
	if err != nil {
		return nil, err
	}
	return boolean(strings.Contains(s, sub)), nil
}

// charAt(s, i) → single character, or "" when out of range
func strCharAt(c *call, args []value) (value, error) {
	s, err := argString(c, args, 0)
	if err != nil {
		return nil, err
	}
	i, err := argNumber(c, args, 1)
	if err != nil {
		return nil, err
	}
	runes := []rune(s)
	if i < 0 || int(i) >= len(runes) {
		return str(""), nil
	}
	return str(string(runes[int(i)])), nil
}

// substring(s, start, end?) → characters in [start, end); negative bounds
// clamp to 0 and reversed bounds are swapped
func strSubstring(c *call, args []value) (value, error) {
	s, err := argString(c, args, 0)
	if err != nil {
		return nil, err
	}
	runes := []rune(s)
	n := float64(len(runes))
	start, err := optNumber(c, args, 1, 0)
	if err != nil {
		return nil, err
	}
	end, err := optNumber(c, args, 2, n)
	if err != nil {
		return nil, err
	}
	clamp := func(x float64) int {
		if x < 0 {
			return 0
		}
		if x > n {
			return int(n)
		}
		return int(x)
	}
	a, b := clamp(start), clamp(end)
	if a > b {
		a, b = b, a
	}
	return str(string(runes[a:b])), nil
}

func strLength(c *call, args []value) (value, error) {
	s, err := argString(c, args, 0)
	if err != nil {
		return nil, err
	}
	return num(float64(utf8.RuneCountInString(s))), nil
}

func strStartsWith(c *call, args []value) (value, error) {
	s, prefix, err := twoStrings(c, args)
	if err != nil {
		return nil, err
	}
	return boolean(strings.HasPrefix(s, prefix)), nil
}

func strEndsWith(c *call, args []value) (value, error) {
	s, suffix, err := twoStrings(c, args)
	if err != nil {
		return nil, err
	}
	return boolean(strings.HasSuffix(s, suffix)), nil
}

func strRepeat(c *call, args []value) (value, error) {
	s, err := argString(c, args, 0)
	if err != nil {
		return nil, err
	}
	n, err := argNumber(c, args, 1)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, c.Errorf("Invalid count value: %s", interpreter.FormatNumber(n))
	}
	if float64(len(s))*n > maxStringLen {
		return nil, c.Errorf("repeat() result too large")
	}
	return str(strings.Repeat(s, int(n))), nil
}

const (
	maxStringLen = 1 << 24
	regexTimeout = time.Second
)

// padStart(s, width, fill?) / padEnd(s, width, fill?)
func strPad(start bool) interpreter.BuiltinFunc {
	return func(c *call, args []value) (value, error) {
		s, err := argString(c, args, 0)
		if err != nil {
			return nil, err
		}
		width, err := argNumber(c, args, 1)
		if err != nil {
			return nil, err
		}
		fill, err := optString(c, args, 2, " ")
		if err != nil {
			return nil, err
		}
		if width > maxStringLen {
			return nil, c.Errorf("%s() result too large", c.Name)
		}
		missing := int(width) - utf8.RuneCountInString(s)
		if missing <= 0 || fill == "" {
			return str(s), nil
		}
		pad := []rune(strings.Repeat(fill, missing/utf8.RuneCountInString(fill)+1))[:missing]
		if start {
			return str(string(pad) + s), nil
		}
		return str(s + string(pad)), nil
	}
}

// compilePattern compiles an ECMAScript pattern. Supported flags are g, i and m;
// global reports whether g was present.
func compilePattern(c *call, args []value) (re *regexp2.Regexp, global bool, err error) {
	pattern, err := argString(c, args, 1)
	if err != nil {
		return nil, false, err
	}
	flags, err := optString(c, args, 2, "")
	if err != nil {
		return nil, false, err
	}
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	for _, f := range flags {
		switch f {
		case 'g':
			global = true
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		default:
			return nil, false, c.Errorf("Invalid regular expression flag '%c'", f)
		}
	}
	re, err = regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, false, c.Errorf("Invalid regular expression /%s/: %v", pattern, err)
	}
	re.MatchTimeout = regexTimeout
	return re, global, nil
}

// search(s, pattern, flags?) → index of the first match or -1
func strSearch(c *call, args []value) (value, error) {
	s, err := argString(c, args, 0)
	if err != nil {
		return nil, err
	}
	re, _, err := compilePattern(c, args)
	if err != nil {
		return nil, err
	}
	m, err := re.FindStringMatch(s)
	if err != nil {
		return nil, c.Errorf("%v", err)
	}
	if m == nil {
		return num(-1), nil
	}
	return num(float64(m.Index)), nil
}

// match(s, pattern, flags?) → [full, group1, ...] for the first match, every
// full match with the g flag, or null when nothing matches
func strMatch(c *call, args []value) (value, error) {
	s, err := argString(c, args, 0)
	if err != nil {
		return nil, err
	}
	re, global, err := compilePattern(c, args)
	if err != nil {
		return nil, err
	}
	m, err := re.FindStringMatch(s)
	if err != nil {
		return nil, c.Errorf("%v", err)
	}
	if m == nil {
		return null, nil
	}
	if !global {
		groups := m.Groups()
		items := make([]value, len(groups))
		for i, g := range groups {
			if len(g.Captures) == 0 {
				items[i] = undefined
				continue
			}
			items[i] = str(g.String())
		}
		return interpreter.NewArray(items), nil
	}
	var items []value
	for m != nil {
		items = append(items, str(m.String()))
		if m, err = re.FindNextMatch(m); err != nil {
			return nil, c.Errorf("%v", err)
		}
	}
	return interpreter.NewArray(items), nil
}

// test(s, pattern, flags?) → whether pattern matches anywhere in s
func strTest(c *call, args []value) (value, error) {
	s, err := argString(c, args, 0)
	if err != nil {
		return nil, err
	}
	re, _, err := compilePattern(c, args)
	if err != nil {
		return nil, err
	}
	ok, err := re.MatchString(s)
	if err != nil {
		return nil, c.Errorf("%v", err)
	}
	return boolean(ok), nil
}
