// Package types models AXScript's optional type annotations and the
// compatibility rules the checker applies to them.
package types

import (
	"strings"
)

// Kind is the broad category of a type.
type Kind int

const (
	KindAny Kind = iota
	KindNumber
	KindString
	KindBoolean
	KindNull
	KindUndefined
	KindObject
	KindArray
	KindFunction
	KindClass
)

var kindNames = map[Kind]string{
	KindAny:       "any",
	KindNumber:    "number",
	KindString:    "string",
	KindBoolean:   "boolean",
	KindNull:      "null",
	KindUndefined: "undefined",
	KindObject:    "object",
	KindArray:     "array",
	KindFunction:  "function",
	KindClass:     "class",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// TypeInfo describes a value's type. Elem is set for arrays with a known
// element type; ClassName for class instances; Props optionally for objects.
type TypeInfo struct {
	Kind      Kind
	ClassName string
	Elem      *TypeInfo
	Props     map[string]TypeInfo
}

func Any() TypeInfo       { return TypeInfo{Kind: KindAny} }
func Number() TypeInfo    { return TypeInfo{Kind: KindNumber} }
func String() TypeInfo    { return TypeInfo{Kind: KindString} }
func Boolean() TypeInfo   { return TypeInfo{Kind: KindBoolean} }
func Null() TypeInfo      { return TypeInfo{Kind: KindNull} }
func Undefined() TypeInfo { return TypeInfo{Kind: KindUndefined} }
func Object() TypeInfo    { return TypeInfo{Kind: KindObject} }
func Function() TypeInfo  { return TypeInfo{Kind: KindFunction} }

// ArrayOf returns an array type with the given element type.
func ArrayOf(elem TypeInfo) TypeInfo {
	return TypeInfo{Kind: KindArray, Elem: &elem}
}

// Class returns the type of instances of the named class.
func Class(name string) TypeInfo {
	return TypeInfo{Kind: KindClass, ClassName: name}
}

// ElemType returns the element type of an array, any if unknown.
func (t TypeInfo) ElemType() TypeInfo {
	if t.Elem == nil {
		return Any()
	}
	return *t.Elem
}

func (t TypeInfo) String() string {
	switch t.Kind {
	case KindArray:
		if t.Elem == nil {
			return "array"
		}
		elem := t.Elem.String()
		if t.Elem.Kind == KindArray && t.Elem.Elem == nil {
			elem = "any[]"
		}
		return elem + "[]"
	case KindClass:
		return t.ClassName
	}
	return t.Kind.String()
}

// IsCompatibleWith reports whether a value of type t may be used where other
// is expected. Numbers and strings are mutually compatible; any matches
// everything; classes match only by identical name; arrays compare element
// types when both are known.
func (t TypeInfo) IsCompatibleWith(other TypeInfo) bool {
	if t.Kind == KindAny || other.Kind == KindAny {
		return true
	}
	if isNumOrStr(t.Kind) && isNumOrStr(other.Kind) {
		return true
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KindClass:
		return t.ClassName == other.ClassName
	case KindArray:
		if t.Elem == nil || other.Elem == nil {
			return true
		}
		return t.Elem.IsCompatibleWith(*other.Elem)
	}
	return true
}

func isNumOrStr(k Kind) bool {
	return k == KindNumber || k == KindString
}

var annotationNames = map[string]TypeInfo{
	"any":       Any(),
	"number":    Number(),
	"string":    String(),
	"boolean":   Boolean(),
	"bool":      Boolean(),
	"null":      Null(),
	"undefined": Undefined(),
	"void":      Undefined(),
	"object":    Object(),
	"array":     {Kind: KindArray},
	"function":  Function(),
}

// ParseAnnotation maps an annotation such as "number[]" or "Player" to a
// TypeInfo. Capitalized unknown names are class types; anything else is
// reported as unknown (ok=false) and treated as any.
func ParseAnnotation(s string) (TypeInfo, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Any(), false
	}
	if strings.HasSuffix(s, "[]") {
		elem, ok := ParseAnnotation(strings.TrimSuffix(s, "[]"))
		return ArrayOf(elem), ok
	}
	if t, ok := annotationNames[s]; ok {
		return t, true
	}
	if s[0] >= 'A' && s[0] <= 'Z' {
		return Class(s), true
	}
	return Any(), false
}
