package stdlib

import (
	"github.com/axarion/axscript/pkg/interpreter"
)

// propsOf returns the property map behind an object or class instance.
func propsOf(c *call, args []value) (*interpreter.Object, error) {
	if err := needArgs(c, args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case *interpreter.Object:
		return v, nil
	case *interpreter.Instance:
		return v.Props, nil
	}
	return nil, c.TypeErrorf("%s() argument must be an object, got %s", c.Name, interpreter.TypeName(args[0]))
}

// keys(obj) → list of keys in insertion order
func stdlibKeys(c *call, args []value) (value, error) {
	o, err := propsOf(c, args)
	if err != nil {
		return nil, err
	}
	items := make([]value, 0, o.Len())
	for _, k := range o.Keys() {
		items = append(items, str(k))
	}
	return interpreter.NewArray(items), nil
}

// values(obj) → list of values in insertion order
func stdlibValues(c *call, args []value) (value, error) {
	o, err := propsOf(c, args)
	if err != nil {
		return nil, err
	}
	items := make([]value, 0, o.Len())
	for _, p := range o.Pairs {
		items = append(items, p.Value)
	}
	return interpreter.NewArray(items), nil
}

// entries(obj) → list of [key, value] pairs
func stdlibEntries(c *call, args []value) (value, error) {
	o, err := propsOf(c, args)
	if err != nil {
		return nil, err
	}
	items := make([]value, 0, o.Len())
	for _, p := range o.Pairs {
		items = append(items, interpreter.NewArray([]value{str(p.Key), p.Value}))
	}
	return interpreter.NewArray(items), nil
}

// merge(a, b, ...) → new object; later keys win, first positions are kept
func stdlibMerge(c *call, args []value) (value, error) {
	out := interpreter.NewObject()
	for i := range args {
		o, err := propsOf(c, args[i:])
		if err != nil {
			return nil, err
		}
		for _, p := range o.Pairs {
			out.Set(p.Key, p.Value)
		}
	}
	return out, nil
}
