package stdlib

import (
	"sort"
	"strings"

	"github.com/axarion/axscript/pkg/interpreter"
)

// ArrayModule returns the exports of the Array module. Every function takes
// the array as its first argument; mutators change it in place.
func ArrayModule() *interpreter.Object {
	return module([]member{
		{"push", arrPush},
		{"pop", arrPop},
		{"shift", arrShift},
		{"unshift", arrUnshift},
		{"slice", arrSlice},
		{"splice", arrSplice},
		{"indexOf", arrIndexOf},
		{"includes", arrIncludes},
		{"length", arrLength},
		{"sort", arrSort},
		{"reverse", arrReverse},
		{"filter", arrFilter},
		{"map", arrMap},
		{"reduce", arrReduce},
		{"forEach", arrForEach},
		{"find", arrFind},
		{"findIndex", arrFindIndex},
		{"some", arrSome},
		{"every", arrEvery},
		{"join", arrJoin},
		{"concat", arrConcat},
	})
}

// push(arr, ...items) → new length
func arrPush(c *call, args []value) (value, error) {
	arr, err := argArray(c, args, 0)
	if err != nil {
		return nil, err
	}
	arr.Elements = append(arr.Elements, args[1:]...)
	return num(float64(len(arr.Elements))), nil
}

// pop(arr) → last element, or null when empty
func arrPop(c *call, args []value) (value, error) {
	arr, err := argArray(c, args, 0)
	if err != nil {
		return nil, err
	}
	n := len(arr.Elements)
	if n == 0 {
		return null, nil
	}
	last := arr.Elements[n-1]
	arr.Elements = arr.Elements[:n-1]
	return last, nil
}

// shift(arr) → first element, or null when empty
func arrShift(c *call, args []value) (value, error) {
	arr, err := argArray(c, args, 0)
	if err != nil {
		return nil, err
	}
	if len(arr.Elements) == 0 {
		return null, nil
	}
	first := arr.Elements[0]
	arr.Elements = append([]value{}, arr.Elements[1:]...)
	return first, nil
}

// unshift(arr, ...items) → new length
func arrUnshift(c *call, args []value) (value, error) {
	arr, err := argArray(c, args, 0)
	if err != nil {
		return nil, err
	}
	elems := make([]value, 0, len(args)-1+len(arr.Elements))
	elems = append(elems, args[1:]...)
	arr.Elements = append(elems, arr.Elements...)
	return num(float64(len(arr.Elements))), nil
}

// slice(arr, start?, end?) → copy of [start, end); negative bounds count from the end
func arrSlice(c *call, args []value) (value, error) {
	arr, err := argArray(c, args, 0)
	if err != nil {
		return nil, err
	}
	n := len(arr.Elements)
	start, err := optNumber(c, args, 1, 0)
	if err != nil {
		return nil, err
	}
	end, err := optNumber(c, args, 2, float64(n))
	if err != nil {
		return nil, err
	}
	a, b := clampIndex(start, n), clampIndex(end, n)
	if a >= b {
		return interpreter.NewArray(nil), nil
	}
	return interpreter.NewArray(append([]value{}, arr.Elements[a:b]...)), nil
}

// splice(arr, start, deleteCount?, ...items) → removed elements
func arrSplice(c *call, args []value) (value, error) {
	arr, err := argArray(c, args, 0)
	if err != nil {
		return nil, err
	}
	n := len(arr.Elements)
	start, err := argNumber(c, args, 1)
	if err != nil {
		return nil, err
	}
	a := clampIndex(start, n)
	count, err := optNumber(c, args, 2, float64(n-a))
	if err != nil {
		return nil, err
	}
	del := int(count)
	if del < 0 {
		del = 0
	}
	if a+del > n {
		del = n - a
	}
	var inserts []value
	if len(args) > 3 {
		inserts = args[3:]
	}
	removed := append([]value{}, arr.Elements[a:a+del]...)
	elems := make([]value, 0, n-del+len(inserts))
	elems = append(elems, arr.Elements[:a]...)
	elems = append(elems, inserts...)
	elems = append(elems, arr.Elements[a+del:]...)
	arr.Elements = elems
	return interpreter.NewArray(removed), nil
}

func indexOf(arr *interpreter.Array, v value) int {
	for i, e := range arr.Elements {
		if interpreter.Equal(e, v, true) {
			return i
		}
	}
	return -1
}

// indexOf(arr, item) → index or -1, comparing strictly
func arrIndexOf(c *call, args []value) (value, error) {
	arr, err := argArray(c, args, 0)
	if err != nil {
		return nil, err
	}
	return num(float64(indexOf(arr, arg(args, 1)))), nil
}

func arrIncludes(c *call, args []value) (value, error) {
	arr, err := argArray(c, args, 0)
	if err != nil {
		return nil, err
	}
	return boolean(indexOf(arr, arg(args, 1)) >= 0), nil
}

func arrLength(c *call, args []value) (value, error) {
	arr, err := argArray(c, args, 0)
	if err != nil {
		return nil, err
	}
	return num(float64(len(arr.Elements))), nil
}

// sort(arr, compare?) → arr sorted in place. Without a comparator numbers
// sort numerically and everything else by display string.
func arrSort(c *call, args []value) (value, error) {
	arr, err := argArray(c, args, 0)
	if err != nil {
		return nil, err
	}
	var cmp value
	if _, ok := arg(args, 1).(interpreter.Undefined); !ok {
		if cmp, err = argCallable(c, args, 1); err != nil {
			return nil, err
		}
	}

	elems := append([]value{}, arr.Elements...)
	var sortErr error
	sort.SliceStable(elems, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		a, b := elems[i], elems[j]
		if cmp == nil {
			return defaultLess(a, b)
		}
		res, err := invoke(c, cmp, a, b)
		if err != nil {
			sortErr = err
			return false
		}
		n, ok := res.(interpreter.Number)
		if !ok {
			sortErr = c.TypeErrorf("sort() comparator must return a number, got %s", interpreter.TypeName(res))
			return false
		}
		return n.Value < 0
	})
	if sortErr != nil {
		return nil, sortErr
	}
	arr.Elements = elems
	return arr, nil
}

func defaultLess(a, b value) bool {
	an, aok := a.(interpreter.Number)
	bn, bok := b.(interpreter.Number)
	switch {
	case aok && bok:
		return an.Value < bn.Value
	case aok != bok:
		return aok
	}
	return strings.Compare(interpreter.ToDisplayString(a), interpreter.ToDisplayString(b)) < 0
}

// reverse(arr) → arr reversed in place
func arrReverse(c *call, args []value) (value, error) {
	arr, err := argArray(c, args, 0)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(arr.Elements)-1; i < j; i, j = i+1, j-1 {
		arr.Elements[i], arr.Elements[j] = arr.Elements[j], arr.Elements[i]
	}
	return arr, nil
}

// each runs fn(item, index, arr) for every element until visit returns false.
// The element list is snapshotted so callbacks may mutate arr.
func each(c *call, args []value, visit func(i int, item, res value) bool) error {
	arr, err := argArray(c, args, 0)
	if err != nil {
		return err
	}
	fn, err := argCallable(c, args, 1)
	if err != nil {
		return err
	}
	elems := append([]value{}, arr.Elements...)
	for i, item := range elems {
		res, err := invoke(c, fn, item, num(float64(i)), arr)
		if err != nil {
			return err
		}
		if !visit(i, item, res) {
			return nil
		}
	}
	return nil
}

// filter(arr, fn) → elements for which fn is truthy
func arrFilter(c *call, args []value) (value, error) {
	out := []value{}
	err := each(c, args, func(_ int, item, res value) bool {
		if interpreter.Truthy(res) {
			out = append(out, item)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return interpreter.NewArray(out), nil
}

// map(arr, fn) → results of fn for each element
func arrMap(c *call, args []value) (value, error) {
	out := []value{}
	err := each(c, args, func(_ int, _, res value) bool {
		out = append(out, res)
		return true
	})
	if err != nil {
		return nil, err
	}
	return interpreter.NewArray(out), nil
}

func arrForEach(c *call, args []value) (value, error) {
	if err := each(c, args, func(int, value, value) bool { return true }); err != nil {
		return nil, err
	}
	return undefined, nil
}

// find(arr, fn) → first element for which fn is truthy, or null
func arrFind(c *call, args []value) (value, error) {
	var found value = null
	err := each(c, args, func(_ int, item, res value) bool {
		if interpreter.Truthy(res) {
			found = item
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func arrFindIndex(c *call, args []value) (value, error) {
	found := -1
	err := each(c, args, func(i int, _, res value) bool {
		if interpreter.Truthy(res) {
			found = i
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return num(float64(found)), nil
}

func arrSome(c *call, args []value) (value, error) {
	hit := false
	err := each(c, args, func(_ int, _, res value) bool {
		hit = interpreter.Truthy(res)
		return !hit
	})
	if err != nil {
		return nil, err
	}
	return boolean(hit), nil
}

func arrEvery(c *call, args []value) (value, error) {
	all := true
	err := each(c, args, func(_ int, _, res value) bool {
		all = interpreter.Truthy(res)
		return all
	})
	if err != nil {
		return nil, err
	}
	return boolean(all), nil
}

// reduce(arr, fn, initial?) → fn(acc, item, index, arr) folded left to right
func arrReduce(c *call, args []value) (value, error) {
	arr, err := argArray(c, args, 0)
	if err != nil {
		return nil, err
	}
	fn, err := argCallable(c, args, 1)
	if err != nil {
		return nil, err
	}
	elems := append([]value{}, arr.Elements...)
	start := 0
	var acc value
	if len(args) >= 3 {
		acc = args[2]
	} else {
		if len(elems) == 0 {
			return nil, c.TypeErrorf("Reduce of empty array with no initial value")
		}
		acc = elems[0]
		start = 1
	}
	for i := start; i < len(elems); i++ {
		if acc, err = invoke(c, fn, acc, elems[i], num(float64(i)), arr); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// join(arr, sep?) → string; sep defaults to ","
func arrJoin(c *call, args []value) (value, error) {
	arr, err := argArray(c, args, 0)
	if err != nil {
		return nil, err
	}
	sep, err := optString(c, args, 1, ",")
	if err != nil {
		return nil, err
	}
	return str(joinValues(arr.Elements, sep)), nil
}

// concat(arr, ...others) → new array; array arguments are spread one level
func arrConcat(c *call, args []value) (value, error) {
	arr, err := argArray(c, args, 0)
	if err != nil {
		return nil, err
	}
	out := append([]value{}, arr.Elements...)
	for _, a := range args[1:] {
		if other, ok := a.(*interpreter.Array); ok {
			out = append(out, other.Elements...)
			continue
		}
		out = append(out, a)
	}
	return interpreter.NewArray(out), nil
}
