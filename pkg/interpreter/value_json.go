package interpreter

import (
	"bytes"
	"encoding/json"
	"io"
	"math"

	"github.com/pkg/errors"
)

// ValueToJSON marshals v to JSON. Objects preserve key order, integral
// numbers print without a decimal point, and values with no JSON form
// (undefined, functions, NaN) become null. A non-empty indent pretty-prints.
func ValueToJSON(v Value, indent string) ([]byte, error) {
	b, err := json.Marshal(valueToRaw(v, 0))
	if err != nil {
		return nil, err
	}
	if indent == "" {
		return b, nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, b, "", indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const maxJSONDepth = 64

func valueToRaw(v Value, depth int) any {
	if depth > maxJSONDepth {
		return nil
	}
	switch val := v.(type) {
	case Bool:
		return val.Value
	case Number:
		if math.IsNaN(val.Value) || math.IsInf(val.Value, 0) {
			return nil
		}
		if val.Value == math.Trunc(val.Value) && math.Abs(val.Value) < 1<<53 {
			return int64(val.Value)
		}
		return val.Value
	case String:
		return val.Value
	case *Array:
		items := make([]any, len(val.Elements))
		for i, item := range val.Elements {
			items[i] = valueToRaw(item, depth+1)
		}
		return items
	case *Object:
		return &orderedObject{pairs: val.Pairs, depth: depth}
	case *Instance:
		return &orderedObject{pairs: val.Props.Pairs, depth: depth}
	}
	return nil
}

// orderedObject preserves key order in JSON output.
type orderedObject struct {
	pairs []KeyValue
	depth int
}

func (o *orderedObject) MarshalJSON() ([]byte, error) {
	if len(o.pairs) == 0 {
		return []byte("{}"), nil
	}
	buf := []byte{'{'}
	for i, kv := range o.pairs {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		val, err := json.Marshal(valueToRaw(kv.Value, o.depth+1))
		if err != nil {
			return nil, err
		}
		buf = append(buf, val...)
	}
	return append(buf, '}'), nil
}

// ParseJSON decodes a JSON document into a script value, keeping object
// keys in document order.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '[':
			elems := []Value{}
			for dec.More() {
				e, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				elems = append(elems, e)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return NewArray(elems), nil
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, errors.Errorf("invalid object key %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		}
		return nil, errors.Errorf("unexpected delimiter %v", t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, errors.Wrapf(err, "invalid number %s", t)
		}
		return Number{Value: f}, nil
	case string:
		return String{Value: t}, nil
	case bool:
		return Bool{Value: t}, nil
	case nil:
		return Null{}, nil
	}
	return nil, errors.Errorf("unexpected token %v", tok)
}
