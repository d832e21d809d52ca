package overlay

import (
	"math"
	"sort"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	List
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case List:
		return "list"
	case Object:
		return "object"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a node of a configuration tree: a scalar, an ordered list or an
// object with ordered keys. The zero Value is Null and also stands for an
// absent entry.
//
// Objects are reference-like: copies of an Object Value share their
// entries. Use Clone before handing a tree to code that mutates it.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	list []Value
	obj  *object
}

type object struct {
	keys []string
	vals map[string]Value
}

func NullValue() Value            { return Value{} }
func BoolValue(b bool) Value      { return Value{kind: Bool, b: b} }
func NumberValue(n float64) Value { return Value{kind: Number, n: n} }
func StringValue(s string) Value  { return Value{kind: String, s: s} }
func ListValue(vs ...Value) Value { return Value{kind: List, list: append([]Value{}, vs...)} }
func NewObject() Value            { return Value{kind: Object, obj: &object{vals: map[string]Value{}}} }
func StringList(ss ...string) Value {
	vs := make([]Value, len(ss))
	for i, s := range ss {
		vs[i] = StringValue(s)
	}
	return Value{kind: List, list: vs}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == Null }

// Truthy reports whether v is truthy: everything except null, false, 0,
// NaN and the empty string.
func (v Value) Truthy() bool {
	switch v.kind {
	case Null:
		return false
	case Bool:
		return v.b
	case Number:
		return v.n != 0 && !math.IsNaN(v.n)
	case String:
		return v.s != ""
	}
	return true
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == Bool }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.s, v.kind == String }

// Len returns the number of list items or object keys.
func (v Value) Len() int {
	switch v.kind {
	case List:
		return len(v.list)
	case Object:
		return len(v.obj.keys)
	}
	return 0
}

// Keys returns object keys in insertion order.
func (v Value) Keys() []string {
	if v.kind != Object {
		return nil
	}
	return append([]string(nil), v.obj.keys...)
}

// Get returns the entry stored under key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Object {
		return Value{}, false
	}
	e, ok := v.obj.vals[key]
	return e, ok
}

// Lookup walks object keys and returns the entry at the end of path.
func (v Value) Lookup(path ...string) (Value, bool) {
	cur := v
	for _, key := range path {
		next, ok := cur.Get(key)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}

// Set stores e under key, appending key when new. Set panics when v is not
// an object.
func (v Value) Set(key string, e Value) Value {
	if v.kind != Object {
		panic("overlay: Set on " + v.kind.String())
	}
	if _, ok := v.obj.vals[key]; !ok {
		v.obj.keys = append(v.obj.keys, key)
	}
	v.obj.vals[key] = e
	return v
}

// Delete removes key from an object; it is a no-op for other kinds.
func (v Value) Delete(key string) {
	if v.kind != Object {
		return
	}
	if _, ok := v.obj.vals[key]; !ok {
		return
	}
	delete(v.obj.vals, key)
	for i, k := range v.obj.keys {
		if k == key {
			v.obj.keys = append(v.obj.keys[:i], v.obj.keys[i+1:]...)
			break
		}
	}
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case List:
		out := make([]Value, len(v.list))
		for i, e := range v.list {
			out[i] = e.Clone()
		}
		return Value{kind: List, list: out}
	case Object:
		out := NewObject()
		for _, k := range v.obj.keys {
			out.Set(k, v.obj.vals[k].Clone())
		}
		return out
	}
	return v
}

// Interface converts v to plain Go values: nil, bool, float64, string,
// []any and map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case Bool:
		return v.b
	case Number:
		return v.n
	case String:
		return v.s
	case List:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.Interface()
		}
		return out
	case Object:
		out := make(map[string]any, len(v.obj.keys))
		for _, k := range v.obj.keys {
			out[k] = v.obj.vals[k].Interface()
		}
		return out
	}
	return nil
}

// FromInterface converts plain Go values to a Value. Map keys are sorted
// since Go maps carry no order. Unsupported types become Null.
func FromInterface(x any) Value {
	switch t := x.(type) {
	case nil:
		return Value{}
	case Value:
		return t.Clone()
	case bool:
		return BoolValue(t)
	case string:
		return StringValue(t)
	case float64:
		return NumberValue(t)
	case float32:
		return NumberValue(float64(t))
	case int:
		return NumberValue(float64(t))
	case int32:
		return NumberValue(float64(t))
	case int64:
		return NumberValue(float64(t))
	case uint:
		return NumberValue(float64(t))
	case uint64:
		return NumberValue(float64(t))
	case []string:
		return StringList(t...)
	case []any:
		vs := make([]Value, len(t))
		for i, e := range t {
			vs[i] = FromInterface(e)
		}
		return Value{kind: List, list: vs}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := NewObject()
		for _, k := range keys {
			out.Set(k, FromInterface(t[k]))
		}
		return out
	}
	return Value{}
}
