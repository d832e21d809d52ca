package overlay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MarshalJSON writes objects with their keys in insertion order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.b))
	case Number:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			buf.WriteString("null")
			return nil
		}
		b, err := json.Marshal(v.n)
		if err != nil {
			return err
		}
		buf.Write(b)
	case String:
		b, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(b)
	case List:
		buf.WriteByte('[')
		for i, e := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, k := range v.obj.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := v.obj.vals[k].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// UnmarshalJSON decodes any JSON value, keeping object key order.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	out, err := decodeJSON(dec)
	if err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("overlay: trailing data after JSON value")
	}
	*v = out
	return nil
}

func decodeJSON(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case nil:
		return Value{}, nil
	case bool:
		return BoolValue(t), nil
	case string:
		return StringValue(t), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("overlay: invalid number %q: %w", t, err)
		}
		return NumberValue(n), nil
	case json.Delim:
		switch t {
		case '[':
			out := Value{kind: List, list: []Value{}}
			for dec.More() {
				e, err := decodeJSON(dec)
				if err != nil {
					return Value{}, err
				}
				out.list = append(out.list, e)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return out, nil
		case '{':
			out := NewObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := kt.(string)
				if !ok {
					return Value{}, fmt.Errorf("overlay: object key %v is not a string", kt)
				}
				e, err := decodeJSON(dec)
				if err != nil {
					return Value{}, err
				}
				out.Set(key, e)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return out, nil
		}
	}
	return Value{}, fmt.Errorf("overlay: unexpected JSON token %v", tok)
}

// UnmarshalYAML decodes a YAML node, keeping mapping key order.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	out, err := decodeYAML(node)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

func decodeYAML(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Value{}, nil
		}
		return decodeYAML(node.Content[0])
	case yaml.AliasNode:
		return decodeYAML(node.Alias)
	case yaml.SequenceNode:
		out := Value{kind: List, list: make([]Value, 0, len(node.Content))}
		for _, item := range node.Content {
			e, err := decodeYAML(item)
			if err != nil {
				return Value{}, err
			}
			out.list = append(out.list, e)
		}
		return out, nil
	case yaml.MappingNode:
		out := NewObject()
		for i := 0; i+1 < len(node.Content); i += 2 {
			k, vn := node.Content[i], node.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return Value{}, fmt.Errorf("overlay: line %d: mapping key must be a scalar", k.Line)
			}
			e, err := decodeYAML(vn)
			if err != nil {
				return Value{}, err
			}
			out.Set(k.Value, e)
		}
		return out, nil
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!null":
			return Value{}, nil
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return Value{}, err
			}
			return BoolValue(b), nil
		case "!!int", "!!float":
			var n float64
			if err := node.Decode(&n); err != nil {
				return Value{}, err
			}
			return NumberValue(n), nil
		}
		return StringValue(node.Value), nil
	}
	return Value{}, fmt.Errorf("overlay: line %d: unsupported YAML node", node.Line)
}

// MarshalYAML returns a node tree so mapping keys keep insertion order.
func (v Value) MarshalYAML() (any, error) {
	return v.yamlNode(), nil
}

func (v Value) yamlNode() *yaml.Node {
	switch v.kind {
	case Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.b)}
	case Number:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(v.n, 'g', -1, 64)}
	case String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.s}
	case List:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range v.list {
			n.Content = append(n.Content, e.yamlNode())
		}
		return n
	case Object:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range v.obj.keys {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				v.obj.vals[k].yamlNode())
		}
		return n
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

// ParseJSON decodes a JSON document into a Value.
func ParseJSON(data []byte) (Value, error) {
	var v Value
	if len(bytes.TrimSpace(data)) == 0 {
		return v, nil
	}
	err := v.UnmarshalJSON(data)
	return v, err
}

// ParseYAML decodes a YAML document into a Value.
func ParseYAML(data []byte) (Value, error) {
	var v Value
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Value{}, err
	}
	return v, nil
}
