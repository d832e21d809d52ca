package shape

import (
	"github.com/hanpama/gqladmin/internal/overlay"
)

// Method names a CRUD resolver slot of a type.
type Method string

const (
	Find   Method = "find"
	Create Method = "create"
	Update Method = "update"
	Remove Method = "remove"
)

// Methods lists the resolver slots in output order.
var Methods = []Method{Find, Create, Update, Remove}

// Shape is the generated admin configuration: type descriptors keyed by
// type name, in the order their Query fields were declared.
type Shape struct {
	order []string
	types map[string]*TypeDescriptor
}

func newShape() *Shape { return &Shape{types: make(map[string]*TypeDescriptor)} }

// set stores d under name. A name seen before keeps its position.
func (s *Shape) set(name string, d *TypeDescriptor) {
	if _, ok := s.types[name]; !ok {
		s.order = append(s.order, name)
	}
	s.types[name] = d
}

// Names returns type names in output order.
func (s *Shape) Names() []string { return append([]string(nil), s.order...) }

// Type returns the descriptor for name or nil.
func (s *Shape) Type(name string) *TypeDescriptor { return s.types[name] }

// Len returns the number of types.
func (s *Shape) Len() int { return len(s.order) }

// TypeDescriptor describes one administrable type.
type TypeDescriptor struct {
	Label      string
	ListHeader ListHeader
	Resolvers  map[Method]*ResolverDescriptor
	Fields     []*FieldDescriptor
}

// ListHeader names the columns used for a type's list view. Each slice
// holds at most one field name.
type ListHeader struct {
	ID    []string
	Title []string
}

// Field returns the named field descriptor or nil.
func (d *TypeDescriptor) Field(name string) *FieldDescriptor {
	for _, f := range d.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (d *TypeDescriptor) setField(f *FieldDescriptor) {
	for i, existing := range d.Fields {
		if existing.Name == f.Name {
			d.Fields[i] = f
			return
		}
	}
	d.Fields = append(d.Fields, f)
}

// ResolverDescriptor binds a CRUD slot to a backend operation.
type ResolverDescriptor struct {
	Resolver string
	Args     Args
	Allowed  bool
}

// Args holds the arguments of the same-named Query and Mutation fields;
// either may be empty.
type Args struct {
	Query    ArgMap
	Mutation ArgMap
}

// Arg is a declared argument and its SDL type string.
type Arg struct {
	Name string
	Type string
}

// ArgMap is an ordered argument-name to type-string mapping. Non-null types
// carry a trailing "!".
type ArgMap []Arg

// Lookup returns the type string of the named argument.
func (m ArgMap) Lookup(name string) (string, bool) {
	for _, a := range m {
		if a.Name == name {
			return a.Type, true
		}
	}
	return "", false
}

// FieldDescriptor configures the input for one field of a type.
type FieldDescriptor struct {
	Name         string
	Label        string
	FieldType    string
	InputType    string
	InputControl string
	Disabled     bool
	Exclude      bool
}

// Tree converts the shape into an overlay tree ready to merge with rules.
func (s *Shape) Tree() overlay.Value {
	root := overlay.NewObject()
	for _, name := range s.order {
		root.Set(name, s.types[name].Tree())
	}
	return root
}

// MarshalJSON encodes the shape with types and fields in declaration order.
func (s *Shape) MarshalJSON() ([]byte, error) { return s.Tree().MarshalJSON() }

func (d *TypeDescriptor) Tree() overlay.Value {
	resolvers := overlay.NewObject()
	for _, m := range Methods {
		if r, ok := d.Resolvers[m]; ok {
			resolvers.Set(string(m), r.Tree())
		}
	}
	fields := overlay.NewObject()
	for _, f := range d.Fields {
		fields.Set(f.Name, f.Tree())
	}
	return overlay.NewObject().
		Set("label", overlay.StringValue(d.Label)).
		Set("listHeader", overlay.NewObject().
			Set("id", overlay.StringList(d.ListHeader.ID...)).
			Set("title", overlay.StringList(d.ListHeader.Title...))).
		Set("resolvers", resolvers).
		Set("fields", fields)
}

func (r *ResolverDescriptor) Tree() overlay.Value {
	return overlay.NewObject().
		Set("resolver", overlay.StringValue(r.Resolver)).
		Set("args", overlay.NewObject().
			Set("query", r.Args.Query.Tree()).
			Set("mutation", r.Args.Mutation.Tree())).
		Set("allowed", overlay.BoolValue(r.Allowed))
}

func (m ArgMap) Tree() overlay.Value {
	obj := overlay.NewObject()
	for _, a := range m {
		obj.Set(a.Name, overlay.StringValue(a.Type))
	}
	return obj
}

func (f *FieldDescriptor) Tree() overlay.Value {
	return overlay.NewObject().
		Set("label", overlay.StringValue(f.Label)).
		Set("fieldType", overlay.StringValue(f.FieldType)).
		Set("inputType", overlay.StringValue(f.InputType)).
		Set("inputControl", overlay.StringValue(f.InputControl)).
		Set("disabled", overlay.BoolValue(f.Disabled)).
		Set("exclude", overlay.BoolValue(f.Exclude))
}
