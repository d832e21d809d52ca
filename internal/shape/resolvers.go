package shape

import (
	language "github.com/hanpama/gqladmin/internal/language"
	"github.com/hanpama/gqladmin/internal/overlay"
	"github.com/hanpama/gqladmin/internal/schema"
)

// CanonicalName is the conventional resolver name "{Type}_{method}".
func CanonicalName(typeName string, method Method) string {
	return typeName + "_" + string(method)
}

// ResolverName returns rules[typeName].resolvers[method].resolver when it is
// a non-empty string and the canonical name otherwise.
func ResolverName(typeName string, method Method, rules overlay.Value) string {
	if v, ok := rules.Lookup(typeName, "resolvers", string(method), "resolver"); ok {
		if name, ok := v.AsString(); ok && name != "" {
			return name
		}
	}
	return CanonicalName(typeName, method)
}

// ResolverArgs returns the arguments declared by the field in fields whose
// name is the resolver name of (typeName, method). A missing field yields an
// empty map.
func ResolverArgs(typeName string, method Method, fields language.FieldList, rules overlay.Value) ArgMap {
	args := ArgMap{}
	f := fields.ForName(ResolverName(typeName, method, rules))
	if f == nil {
		return args
	}
	for _, a := range f.Arguments {
		args = append(args, Arg{Name: a.Name, Type: schema.TypeString(a.Type)})
	}
	return args
}
