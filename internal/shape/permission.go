package shape

import (
	language "github.com/hanpama/gqladmin/internal/language"
	"github.com/hanpama/gqladmin/internal/overlay"
)

// IsAllowed reports whether a mutation-backed method may be offered. The
// mutation "{Type}_{method}" must exist; when it does, a boolean or truthy
// rules[typeName].resolvers[method].allowed decides. Find is not gated.
func IsAllowed(typeName string, method Method, mutationFields language.FieldList, rules overlay.Value) bool {
	if mutationFields.ForName(CanonicalName(typeName, method)) == nil {
		return false
	}
	if v, ok := rules.Lookup(typeName, "resolvers", string(method), "allowed"); ok {
		if _, isBool := v.AsBool(); isBool || v.Truthy() {
			return v.Truthy()
		}
	}
	return true
}
