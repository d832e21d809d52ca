package schema

import language "github.com/hanpama/gqladmin/internal/language"

// IsNonNull reports whether the type is wrapped with Non-Null.
func IsNonNull(t *language.Type) bool { return t != nil && t.NonNull }

// IsList reports whether the type is a list, nullable or not.
func IsList(t *language.Type) bool { return t != nil && t.Elem != nil }

// NamedType returns the name of a non-list type, ignoring Non-Null.
// It returns "" for lists and nil.
func NamedType(t *language.Type) string {
	if t == nil || t.Elem != nil {
		return ""
	}
	return t.NamedType
}

// ElementType unwraps at most one list modifier and returns the element's
// type name. Nested lists have no element name.
func ElementType(t *language.Type) string {
	if t == nil {
		return ""
	}
	if t.Elem != nil {
		return NamedType(t.Elem)
	}
	return t.NamedType
}

// TypeString renders the type reference in SDL form, e.g. "ID!" or "[Tag!]".
func TypeString(t *language.Type) string {
	if t == nil {
		return ""
	}
	return t.String()
}
