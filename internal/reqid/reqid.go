package reqid

import (
	"context"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Header is the HTTP header that carries a caller-supplied request ID.
const Header = "X-Request-Id"

const (
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	size     = 16
)

// key is the context key for the request IDs.
type key struct{}

// ids pairs the reported request ID with the serial this process assigned
// to the request. Callers may reuse an ID; serials are never reused.
type ids struct {
	id     string
	serial string
}

// New generates a random request ID.
func New() string { return gonanoid.MustGenerate(alphabet, size) }

// NewContext returns a copy of parent with a new random request ID stored.
// It also returns the generated ID.
func NewContext(parent context.Context) (context.Context, string) {
	id := New()
	return context.WithValue(parent, key{}, ids{id: id, serial: id}), id
}

// WithID stores id in ctx. An empty id is replaced by a generated one.
// A fresh serial is assigned either way.
func WithID(parent context.Context, id string) (context.Context, string) {
	if id == "" {
		return NewContext(parent)
	}
	return context.WithValue(parent, key{}, ids{id: id, serial: New()}), id
}

// FromContext extracts the request ID from ctx.
// It returns the ID and whether it was present.
func FromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(key{}).(ids)
	return v.id, ok
}

// SerialFromContext extracts the serial assigned to the request in ctx.
// Unlike the request ID it is unique among in-flight requests.
func SerialFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(key{}).(ids)
	return v.serial, ok
}
