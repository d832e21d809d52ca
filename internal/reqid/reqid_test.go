package reqid

import (
	"context"
	"strings"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	ctx, id := NewContext(context.Background())
	got, ok := FromContext(ctx)
	if !ok || got != id {
		t.Fatalf("expected %q from context, got %q ok=%v", id, got, ok)
	}
	if _, ok := FromContext(context.Background()); ok {
		t.Fatalf("unexpected id in empty context")
	}
}

func TestNewAlphabet(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := New()
		if len(id) != size {
			t.Fatalf("id %q has length %d", id, len(id))
		}
		if strings.Trim(id, alphabet) != "" {
			t.Fatalf("id %q has characters outside the alphabet", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestWithID(t *testing.T) {
	ctx, id := WithID(context.Background(), "abc")
	if got, _ := FromContext(ctx); got != "abc" || id != "abc" {
		t.Fatalf("expected caller id, got %q", got)
	}
	ctx, id = WithID(context.Background(), "")
	if got, _ := FromContext(ctx); got == "" || got != id {
		t.Fatalf("expected generated id, got %q", got)
	}
}

func TestSerialIsUniquePerRequest(t *testing.T) {
	ctx1, id1 := WithID(context.Background(), "retry-42")
	ctx2, id2 := WithID(context.Background(), "retry-42")
	if id1 != id2 {
		t.Fatalf("expected the caller id twice, got %q and %q", id1, id2)
	}
	s1, ok1 := SerialFromContext(ctx1)
	s2, ok2 := SerialFromContext(ctx2)
	if !ok1 || !ok2 || s1 == "" || s1 == s2 {
		t.Fatalf("expected distinct serials, got %q and %q", s1, s2)
	}

	ctx, id := NewContext(context.Background())
	if s, _ := SerialFromContext(ctx); s != id {
		t.Fatalf("expected generated id as serial, got %q", s)
	}
	if _, ok := SerialFromContext(context.Background()); ok {
		t.Fatalf("unexpected serial in empty context")
	}
}
