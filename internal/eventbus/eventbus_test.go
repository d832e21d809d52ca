package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type ping struct{ N int }
type pong struct{ S string }

func TestDispatchByType(t *testing.T) {
	b := New()
	var pings []int
	var pongs []string
	On(b, func(_ context.Context, e ping) { pings = append(pings, e.N) })
	On(b, func(_ context.Context, e pong) { pongs = append(pongs, e.S) })

	Emit(context.Background(), b, ping{1})
	Emit(context.Background(), b, pong{"a"})
	Emit(context.Background(), b, ping{2})

	require.Equal(t, []int{1, 2}, pings)
	require.Equal(t, []string{"a"}, pongs)
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	var first, second int
	off := On(b, func(context.Context, ping) { first++ })
	On(b, func(context.Context, ping) { second++ })
	require.Equal(t, 2, Len[ping](b))

	Emit(context.Background(), b, ping{})
	off()
	off()
	Emit(context.Background(), b, ping{})

	require.Equal(t, 1, first)
	require.Equal(t, 2, second)
	require.Equal(t, 1, Len[ping](b))
}

func TestUnsubscribeDuringDispatch(t *testing.T) {
	b := New()
	var calls int
	var off func()
	off = On(b, func(context.Context, ping) {
		calls++
		off()
	})
	Emit(context.Background(), b, ping{})
	Emit(context.Background(), b, ping{})
	require.Equal(t, 1, calls)
	require.Zero(t, Len[ping](b))
}

func TestGlobalBus(t *testing.T) {
	Use(nil)
	t.Cleanup(func() { Use(nil) })

	// without a bus everything is a no-op
	off := Subscribe(func(context.Context, ping) { t.Fatal("unexpected event") })
	off()
	Publish(context.Background(), ping{})

	Use(New())
	var got []int
	Subscribe(func(_ context.Context, e ping) { got = append(got, e.N) })
	Publish(context.Background(), ping{7})
	require.Equal(t, []int{7}, got)
}

func TestContextPassedThrough(t *testing.T) {
	type key struct{}
	b := New()
	var seen any
	On(b, func(ctx context.Context, _ ping) { seen = ctx.Value(key{}) })
	Emit(context.WithValue(context.Background(), key{}, "v"), b, ping{})
	require.Equal(t, "v", seen)
}
