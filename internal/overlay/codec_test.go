package overlay

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"
)

func TestJSONKeepsKeyOrder(t *testing.T) {
	in := `{"zeta":1,"alpha":{"b":[true,null,"x"],"a":-2.5},"mid":""}`
	v := mustJSON(t, in)
	require.Equal(t, []string{"zeta", "alpha", "mid"}, v.Keys())
	require.Equal(t, in, jsonString(t, v))
}

func TestJSONErrors(t *testing.T) {
	for _, in := range []string{`{"a":}`, `{"a":1} {"b":2}`, `[1,2`} {
		_, err := ParseJSON([]byte(in))
		require.Error(t, err, in)
	}

	v, err := ParseJSON([]byte("  \n"))
	require.NoError(t, err)
	require.True(t, v.IsNull())
}

func TestJSONNonFiniteNumbers(t *testing.T) {
	v := NewObject().Set("n", NumberValue(math.NaN())).Set("i", NumberValue(math.Inf(1)))
	require.Equal(t, `{"n":null,"i":null}`, jsonString(t, v))
	require.False(t, NumberValue(math.NaN()).Truthy())
}

func TestYAMLMatchesJSON(t *testing.T) {
	y := `
Post:
  label: Articles
  resolvers:
    create:
      allowed: false
    update:
      resolver: Post_edit
  listHeader:
    title: [headline]
  order: 3
  ratio: 0.5
  note: ~
`
	fromYAML, err := ParseYAML([]byte(y))
	require.NoError(t, err)

	fromJSON := mustJSON(t, `{"Post":{"label":"Articles","resolvers":{"create":{"allowed":false},"update":{"resolver":"Post_edit"}},"listHeader":{"title":["headline"]},"order":3,"ratio":0.5,"note":null}}`)
	require.Equal(t, jsonString(t, fromJSON), jsonString(t, fromYAML))
}

func TestYAMLAliases(t *testing.T) {
	y := `
defaults: &locked
  allowed: false
Post:
  resolvers:
    remove: *locked
`
	v, err := ParseYAML([]byte(y))
	require.NoError(t, err)
	allowed, ok := v.Lookup("Post", "resolvers", "remove", "allowed")
	require.True(t, ok)
	b, isBool := allowed.AsBool()
	require.True(t, isBool)
	require.False(t, b)
}

func TestYAMLRoundTripKeepsOrder(t *testing.T) {
	v := mustJSON(t, `{"b":{"z":"0","y":1},"a":[true,"text"]}`)
	out, err := yaml.Marshal(v)
	require.NoError(t, err)

	back, err := ParseYAML(out)
	require.NoError(t, err)
	require.Equal(t, jsonString(t, v), jsonString(t, back))
}

func TestProtoRoundTrip(t *testing.T) {
	v := mustJSON(t, `{"Post":{"label":"Post","allowed":true,"width":3,"listHeader":{"id":["id"]},"none":null}}`)

	b, err := proto.Marshal(v.ToProto())
	require.NoError(t, err)

	pv := new(structpb.Value)
	require.NoError(t, proto.Unmarshal(b, pv))

	if diff := cmp.Diff(v.Interface(), FromProto(pv).Interface()); diff != "" {
		t.Errorf("proto round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFromInterface(t *testing.T) {
	v := FromInterface(map[string]any{
		"b":    []any{1, "x", nil},
		"a":    true,
		"list": []string{"p", "q"},
	})
	require.Equal(t, `{"a":true,"b":[1,"x",null],"list":["p","q"]}`, jsonString(t, v))
}

func TestTruthy(t *testing.T) {
	falsy := []Value{NullValue(), BoolValue(false), NumberValue(0), StringValue("")}
	truthy := []Value{BoolValue(true), NumberValue(-1), StringValue("0"), NewObject(), ListValue()}
	for _, v := range falsy {
		require.False(t, v.Truthy(), "%s", v.Kind())
	}
	for _, v := range truthy {
		require.True(t, v.Truthy(), "%s", v.Kind())
	}
}
