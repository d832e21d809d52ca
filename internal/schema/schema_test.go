package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func fieldNames(t *testing.T, d *Document, typeName string) []string {
	t.Helper()
	def := d.Definition(typeName)
	require.NotNil(t, def, "missing definition %s", typeName)
	var names []string
	for _, f := range def.Fields {
		names = append(names, f.Name)
	}
	return names
}

func TestParseMergesExtensions(t *testing.T) {
	d, err := Parse("test.graphql", `
type Query { posts: [Post] }
type Post { id: ID! title: String }
extend type Post { body: String }
extend type Mutation { Post_create(title: String): Post }
`)
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"id", "title", "body"}, fieldNames(t, d, "Post")); diff != "" {
		t.Errorf("Post fields mismatch (-want +got):\n%s", diff)
	}
	require.NotNil(t, d.Mutation(), "extension without base must become a definition")
	require.Equal(t, "Post_create", d.Mutation().Fields[0].Name)

	// the parsed AST itself is left untouched
	require.Len(t, d.AST().Definitions.ForName("Post").Fields, 2)
}

func TestParseHonorsSchemaDefinition(t *testing.T) {
	d, err := Parse("roots.graphql", `
schema { query: RootQuery mutation: RootMutation }
type RootQuery { posts: [Post] }
type RootMutation { Post_create: Post }
type Post { id: ID }
`)
	require.NoError(t, err)
	require.Equal(t, "RootQuery", d.QueryType)
	require.Equal(t, "RootMutation", d.MutationType)
	require.NotNil(t, d.Query())
	require.NotNil(t, d.Mutation())
	require.Nil(t, d.Definition("Query"))
}

func TestParseError(t *testing.T) {
	_, err := Parse("broken.graphql", `type Query {`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "broken.graphql")
}

func TestTypeHelpers(t *testing.T) {
	d, err := Parse("types.graphql", `
type Query {
  a: Post
  b: Post!
  c: [Post]
  d: [Post!]!
  e: [[Post]]
}
type Post { id: ID }
`)
	require.NoError(t, err)

	type row struct {
		element string
		named   string
		str     string
		nonNull bool
		list    bool
	}
	want := map[string]row{
		"a": {element: "Post", named: "Post", str: "Post"},
		"b": {element: "Post", named: "Post", str: "Post!", nonNull: true},
		"c": {element: "Post", str: "[Post]", list: true},
		"d": {element: "Post", str: "[Post!]!", nonNull: true, list: true},
		"e": {element: "", str: "[[Post]]", list: true},
	}
	for _, f := range d.Query().Fields {
		got := row{
			element: ElementType(f.Type),
			named:   NamedType(f.Type),
			str:     TypeString(f.Type),
			nonNull: IsNonNull(f.Type),
			list:    IsList(f.Type),
		}
		if diff := cmp.Diff(want[f.Name], got, cmp.AllowUnexported(row{})); diff != "" {
			t.Errorf("field %s mismatch (-want +got):\n%s", f.Name, diff)
		}
	}
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.graphql"), []byte(`type Query { posts: [Post] }`), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.graphqls"), []byte(`type Post { id: ID }`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte(`not a schema`), 0644))

	d, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, d.Query())
	require.NotNil(t, d.Definition("Post"))
	require.Len(t, d.Definitions(), 2)
}

func TestLoadEmptyDirectory(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
}
