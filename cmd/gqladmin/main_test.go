package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hanpama/gqladmin/internal/config"
)

const blogSDL = `
type Query {
  Post_find(id: ID): [Post]
}
type Mutation {
  Post_create(title: String!): Post
  Post_update(id: ID!, title: String): Post
}
type Post {
  id: ID!
  title: String
}
`

// project writes a schema, a rules file and a config into a temp dir and
// clears GQLADMIN_* variables for the test.
func project(t *testing.T) (dir, cfgPath string) {
	t.Helper()
	for _, k := range []string{config.EnvAddr, config.EnvSchemaFile, config.EnvRulesFile, config.EnvOTelEndpoint} {
		t.Setenv(k, "")
	}
	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.graphql"), []byte(blogSDL), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.yaml"), []byte("Post:\n  label: Articles\n  resolvers:\n    update:\n      allowed: false\n"), 0644))
	cfgPath = filepath.Join(dir, config.ConfigFile)
	require.NoError(t, os.WriteFile(cfgPath, []byte("schema_file = \"schema.graphql\"\nrules_file = \"rules.yaml\"\n"), 0644))
	return dir, cfgPath
}

func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestGenerateJSON(t *testing.T) {
	_, cfgPath := project(t)
	out, _, err := runCmd(t, "generate", "--config", cfgPath, "--json")
	require.NoError(t, err)

	var shape map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &shape))
	post := shape["Post"].(map[string]any)
	require.Equal(t, "Articles", post["label"])
	resolvers := post["resolvers"].(map[string]any)
	require.Contains(t, resolvers, "create")
	require.NotContains(t, resolvers, "update")
	require.NotContains(t, out, "\x1b[", "plain output has no color codes")
}

func TestGenerateColor(t *testing.T) {
	_, cfgPath := project(t)
	out, _, err := runCmd(t, "generate", "-c", cfgPath)
	require.NoError(t, err)
	require.Contains(t, out, "\x1b[")
}

func TestGenerateYAML(t *testing.T) {
	_, cfgPath := project(t)
	out, _, err := runCmd(t, "generate", "--config", cfgPath, "--yaml")
	require.NoError(t, err)

	var shape map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &shape))
	post := shape["Post"].(map[string]any)
	require.Equal(t, "Articles", post["label"])
	require.True(t, strings.HasPrefix(out, "Post:\n  label: Articles\n"))

	_, _, err = runCmd(t, "generate", "--config", cfgPath, "--yaml", "--json")
	require.Error(t, err)
}

func TestFlagsOverrideConfig(t *testing.T) {
	dir, cfgPath := project(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.json"), []byte(`{"Post":{"label":"Posts"}}`), 0644))

	out, _, err := runCmd(t, "generate", "--config", cfgPath, "--json", "--rules", filepath.Join(dir, "rules.json"))
	require.NoError(t, err)
	require.Contains(t, out, `"Posts"`)

	out, _, err = runCmd(t, "generate", "--config", cfgPath, "--json", "--exclude", "Post")
	require.NoError(t, err)
	require.Equal(t, "{}", strings.TrimSpace(out))
}

func TestSchemaCommand(t *testing.T) {
	dir, _ := project(t)
	out, _, err := runCmd(t, "schema", "--config", filepath.Join(dir, "absent.toml"), "--schema", filepath.Join(dir, "schema.graphql"))
	require.NoError(t, err)
	require.Contains(t, out, "type Post {")
	require.Contains(t, out, "  title: String")
}

func TestMissingSchema(t *testing.T) {
	project(t)
	_, _, err := runCmd(t, "generate", "--config", filepath.Join(t.TempDir(), "absent.toml"))
	require.True(t, errors.Is(err, config.ErrMissingSchema), "got %v", err)
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := runCmd(t, "compile")
	require.Error(t, err)
}
