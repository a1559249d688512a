package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	metricsFile = ""
	RootCmd.SetOut(&out)
	RootCmd.SetArgs(args)
	require.NoError(t, RootCmd.Execute())
	return out.Bytes()
}

func TestPersonAndParentCommands(t *testing.T) {
	t.Setenv("FAMGRAPH_CONFIG", "")
	dir := t.TempDir()
	db := filepath.Join(dir, "cli.db")
	prom := filepath.Join(dir, "famgraph.prom")

	add := func(first, gender, born string) string {
		var p struct {
			ID string `json:"id"`
		}
		out := run(t, "person", "add", "--db", db, "--first", first, "--last", "Curie", "-g", gender, "--born", born)
		require.NoError(t, json.Unmarshal(out, &p), string(out))
		require.NotEmpty(t, p.ID)
		return p.ID
	}
	marie := add("Marie", "F", "1867-11-07")
	irene := add("Irene", "f", `{"fromYear":1897,"toYear":1897}`)

	run(t, "parent", "add", "--db", db, "--metrics-file", prom, irene, marie)
	metrics, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `famgraph_operations_total{op="create_parent",outcome="ok"} 1`)

	var parents []struct {
		ID        string `json:"id"`
		FirstName string `json:"firstName"`
	}
	out := run(t, "parent", "list", "--db", db, irene)
	require.NoError(t, json.Unmarshal(out, &parents), string(out))
	require.Len(t, parents, 1)
	assert.Equal(t, marie, parents[0].ID)
	assert.Equal(t, "Marie", parents[0].FirstName)

	var children []struct {
		FirstName string `json:"firstName"`
	}
	out = run(t, "relation", "--db", db, "childrens", marie)
	require.NoError(t, json.Unmarshal(out, &children), string(out))
	assert.Len(t, children, 1)
}

func TestRelationCategories(t *testing.T) {
	out := run(t, "relation", "categories")
	assert.Contains(t, string(out), "grandParents\n")
	assert.Contains(t, string(out), "siblingsInLaw\n")
}
