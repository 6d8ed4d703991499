package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smokeGraph = `{
  "name": "smoke",
  "version": "1.0",
  "nodes": [
    {"id": "gen", "type": "generator", "config": {}},
    {"id": "sink", "type": "counting_sink", "config": {}}
  ],
  "connections": [
    {"from": "gen.out", "to": "sink.in"}
  ]
}`

func writeGraph(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateExitsZeroOnGoodGraph(t *testing.T) {
	path := writeGraph(t, smokeGraph)
	assert.Equal(t, exitOK, run([]string{"validate", path}))
}

func TestDryRunPrintsTopologicalOrder(t *testing.T) {
	path := writeGraph(t, smokeGraph)
	assert.Equal(t, exitOK, run([]string{"dry-run", path}))
}

func TestValidateExitsNonZeroOnCycle(t *testing.T) {
	cyclic := `{
		"name": "bad", "version": "1.0",
		"nodes": [
			{"id": "a", "type": "passthrough", "config": {}},
			{"id": "b", "type": "passthrough", "config": {}}
		],
		"connections": [
			{"from": "a.out", "to": "b.in"},
			{"from": "b.out", "to": "a.in"}
		]
	}`
	path := writeGraph(t, cyclic)
	assert.Equal(t, exitConfigError, run([]string{"validate", path}))
}

func TestMissingArgsPrintsUsageAndExitsNonZero(t *testing.T) {
	assert.Equal(t, exitConfigError, run(nil))
	assert.Equal(t, exitConfigError, run([]string{"validate"}))
}
