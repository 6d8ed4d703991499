package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
  "name": "demo",
  "version": "1.0",
  "nodes": [
    {"id": "src", "type": "generator", "config": {}, "enabled": true},
    {"id": "sink", "type": "counter", "config": {}, "enabled": true}
  ],
  "connections": [
    {"from": "src.out", "to": "sink.in", "enabled": true}
  ]
}`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadParsesDocument(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, sampleDoc)
	doc, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "demo", doc.Name)
	require.Len(t, doc.Nodes, 2)
	assert.Equal(t, "src", doc.Nodes[0].ID)
	assert.Equal(t, "sink", doc.Nodes[1].ID)
	require.Len(t, doc.Connections, 1)
	assert.Equal(t, "src.out", doc.Connections[0].From)
}

func TestNodeAndEdgeSpecsPreserveOrder(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, sampleDoc)
	doc, err := Load(path)
	require.NoError(t, err)

	specs := doc.NodeSpecs()
	require.Len(t, specs, 2)
	assert.Equal(t, "src", specs[0].ID)
	assert.Equal(t, "sink", specs[1].ID)

	edges, err := doc.EdgeSpecs()
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "src", edges[0].FromNode)
	assert.Equal(t, "out", edges[0].FromPort)
	assert.Equal(t, "sink", edges[0].ToNode)
	assert.Equal(t, "in", edges[0].ToPort)
}

func TestEdgeSpecsRejectsMalformedRef(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, `{
		"name": "bad", "version": "1.0",
		"nodes": [],
		"connections": [{"from": "noport", "to": "a.b"}]
	}`)
	doc, err := Load(path)
	require.NoError(t, err)

	_, err = doc.EdgeSpecs()
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoadSaveRoundTripsOrderAndContent(t *testing.T) {
	t.Parallel()

	inPath := writeTemp(t, sampleDoc)
	doc, err := Load(inPath)
	require.NoError(t, err)

	outPath := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, Save(doc, outPath))

	reloaded, err := Load(outPath)
	require.NoError(t, err)

	assert.Equal(t, doc.Name, reloaded.Name)
	assert.Equal(t, doc.Version, reloaded.Version)
	require.Len(t, reloaded.Nodes, len(doc.Nodes))
	for i := range doc.Nodes {
		assert.Equal(t, doc.Nodes[i].ID, reloaded.Nodes[i].ID)
		assert.Equal(t, doc.Nodes[i].Type, reloaded.Nodes[i].Type)
	}
	require.Len(t, reloaded.Connections, len(doc.Connections))
	for i := range doc.Connections {
		assert.Equal(t, doc.Connections[i].From, reloaded.Connections[i].From)
		assert.Equal(t, doc.Connections[i].To, reloaded.Connections[i].To)
	}
}
