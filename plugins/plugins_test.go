package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/streamdag/plugin"
)

func TestRegisterAllExposesExampleTypes(t *testing.T) {
	t.Parallel()

	reg := plugin.NewRegistry(nil)
	RegisterAll(reg)

	for _, typeName := range []string{"generator", "passthrough", "counting_sink"} {
		_, _, err := reg.Get(typeName)
		require.NoError(t, err)
	}
}

func TestGeneratorEmitsIncrementingValues(t *testing.T) {
	t.Parallel()

	node, err := NewGenerator("g1", map[string]any{"step": 2.0})
	require.NoError(t, err)
	require.NoError(t, node.Initialize())

	r1, err := node.Run(plugin.RunContext{})
	require.NoError(t, err)
	r2, err := node.Run(plugin.RunContext{})
	require.NoError(t, err)

	assert.Equal(t, 0.0, r1.Outputs["out"])
	assert.Equal(t, 2.0, r2.Outputs["out"])
}

func TestPassthroughForwardsInput(t *testing.T) {
	t.Parallel()

	node, err := NewPassthrough("p1", nil)
	require.NoError(t, err)
	require.NoError(t, node.Initialize())

	result, err := node.Run(plugin.RunContext{Inputs: map[string]any{"in": 42.0}})
	require.NoError(t, err)
	assert.Equal(t, 42.0, result.Outputs["out"])
}

func TestCountingSinkCounts(t *testing.T) {
	t.Parallel()

	node, err := NewCountingSink("s1", nil)
	require.NoError(t, err)
	require.NoError(t, node.Initialize())

	sink := node.(*CountingSink)
	for i := 0; i < 5; i++ {
		_, err := node.Run(plugin.RunContext{})
		require.NoError(t, err)
	}
	assert.Equal(t, int64(5), sink.Count())
}
