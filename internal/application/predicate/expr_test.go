package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile0_EvaluatesAgainstEnv(t *testing.T) {
	fn, err := Compile0("count >= limit", map[string]any{"count": 5, "limit": 5})
	require.NoError(t, err)
	assert.True(t, fn())
}

func TestCompile0_InvalidExpressionErrors(t *testing.T) {
	_, err := Compile0("count >>> limit", map[string]any{"count": 1, "limit": 1})
	assert.Error(t, err)
}

func TestCompile1_DerivesEnvFromIndex(t *testing.T) {
	fn, err := Compile1("index % 2 == 0", func(i int) map[string]any {
		return map[string]any{"index": i}
	})
	require.NoError(t, err)

	assert.True(t, fn(4))
	assert.False(t, fn(5))
}
