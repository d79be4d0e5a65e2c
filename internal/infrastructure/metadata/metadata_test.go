package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRead_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	original := Metadata{
		Name:     "240131_120000",
		Datetime: 1706702400,
		Args:     []string{"--backend", "cluster"},
		Pipeline: "pi",
		Version:  "1.0.0",
	}

	require.NoError(t, Write(dir, original))

	read, err := Read(dir)
	require.NoError(t, err)
	assert.Equal(t, original, read)
}
