package snowflake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextID(t *testing.T) {
	require.NoError(t, Init(1, 1))

	seen := make(map[int64]struct{}, 100)
	for i := 0; i < 100; i++ {
		id, err := NextID()
		require.NoError(t, err)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 100)

	msgID, err := NextMessageID()
	require.NoError(t, err)
	assert.NotEmpty(t, msgID)
}
