package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsolidateRefreshTaskIDIsDeterministic(t *testing.T) {
	a, err := NewConsolidateRefreshTask("1", "2024-12", false)
	require.NoError(t, err)
	b, err := NewConsolidateRefreshTask("1", "2024-12", false)
	require.NoError(t, err)
	c, err := NewConsolidateRefreshTask("1", "2024-12", true)
	require.NoError(t, err)

	assert.Equal(t, a.Payload(), b.Payload())
	assert.NotEqual(t, a.Payload(), c.Payload())
	assert.Equal(t, taskID("1", "2024-12", false), taskID("1", "2024-12", false))
	assert.NotEqual(t, taskID("1", "2024-12", false), taskID("2", "2024-12", false))
}
