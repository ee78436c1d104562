package service

import (
	"testing"

	"golang-stock-tracker/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentChange(t *testing.T) {
	v := PercentChange(100, 119)
	require.NotNil(t, v)
	assert.Equal(t, 19.0, *v)

	v = PercentChange(3, 2)
	require.NotNil(t, v)
	assert.Equal(t, -33.33, *v)

	assert.Nil(t, PercentChange(0, 10))
}

func TestProgressToTarget(t *testing.T) {
	v := ProgressToTarget(100, 110, utils.ToPointer(120.0))
	require.NotNil(t, v)
	assert.Equal(t, 50.0, *v)

	// downward target
	v = ProgressToTarget(100, 95, utils.ToPointer(80.0))
	require.NotNil(t, v)
	assert.Equal(t, 25.0, *v)

	assert.Nil(t, ProgressToTarget(100, 110, nil))
	assert.Nil(t, ProgressToTarget(100, 110, utils.ToPointer(100.0)))
}
