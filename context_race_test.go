//go:build race

package fiber

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRaceBuildUsesChanContext(t *testing.T) {
	x, err := defaultContextFactory(nil, true)
	require.NoError(t, err)
	require.IsType(t, &chanContext{}, x)
}
