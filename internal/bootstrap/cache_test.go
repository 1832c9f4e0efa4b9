package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contoso-university-api/pkg/config"
)

func TestOpenCacheDisabled(t *testing.T) {
	c, err := OpenCache(context.Background(), config.CacheConfig{Enabled: false}, config.RedisConfig{}, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Nil(t, c.Service())
	assert.NotPanics(t, func() { c.InvalidateStudents(context.Background()) })
}
