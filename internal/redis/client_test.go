package redis

import (
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	c, err := NewClient("redis://:pw@localhost:6380/2")
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "localhost:6380", c.Options().Addr)
	assert.Equal(t, 2, c.Options().DB)
	assert.Equal(t, "pw", c.Options().Password)
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient("http://localhost")
	assert.Error(t, err)
}

func TestClient_IsCmdable(t *testing.T) {
	c, err := NewClient("redis://localhost:6379")
	require.NoError(t, err)
	defer c.Close()

	var cmd goredis.Cmdable = c
	assert.NotNil(t, cmd)
}
