package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/innouni-api/pkg/config"
)

func TestOptions(t *testing.T) {
	opts := Options(config.RedisConfig{Host: "cache.internal", Port: 6380, Password: "pw", DB: 2})
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 10, opts.PoolSize)
	assert.Equal(t, ioTimeout, opts.ReadTimeout)

	opts = Options(config.RedisConfig{Host: "::1", Port: 6379, PoolSize: 4})
	assert.Equal(t, "[::1]:6379", opts.Addr)
	assert.Equal(t, 4, opts.PoolSize)
}
