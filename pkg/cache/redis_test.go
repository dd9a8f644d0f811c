package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRedisConfigOptions(t *testing.T) {
	cfg := newRedisConfig(
		WithRedisAddr("cache:6379"),
		WithRedisPool(8, 2, time.Second),
		WithRedisPrefix("gw-test"),
	)
	assert.Equal(t, "cache:6379", cfg.Addr)
	assert.Equal(t, 8, cfg.PoolSize)
	assert.Equal(t, 2, cfg.MinIdleConns)
	assert.Equal(t, time.Second, cfg.PoolTimeout)
	assert.Equal(t, "gw-test", cfg.Prefix)

	assert.Equal(t, "ecogw", newRedisConfig().Prefix)
}

func TestRedisKeyPrefix(t *testing.T) {
	assert.Equal(t, "gw-test:ecowatt", (&RedisCache{prefix: "gw-test"}).wrapKey("ecowatt"))
	assert.Equal(t, "ecowatt", (&RedisCache{}).wrapKey("ecowatt"))
}
