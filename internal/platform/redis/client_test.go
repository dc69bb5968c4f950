package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"recordsync/internal/platform/config"
)

func TestNewRejectsBadConfig(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, config.RedisConfig{})
	assert.ErrorContains(t, err, "REDIS_URL")

	_, err = New(ctx, config.RedisConfig{URL: "http://not-redis"})
	assert.ErrorContains(t, err, "parse redis URL")
}

func TestNewFailsWhenUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := New(ctx, config.RedisConfig{URL: "redis://127.0.0.1:1/0", DialTimeout: 200 * time.Millisecond})
	assert.ErrorContains(t, err, "redis ping failed")
}
