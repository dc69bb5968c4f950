package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recordsync/internal/platform/config"
	"recordsync/internal/platform/logger"
	"recordsync/internal/recordstore/store"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	log := logger.Discard()

	t.Run("memory", func(t *testing.T) {
		b, err := openStore(ctx, config.Store{Backend: config.BackendMemory}, log)
		require.NoError(t, err)
		defer b.close()
		assert.IsType(t, &store.InMemory{}, b.store)
		assert.NoError(t, b.health(ctx))
	})

	t.Run("redis without url", func(t *testing.T) {
		_, err := openStore(ctx, config.Store{Backend: config.BackendRedis}, log)
		assert.ErrorContains(t, err, "REDIS_URL")
	})

	t.Run("postgres without url", func(t *testing.T) {
		_, err := openStore(ctx, config.Store{Backend: config.BackendPostgres}, log)
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := openStore(ctx, config.Store{Backend: "sqlite"}, log)
		assert.Error(t, err)
	})
}
