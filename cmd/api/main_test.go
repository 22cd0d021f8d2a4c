package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/email-otp-api/internal/config"
	"github.com/email-otp-api/internal/domain"
	"github.com/email-otp-api/internal/infrastructure/memory"
	"github.com/email-otp-api/internal/pkg/clock"
)

func TestNewStore_RedisClosedOnRelease(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{OTPStore: config.StoreRedis, RedisURL: "redis://" + mr.Addr()}

	store, closeStore, err := newStore(context.Background(), cfg, clock.New())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "a@b.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, closeStore())
	_, err = store.Get(context.Background(), "a@b.com")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound, "closed client can no longer reach redis")
}

func TestNewStore_MemoryDefault(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := &config.Config{OTPStore: config.StoreMemory}

	store, closeStore, err := newStore(ctx, cfg, clock.New())
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, store)
	assert.NoError(t, closeStore())
}

func TestNewStore_RedisBadURL(t *testing.T) {
	cfg := &config.Config{OTPStore: config.StoreRedis, RedisURL: "not a url"}
	_, _, err := newStore(context.Background(), cfg, clock.New())
	assert.ErrorContains(t, err, "parse redis url")
}
