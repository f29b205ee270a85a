package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/aurora-bot/internal/config"
	"github.com/i474232898/aurora-bot/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewSubscriberStore_Backends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_ids.json")

	s, closeStore, err := newSubscriberStore(&config.AppConfig{SubscriberBackend: config.BackendFile, SubscribersFile: path}, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &store.FileStore{}, s)
	closeStore()

	s, closeStore, err = newSubscriberStore(&config.AppConfig{SubscriberBackend: config.BackendMemory}, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryStore{}, s)
	closeStore()
}

func TestNewSubscriberStore_RedisCloserReleasesClient(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.AppConfig{
		SubscriberBackend: config.BackendRedis,
		RedisURL:          "redis://" + mr.Addr(),
		RedisKey:          "aurora:subscribers",
	}

	s, closeStore, err := newSubscriberStore(cfg, discardLogger())
	require.NoError(t, err)
	rs, ok := s.(*store.RedisStore)
	require.True(t, ok)
	require.NoError(t, rs.Ping(context.Background()))

	closeStore()

	assert.Error(t, rs.Ping(context.Background()))
}

func TestNewSubscriberStore_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, closeStore, err := newSubscriberStore(&config.AppConfig{
		SubscriberBackend: config.BackendRedis,
		RedisURL:          "redis://" + addr,
	}, discardLogger())

	assert.Error(t, err)
	assert.Nil(t, closeStore)
}

func TestNewSubscriberStore_BadRedisURL(t *testing.T) {
	_, _, err := newSubscriberStore(&config.AppConfig{
		SubscriberBackend: config.BackendRedis,
		RedisURL:          "not a url",
	}, discardLogger())

	assert.Error(t, err)
}
