package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/notes-api/internal/config"
	"example.com/notes-api/internal/events"
	"example.com/notes-api/internal/metrics"
)

func TestOpenBackend_Memory(t *testing.T) {
	be, err := openBackend(context.Background(), config.Config{Store: config.StoreMemory}, slog.Default())
	require.NoError(t, err)
	defer be.close()
	require.NotNil(t, be.notes)
	require.NotNil(t, be.sessions)
}

func TestNewPublisher_DiscardWithoutBrokers(t *testing.T) {
	pub := newPublisher(config.Config{}, metrics.New(), slog.Default())
	require.Equal(t, events.Discard, pub)
}

func TestNewLogger_Level(t *testing.T) {
	log := newLogger("warn")
	require.False(t, log.Enabled(context.Background(), slog.LevelInfo))
	require.True(t, log.Enabled(context.Background(), slog.LevelWarn))

	log = newLogger("nonsense")
	require.True(t, log.Enabled(context.Background(), slog.LevelInfo))
}
