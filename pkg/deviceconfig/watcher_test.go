package deviceconfig

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherDebouncesBurstIntoSingleReload(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "driverProperties", `driverSku: "before"`)

	reloads := make(chan *Config, 8)
	w := NewWatcher(dir, 250*time.Millisecond, func(cfg *Config) {
		reloads <- cfg
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	// Two writes in quick succession, as a ConfigMap remount produces.
	writeConfigFile(t, dir, "driverProperties", `driverSku: "intermediate"`)
	writeConfigFile(t, dir, "driverProperties", `driverSku: "after"`)

	select {
	case cfg := <-reloads:
		assert.Equal(t, "after", cfg.DriverProperties["driverSku"])
	case <-time.After(3 * time.Second):
		t.Fatal("expected a reload after the config change settled")
	}

	// The burst must collapse into one reload, not one per write.
	select {
	case <-reloads:
		t.Fatal("expected a single debounced reload for the burst")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcherStopSuppressesReloads(t *testing.T) {
	dir := t.TempDir()

	reloads := make(chan *Config, 8)
	w := NewWatcher(dir, 20*time.Millisecond, func(cfg *Config) {
		reloads <- cfg
	})

	require.NoError(t, w.Start(context.Background()))
	w.Stop()

	// Shutdown of the processing goroutine is asynchronous.
	time.Sleep(100 * time.Millisecond)
	writeConfigFile(t, dir, "driverProperties", `driverSku: "late"`)

	select {
	case <-reloads:
		t.Fatal("received a reload after Stop")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherStartTwice(t *testing.T) {
	w := NewWatcher(t.TempDir(), 20*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	// A second Start on a running watcher is a no-op.
	assert.NoError(t, w.Start(ctx))
}
