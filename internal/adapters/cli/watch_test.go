package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/cookbook-go/internal/application/crafting/services"
	"github.com/andrescamacho/cookbook-go/internal/infrastructure/logging"
	"github.com/andrescamacho/cookbook-go/test/helpers"
)

func TestDefaultPIDPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", ".inventory.yaml.watch.pid"), defaultPIDPath(filepath.Join("data", "inventory.yaml")))
	assert.Equal(t, ".inventory.yaml.watch.pid", defaultPIDPath("inventory.yaml"))
}

func TestSnapshotWatcher_WaitsForRunningPassWhenEventsClose(t *testing.T) {
	cat := helpers.NewCatalog(t, []string{"Foo", "Bar"}, "Bar <- Foo")
	path := filepath.Join(t.TempDir(), "inventory.yaml")
	require.NoError(t, os.WriteFile(path, []byte("physical:\n  Foo: 1\n"), 0o644))

	w := &snapshotWatcher{
		path:     path,
		index:    cat.Index(),
		throttle: services.NewRecomputeThrottle(0),
		logger:   logging.NewStdLogger(io.Discard, "error", false),
	}

	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	compute := func(context.Context, services.ComputeRequest) error {
		close(started)
		<-release
		finished.Store(true)
		return nil
	}

	events := make(chan fsnotify.Event)
	errs := make(chan error)
	done := make(chan error, 1)
	go func() { done <- w.loop(context.Background(), events, errs, compute) }()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("initial pass did not start")
	}

	close(events)
	select {
	case <-done:
		t.Fatal("loop returned while a pass was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-done:
		require.NoError(t, err)
		assert.True(t, finished.Load())
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not return after the pass finished")
	}
}
