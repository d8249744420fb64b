package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
)

func TestRecomputeThrottle_CoalescesPendingRequests(t *testing.T) {
	throttle := NewRecomputeThrottle(time.Hour)
	first := &crafting.Snapshot{Physical: []int{1}}
	latest := &crafting.Snapshot{Physical: []int{2}}

	throttle.Notify(ComputeRequest{Snapshot: first, Changed: []crafting.Commodity{3}, Force: true})
	throttle.Notify(ComputeRequest{Snapshot: latest, Changed: []crafting.Commodity{1, 3}})

	req, ok := throttle.take()
	require.True(t, ok)
	assert.Same(t, latest, req.Snapshot)
	assert.Equal(t, []crafting.Commodity{1, 3}, req.Changed)
	assert.True(t, req.Force)

	_, ok = throttle.take()
	assert.False(t, ok)
}

func TestRecomputeThrottle_UnknownChangeWins(t *testing.T) {
	throttle := NewRecomputeThrottle(0)

	throttle.Notify(ComputeRequest{Changed: []crafting.Commodity{2}})
	throttle.Notify(ComputeRequest{})

	req, ok := throttle.take()
	require.True(t, ok)
	assert.Nil(t, req.Changed)
	assert.False(t, req.Force)
}

func TestRecomputeThrottle_RunDeliversAndSurvivesErrors(t *testing.T) {
	throttle := NewRecomputeThrottle(0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var calls []ComputeRequest
	compute := func(ctx context.Context, req ComputeRequest) error {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, req)
		return errors.New("boom")
	}

	done := make(chan error, 1)
	go func() { done <- throttle.Run(ctx, compute) }()

	throttle.Notify(ComputeRequest{Changed: []crafting.Commodity{1}})
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(calls) == 1
	}, time.Second, 5*time.Millisecond)

	throttle.Notify(ComputeRequest{Changed: []crafting.Commodity{2}})
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(calls) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("throttle did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []crafting.Commodity{1}, calls[0].Changed)
	assert.Equal(t, []crafting.Commodity{2}, calls[1].Changed)
}
