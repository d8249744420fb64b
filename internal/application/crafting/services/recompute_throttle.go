package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/cookbook-go/internal/application/common"
	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
)

// RecomputeThrottle coalesces snapshot notifications so that at most one pass
// starts per interval. Notifications arriving while a pass is pending are
// merged: the latest snapshot wins, changed sets are unioned and Force is
// sticky.
type RecomputeThrottle struct {
	limiter *rate.Limiter
	signal  chan struct{}

	mu      sync.Mutex
	pending *ComputeRequest
	changed map[crafting.Commodity]struct{}
	unknown bool
}

// NewRecomputeThrottle creates a throttle. A non-positive interval disables throttling.
func NewRecomputeThrottle(interval time.Duration) *RecomputeThrottle {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &RecomputeThrottle{
		limiter: rate.NewLimiter(limit, 1),
		signal:  make(chan struct{}, 1),
		changed: make(map[crafting.Commodity]struct{}),
	}
}

// Notify queues a request. It never blocks.
func (t *RecomputeThrottle) Notify(req ComputeRequest) {
	t.mu.Lock()
	if t.pending == nil {
		t.pending = &ComputeRequest{}
	}
	t.pending.Snapshot = req.Snapshot
	t.pending.Force = t.pending.Force || req.Force
	if len(req.Changed) == 0 {
		t.unknown = true
	}
	for _, c := range req.Changed {
		t.changed[c] = struct{}{}
	}
	t.mu.Unlock()

	select {
	case t.signal <- struct{}{}:
	default:
	}
}

func (t *RecomputeThrottle) take() (ComputeRequest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending == nil {
		return ComputeRequest{}, false
	}
	req := *t.pending
	req.Changed = nil
	if !t.unknown {
		req.Changed = sortedCommoditySet(t.changed)
	}
	t.pending = nil
	t.unknown = false
	t.changed = make(map[crafting.Commodity]struct{})
	return req, true
}

// Run drains notifications until ctx is cancelled, calling compute for each
// merged request. Errors from compute are logged and do not stop the loop.
func (t *RecomputeThrottle) Run(ctx context.Context, compute func(context.Context, ComputeRequest) error) error {
	logger := common.LoggerFromContext(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.signal:
		}

		if err := t.limiter.Wait(ctx); err != nil {
			return ctx.Err()
		}

		req, ok := t.take()
		if !ok {
			continue
		}
		if err := compute(ctx, req); err != nil {
			logger.Log(common.LevelError, "Recompute failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

func sortedCommoditySet(set map[crafting.Commodity]struct{}) []crafting.Commodity {
	out := make([]crafting.Commodity, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
