package services

import (
	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
)

// RejectReason labels why a candidate extension was dropped
type RejectReason string

const (
	RejectSelfCycle          RejectReason = "self_cycle"
	RejectPredictedDuplicate RejectReason = "predicted_duplicate"
	RejectCausalLink         RejectReason = "causal_link"
	RejectUnproductive       RejectReason = "unproductive"
	RejectUnaffordable       RejectReason = "unaffordable"
	RejectDuplicate          RejectReason = "duplicate"
	RejectBucketFull         RejectReason = "bucket_full"
	RejectInefficient        RejectReason = "inefficient"
	RejectDominated          RejectReason = "dominated"
)

// EnumeratorOptions bounds one search
type EnumeratorOptions struct {
	MaxDepth           int
	MaxChainsPerResult int
	PeerTradingEnabled bool
}

// EnumerationStats counts what happened during one search
type EnumerationStats struct {
	Layers     int
	Considered int
	Retained   int
	Rejections map[RejectReason]int
}

// Discovery is the raw output of a search: retained chains grouped by result
type Discovery struct {
	Buckets map[crafting.Commodity][]*crafting.Chain
	Stats   EnumerationStats
}

// ChainEnumerator runs the layered breadth-first chain search
type ChainEnumerator struct {
	catalog  *crafting.Catalog
	demand   *DemandIndex
	resolver *CostResolver
	pruning  *PruningPolicy
	opts     EnumeratorOptions
}

// NewChainEnumerator wires the search over a catalog and its demand index
func NewChainEnumerator(
	catalog *crafting.Catalog,
	demand *DemandIndex,
	resolver *CostResolver,
	pruning *PruningPolicy,
	opts EnumeratorOptions,
) *ChainEnumerator {
	return &ChainEnumerator{
		catalog:  catalog,
		demand:   demand,
		resolver: resolver,
		pruning:  pruning,
		opts:     opts,
	}
}

// search holds the state of one pass. It is never shared between passes.
type search struct {
	e        *ChainEnumerator
	snapshot *crafting.Snapshot
	dedup    *DedupIndex
	buckets  map[crafting.Commodity][]*crafting.Chain
	next     []*crafting.Chain
	stats    EnumerationStats
}

// Enumerate discovers chains layer by layer up to MaxDepth. Layer 1 seeds one
// chain per affordable recipe; each later layer extends the previous layer's
// survivors with causally linked recipes (and trades when enabled). The loop
// stops at MaxDepth or when a layer retains nothing.
func (e *ChainEnumerator) Enumerate(snapshot *crafting.Snapshot) *Discovery {
	s := &search{
		e:        e,
		snapshot: snapshot,
		dedup:    NewDedupIndex(),
		buckets:  make(map[crafting.Commodity][]*crafting.Chain),
		stats:    EnumerationStats{Rejections: make(map[RejectReason]int)},
	}

	if e.opts.MaxDepth < 1 || len(e.catalog.Recipes()) == 0 {
		return &Discovery{Buckets: s.buckets, Stats: s.stats}
	}

	s.stats.Layers = 1
	for _, r := range e.catalog.Recipes() {
		s.try(nil, r)
	}
	if e.opts.PeerTradingEnabled {
		s.injectTrades(nil)
	}

	for depth := 2; depth <= e.opts.MaxDepth; depth++ {
		frontier := s.next
		if len(frontier) == 0 {
			break
		}
		s.next = nil
		s.stats.Layers = depth

		for _, chain := range frontier {
			if e.opts.PeerTradingEnabled {
				s.injectTrades(chain)
			}
			for _, r := range e.catalog.Recipes() {
				s.try(chain, r)
			}
		}
	}

	return &Discovery{Buckets: s.buckets, Stats: s.stats}
}

func (s *search) reject(reason RejectReason) {
	s.stats.Rejections[reason]++
}

// try attempts to extend parent (nil for a seed) with step
func (s *search) try(parent *crafting.Chain, step crafting.Step) {
	s.stats.Considered++

	if r, ok := step.(*crafting.Recipe); ok && r.IsSelfCycle() {
		s.reject(RejectSelfCycle)
		return
	}

	var (
		ledger      = crafting.NewLedger()
		parentCosts crafting.Costs
		base        int64
	)
	if parent != nil {
		ledger = parent.Ledger()
		parentCosts = parent.Costs()
		base = parent.BaseHash()
	}

	predicted := crafting.PredictBaseHash(base, step)
	if s.dedup.SeenSteps(predicted, func() string { return predictedStepsKey(parent, step) }) {
		s.reject(RejectPredictedDuplicate)
		return
	}

	if parent != nil && !s.causallyLinked(parent, step) {
		s.reject(RejectCausalLink)
		return
	}

	ledger = ledger.Apply(step)
	if ledger.Surplus(step.Result()) <= 0 {
		s.reject(RejectUnproductive)
		return
	}

	costs, ok := s.e.resolver.Resolve(ledger, parentCosts, step, s.snapshot)
	if !ok {
		s.reject(RejectUnaffordable)
		return
	}

	var chain *crafting.Chain
	if parent == nil {
		chain = crafting.NewChain([]crafting.Step{step}, ledger, costs)
	} else {
		chain = parent.Extend(step, ledger, costs)
	}

	if !s.dedup.Add(chain) {
		s.reject(RejectDuplicate)
		return
	}

	// Trade-only and dangling chains are never representatives. They stay on
	// the frontier but hold no bucket slot and dominate nothing.
	if chain.IsTradeOnly() || chain.HasDanglingIntermediate() {
		if !chain.IsTradeOnly() && s.e.pruning.IsInefficient(chain) {
			s.reject(RejectInefficient)
			return
		}
	} else {
		bucket := s.buckets[chain.Result()]
		if limit := s.e.opts.MaxChainsPerResult; limit > 0 && len(bucket) >= limit {
			s.reject(RejectBucketFull)
			return
		}
		if s.e.pruning.IsInefficient(chain) {
			s.reject(RejectInefficient)
			return
		}
		if s.e.pruning.IsDominated(chain, bucket) {
			s.reject(RejectDominated)
			return
		}
		bucket, evicted := s.e.pruning.Evict(bucket, chain)
		s.stats.Rejections[RejectDominated] += evicted
		s.buckets[chain.Result()] = append(bucket, chain)
	}

	s.stats.Retained++
	s.next = append(s.next, chain)
}

// causallyLinked is the explosion guard: an extension must consume something
// the chain already has a surplus of, or top up a partial stack of its own
// result toward the largest demand for it.
func (s *search) causallyLinked(parent *crafting.Chain, step crafting.Step) bool {
	if trade, ok := step.(*crafting.TradeStep); ok {
		return s.tradeNeeded(parent, trade.Commodity)
	}

	for _, ing := range step.Ingredients() {
		if parent.Surplus(ing.Commodity) > 0 {
			return true
		}
	}

	maxReq := s.e.demand.MaxDemand(step.Result())
	surplus := parent.Surplus(step.Result())
	return maxReq > 1 && surplus > 0 && surplus < maxReq
}

// tradeNeeded reports whether the chain is still short of the largest single
// demand for c
func (s *search) tradeNeeded(parent *crafting.Chain, c crafting.Commodity) bool {
	surplus := 0
	if parent != nil {
		surplus = parent.Surplus(c)
	}
	return surplus < s.e.demand.MaxDemand(c)
}

// injectTrades offers one trade step per (peer, ingredient) the peer still
// holds and the chain still needs
func (s *search) injectTrades(parent *crafting.Chain) {
	var traded crafting.Costs
	if parent != nil {
		traded = parent.Costs()
	}

	for _, peer := range s.snapshot.Peers {
		if traded.TradedFrom(peer.Peer) >= peer.RemainingTrades {
			continue
		}
		for _, c := range s.e.demand.Ingredients() {
			if peer.Stock[c] <= traded.TradedUnits(peer.Peer, c) {
				continue
			}
			if !s.tradeNeeded(parent, c) {
				continue
			}
			s.try(parent, crafting.NewTradeStep(peer.Peer, c))
		}
	}
}

func predictedStepsKey(parent *crafting.Chain, step crafting.Step) string {
	if parent == nil {
		return crafting.StepMultisetKey([]crafting.Step{step})
	}
	steps := make([]crafting.Step, 0, parent.Depth()+1)
	steps = append(steps, parent.Steps()...)
	steps = append(steps, step)
	return crafting.StepMultisetKey(steps)
}
