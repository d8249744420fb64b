package services

import (
	"strings"

	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
)

// DefaultCommodityWeight applies to commodities whose tier has no weight
const DefaultCommodityWeight = 1.0

// DefaultInefficiencyMultiplier is the cost/yield ratio above which a chain is dropped
const DefaultInefficiencyMultiplier = 2.0

// WeightTable resolves a per-commodity value from per-tier weights
type WeightTable struct {
	weights []float64
}

// NewWeightTable builds dense weights for every commodity of index. Tier
// names match case-insensitively.
func NewWeightTable(index *crafting.CommodityIndex, tierWeights map[string]float64) *WeightTable {
	byTier := make(map[string]float64, len(tierWeights))
	for tier, w := range tierWeights {
		byTier[strings.ToLower(tier)] = w
	}

	weights := make([]float64, index.Len())
	for i := range weights {
		w, ok := byTier[strings.ToLower(index.Tier(crafting.Commodity(i)))]
		if !ok || w <= 0 {
			w = DefaultCommodityWeight
		}
		weights[i] = w
	}
	return &WeightTable{weights: weights}
}

// Weight returns the value of one unit of c
func (t *WeightTable) Weight(c crafting.Commodity) float64 {
	if t == nil || c < 0 || int(c) >= len(t.weights) {
		return DefaultCommodityWeight
	}
	return t.weights[c]
}

// PruningPolicy holds the inefficiency and dominance checks
type PruningPolicy struct {
	weights    *WeightTable
	multiplier float64
}

// NewPruningPolicy creates a policy; a multiplier <= 0 disables the
// inefficiency check.
func NewPruningPolicy(weights *WeightTable, multiplier float64) *PruningPolicy {
	return &PruningPolicy{weights: weights, multiplier: multiplier}
}

// WeightedCost sums physical, convertible and trade costs by weight
func (p *PruningPolicy) WeightedCost(chain *crafting.Chain) float64 {
	costs := chain.Costs()
	total := 0.0
	for _, c := range costs.Physical {
		total += float64(c.Count) * p.weights.Weight(c.Commodity)
	}
	for _, c := range costs.Convertible {
		total += float64(c.Count) * p.weights.Weight(c.Commodity)
	}
	for _, c := range costs.Trade {
		total += float64(c.Count) * p.weights.Weight(c.Commodity)
	}
	return total
}

// WeightedYield is the value of the chain's net surplus of its result
func (p *PruningPolicy) WeightedYield(chain *crafting.Chain) float64 {
	surplus := chain.Surplus(chain.Result())
	if surplus <= 0 {
		return 0
	}
	return float64(surplus) * p.weights.Weight(chain.Result())
}

// IsInefficient reports a multi-step chain whose input value exceeds
// multiplier times its yield. Single recipe applications are never
// inefficient: the catalog itself vouches for them.
func (p *PruningPolicy) IsInefficient(chain *crafting.Chain) bool {
	if p.multiplier <= 0 || chain.Depth() <= 1 {
		return false
	}
	return p.WeightedCost(chain) > p.multiplier*p.WeightedYield(chain)
}

// IsDominated reports whether any existing chain for the same result is no
// deeper, no costlier, and holds at least the candidate's surplus of every
// commodity the candidate's steps produce.
func (p *PruningPolicy) IsDominated(candidate *crafting.Chain, existing []*crafting.Chain) bool {
	if len(existing) == 0 {
		return false
	}

	cost := p.WeightedCost(candidate)
	produced := candidate.Produces()

	for _, other := range existing {
		if other.Result() != candidate.Result() {
			continue
		}
		if other.Depth() > candidate.Depth() {
			continue
		}
		if p.WeightedCost(other) > cost {
			continue
		}
		superior := true
		for _, c := range produced {
			if other.Surplus(c) < candidate.Surplus(c) {
				superior = false
				break
			}
		}
		if superior {
			return true
		}
	}
	return false
}

// Evict drops the chains in bucket that winner dominates and returns the
// survivors with the number removed. bucket's backing array is reused.
func (p *PruningPolicy) Evict(bucket []*crafting.Chain, winner *crafting.Chain) ([]*crafting.Chain, int) {
	challenger := []*crafting.Chain{winner}
	kept := bucket[:0]
	for _, ch := range bucket {
		if p.IsDominated(ch, challenger) {
			continue
		}
		kept = append(kept, ch)
	}
	return kept, len(bucket) - len(kept)
}
