package services

import (
	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
)

// CostResolver allocates a chain's net deficits across payment channels in
// order: owned physical stock, then convertible potential, then peer trades.
// It has no side effects; the same inputs always give the same split.
type CostResolver struct {
	convertibleEnabled bool
}

// NewCostResolver creates a resolver; convertible potential is only drawn on
// when convertibleEnabled is set.
func NewCostResolver(convertibleEnabled bool) *CostResolver {
	return &CostResolver{convertibleEnabled: convertibleEnabled}
}

// Resolve prices a chain whose surplus profile after the candidate step is
// ledger. parent carries the trade costs accumulated so far. It returns false
// when any deficit cannot be covered; no partial chains are produced.
func (r *CostResolver) Resolve(
	ledger crafting.Ledger,
	parent crafting.Costs,
	next crafting.Step,
	snapshot *crafting.Snapshot,
) (crafting.Costs, bool) {
	trades, ok := r.resolveTrade(parent.Trade, next, snapshot)
	if !ok {
		return crafting.Costs{}, false
	}

	var physical []crafting.Ingredient
	var convertible []crafting.ConvertibleCost

	for _, deficit := range ledger.Deficits() {
		owned := snapshot.PhysicalCount(deficit.Commodity)
		pay := min(owned, deficit.Count)
		if pay > 0 {
			physical = append(physical, crafting.Ingredient{Commodity: deficit.Commodity, Count: pay})
		}

		remaining := deficit.Count - pay
		if remaining == 0 {
			continue
		}
		if !r.convertibleEnabled {
			return crafting.Costs{}, false
		}
		if snapshot.ConvertiblePotential(deficit.Commodity) < remaining {
			return crafting.Costs{}, false
		}

		for _, src := range snapshot.Convertible[deficit.Commodity] {
			if remaining == 0 {
				break
			}
			take := min(src.Potential, remaining)
			if take == 0 {
				continue
			}
			convertible = append(convertible, crafting.ConvertibleCost{
				Source:    src.ID,
				Commodity: deficit.Commodity,
				Count:     take,
			})
			remaining -= take
		}
	}

	return crafting.Costs{
		Physical:    physical,
		Convertible: convertible,
		Trade:       trades,
	}.Canonicalize(), true
}

// resolveTrade charges one unit against the peer when next is a trade step
func (r *CostResolver) resolveTrade(
	existing []crafting.TradeCost,
	next crafting.Step,
	snapshot *crafting.Snapshot,
) ([]crafting.TradeCost, bool) {
	trade, isTrade := next.(*crafting.TradeStep)

	out := make([]crafting.TradeCost, len(existing), len(existing)+1)
	copy(out, existing)
	if !isTrade {
		return out, true
	}

	peer, ok := snapshot.Peer(trade.Peer)
	if !ok {
		return nil, false
	}

	costs := crafting.Costs{Trade: out}
	if costs.TradedFrom(trade.Peer) >= peer.RemainingTrades {
		return nil, false
	}
	if costs.TradedUnits(trade.Peer, trade.Commodity) >= peer.Stock[trade.Commodity] {
		return nil, false
	}

	for i := range out {
		if out[i].Peer == trade.Peer && out[i].Commodity == trade.Commodity {
			out[i].Count++
			return out, true
		}
	}
	return append(out, crafting.TradeCost{Peer: trade.Peer, Commodity: trade.Commodity, Count: 1}), true
}
