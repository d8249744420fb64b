package crafting

import (
	"sort"
	"strconv"
	"strings"
)

// ConvertibleCost is the part of a deficit paid by converting a source
type ConvertibleCost struct {
	Source    string
	Commodity Commodity
	Count     int
}

// TradeCost is the number of units of a commodity taken from a peer
type TradeCost struct {
	Peer      PeerID
	Commodity Commodity
	Count     int
}

// Costs is the realized external cost of a chain split by channel. Every
// vector is kept in canonical order so that equal costs compare equal.
type Costs struct {
	Physical    []Ingredient
	Convertible []ConvertibleCost
	Trade       []TradeCost
}

// Canonicalize sorts every vector in place and returns c
func (c Costs) Canonicalize() Costs {
	sortIngredients(c.Physical)
	sort.Slice(c.Convertible, func(i, j int) bool {
		a, b := c.Convertible[i], c.Convertible[j]
		if a.Commodity != b.Commodity {
			return a.Commodity < b.Commodity
		}
		return a.Source < b.Source
	})
	sort.Slice(c.Trade, func(i, j int) bool {
		a, b := c.Trade[i], c.Trade[j]
		if a.Peer != b.Peer {
			return a.Peer < b.Peer
		}
		return a.Commodity < b.Commodity
	})
	return c
}

// TradedFrom returns the units already taken from peer across all commodities
func (c Costs) TradedFrom(peer PeerID) int {
	total := 0
	for _, t := range c.Trade {
		if t.Peer == peer {
			total += t.Count
		}
	}
	return total
}

// TradedUnits returns the units of commodity already taken from peer
func (c Costs) TradedUnits(peer PeerID, commodity Commodity) int {
	for _, t := range c.Trade {
		if t.Peer == peer && t.Commodity == commodity {
			return t.Count
		}
	}
	return 0
}

func (c Costs) key() string {
	var b strings.Builder
	for _, p := range c.Physical {
		b.WriteString("p")
		b.WriteString(strconv.Itoa(int(p.Commodity)))
		b.WriteString("x")
		b.WriteString(strconv.Itoa(p.Count))
	}
	for _, v := range c.Convertible {
		b.WriteString("c")
		b.WriteString(v.Source)
		b.WriteString(":")
		b.WriteString(strconv.Itoa(int(v.Commodity)))
		b.WriteString("x")
		b.WriteString(strconv.Itoa(v.Count))
	}
	for _, t := range c.Trade {
		b.WriteString("t")
		b.WriteString(string(t.Peer))
		b.WriteString(":")
		b.WriteString(strconv.Itoa(int(t.Commodity)))
		b.WriteString("x")
		b.WriteString(strconv.Itoa(t.Count))
	}
	return b.String()
}

// Chain is an ordered sequence of step applications with its derived surplus
// profile and realized costs. Chains are immutable.
type Chain struct {
	steps     []Step
	ledger    Ledger
	costs     Costs
	baseHash  int64
	signature int64
	stepsKey  string
	key       string
}

// NewChain builds a chain from its steps, the ledger after the last step and
// the realized costs.
func NewChain(steps []Step, ledger Ledger, costs Costs) *Chain {
	var base int64
	for _, s := range steps {
		base = PredictBaseHash(base, s)
	}
	return newChain(steps, ledger, costs.Canonicalize(), base)
}

// Extend returns a new chain with next appended. The parent is untouched.
func (ch *Chain) Extend(next Step, ledger Ledger, costs Costs) *Chain {
	steps := make([]Step, len(ch.steps)+1)
	copy(steps, ch.steps)
	steps[len(ch.steps)] = next
	return newChain(steps, ledger, costs.Canonicalize(), PredictBaseHash(ch.baseHash, next))
}

func newChain(steps []Step, ledger Ledger, costs Costs, base int64) *Chain {
	ch := &Chain{
		steps:    steps,
		ledger:   ledger,
		costs:    costs,
		baseHash: base,
	}
	ch.stepsKey = StepMultisetKey(steps)
	ch.key = ch.stepsKey + "#" + costs.key()
	ch.signature = signature(base, costs)
	return ch
}

// PredictBaseHash combines a parent's step hash with the next step. Addition
// keeps it independent of step order.
func PredictBaseHash(parentBase int64, next Step) int64 {
	return parentBase + next.Hash()
}

// StepMultisetKey is the exact, order independent identity of a step multiset
func StepMultisetKey(steps []Step) string {
	keys := make([]string, len(steps))
	for i, s := range steps {
		keys[i] = s.Key()
	}
	sort.Strings(keys)
	return strings.Join(keys, "|")
}

func signature(base int64, costs Costs) int64 {
	sig := uint64(base)
	for _, p := range costs.Physical {
		sig = sig*31 + uint64(p.Commodity)
		sig = sig*31 + uint64(p.Count)
	}
	for _, v := range costs.Convertible {
		sig = sig*31 + uint64(peerHash(PeerID(v.Source)))
		sig = sig*31 + uint64(v.Commodity)
		sig = sig*31 + uint64(v.Count)
	}
	for _, t := range costs.Trade {
		sig = sig*31 + uint64(peerHash(t.Peer))
		sig = sig*31 + uint64(t.Commodity)
		sig = sig*31 + uint64(t.Count)
	}
	return int64(sig)
}

func (ch *Chain) Steps() []Step   { return ch.steps }
func (ch *Chain) Depth() int      { return len(ch.steps) }
func (ch *Chain) Ledger() Ledger  { return ch.ledger }
func (ch *Chain) Costs() Costs    { return ch.costs }
func (ch *Chain) BaseHash() int64 { return ch.baseHash }

// Signature is the canonical dedup hash over steps and realized costs
func (ch *Chain) Signature() int64 { return ch.signature }

// StepsKey is the exact step multiset identity
func (ch *Chain) StepsKey() string { return ch.stepsKey }

// IdentityKey is the exact identity behind Signature
func (ch *Chain) IdentityKey() string { return ch.key }

// Result is the last step's result commodity
func (ch *Chain) Result() Commodity {
	if len(ch.steps) == 0 {
		return NoCommodity
	}
	return ch.steps[len(ch.steps)-1].Result()
}

// ResultCount is the last step's result count
func (ch *Chain) ResultCount() int {
	if len(ch.steps) == 0 {
		return 0
	}
	return ch.steps[len(ch.steps)-1].ResultCount()
}

// Surplus is the chain's net balance of c
func (ch *Chain) Surplus(c Commodity) int {
	return ch.ledger.Surplus(c)
}

// IsTradeOnly reports a chain made of trade steps alone, which is not a craft
func (ch *Chain) IsTradeOnly() bool {
	if len(ch.steps) == 0 {
		return false
	}
	for _, s := range ch.steps {
		if !IsTrade(s) {
			return false
		}
	}
	return true
}

// NonPhysicalCostEntries counts convertible and trade cost entries
func (ch *Chain) NonPhysicalCostEntries() int {
	return len(ch.costs.Convertible) + len(ch.costs.Trade)
}

// Produces lists the distinct result commodities of all steps
func (ch *Chain) Produces() []Commodity {
	seen := make(map[Commodity]struct{}, len(ch.steps))
	out := make([]Commodity, 0, len(ch.steps))
	for _, s := range ch.steps {
		if _, ok := seen[s.Result()]; ok {
			continue
		}
		seen[s.Result()] = struct{}{}
		out = append(out, s.Result())
	}
	return out
}

// Dependencies lists every commodity the chain produces or consumes
func (ch *Chain) Dependencies() []Commodity {
	set := make(map[Commodity]struct{})
	for _, s := range ch.steps {
		set[s.Result()] = struct{}{}
		for _, ing := range s.Ingredients() {
			set[ing.Commodity] = struct{}{}
		}
	}
	return sortedCommodities(set)
}

// HasDanglingIntermediate reports whether a non-final step's output is never
// consumed by any later step.
func (ch *Chain) HasDanglingIntermediate() bool {
	for i := 0; i < len(ch.steps)-1; i++ {
		produced := ch.steps[i].Result()
		consumed := false
		for j := i + 1; j < len(ch.steps) && !consumed; j++ {
			for _, ing := range ch.steps[j].Ingredients() {
				if ing.Commodity == produced {
					consumed = true
					break
				}
			}
		}
		if !consumed {
			return true
		}
	}
	return false
}
