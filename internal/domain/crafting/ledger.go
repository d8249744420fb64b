package crafting

import "sort"

// Ledger is the surplus profile of a chain: net produced minus consumed per
// commodity across the steps applied so far. A Ledger is a value; Apply
// returns a new ledger and never mutates the receiver, so ledgers of sibling
// chains in a breadth-first frontier never observe each other's steps.
type Ledger struct {
	surplus map[Commodity]int
}

// NewLedger returns the empty surplus profile
func NewLedger() Ledger {
	return Ledger{}
}

// Apply returns the profile after one more application of step
func (l Ledger) Apply(step Step) Ledger {
	next := make(map[Commodity]int, len(l.surplus)+len(step.Ingredients())+1)
	for c, n := range l.surplus {
		next[c] = n
	}

	next[step.Result()] += step.ResultCount()
	for _, ing := range step.Ingredients() {
		next[ing.Commodity] -= ing.Count
	}

	for c, n := range next {
		if n == 0 {
			delete(next, c)
		}
	}
	return Ledger{surplus: next}
}

// Surplus returns the net balance of c (negative means the chain needs c)
func (l Ledger) Surplus(c Commodity) int {
	return l.surplus[c]
}

// Deficits lists every commodity with a negative balance as a positive need,
// sorted by commodity.
func (l Ledger) Deficits() []Ingredient {
	var out []Ingredient
	for c, n := range l.surplus {
		if n < 0 {
			out = append(out, Ingredient{Commodity: c, Count: -n})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Commodity < out[j].Commodity })
	return out
}

// Profile returns a copy of the non-zero balances
func (l Ledger) Profile() map[Commodity]int {
	out := make(map[Commodity]int, len(l.surplus))
	for c, n := range l.surplus {
		out[c] = n
	}
	return out
}

// Len is the number of commodities with a non-zero balance
func (l Ledger) Len() int {
	return len(l.surplus)
}
