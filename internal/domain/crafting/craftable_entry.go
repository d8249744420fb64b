package crafting

// CraftableEntry groups the representative chains of one result commodity
type CraftableEntry struct {
	Result      Commodity
	ResultCount int
	MinDepth    int
	Chains      []*Chain
}

// Dependencies lists every commodity any representative chain touches
func (e *CraftableEntry) Dependencies() []Commodity {
	set := make(map[Commodity]struct{})
	set[e.Result] = struct{}{}
	for _, ch := range e.Chains {
		for _, c := range ch.Dependencies() {
			set[c] = struct{}{}
		}
	}
	return sortedCommodities(set)
}

// EntryComparator is an externally supplied total order over entries.
// It returns a negative number when a sorts before b.
type EntryComparator func(a, b *CraftableEntry) int
