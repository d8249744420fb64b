package crafting

import "sort"

// ConvertibleSource is one underlying holding that can be converted into a
// commodity at a cost (for instance a scrappable unit).
type ConvertibleSource struct {
	ID        string
	Potential int
}

// PeerHoldings is one peer's tradeable stock and remaining trade allowance
type PeerHoldings struct {
	Peer            PeerID
	Stock           map[Commodity]int
	RemainingTrades int
}

// Snapshot is the resource state handed to one recomputation pass. It must not
// be mutated while a pass runs.
type Snapshot struct {
	// Physical is dense, indexed by Commodity
	Physical []int

	// Convertible lists sources per commodity in catalog order
	Convertible map[Commodity][]ConvertibleSource

	// Peers in a stable order
	Peers []PeerHoldings
}

// PhysicalCount returns owned stock of c, zero when out of range
func (s *Snapshot) PhysicalCount(c Commodity) int {
	if c < 0 || int(c) >= len(s.Physical) {
		return 0
	}
	return s.Physical[c]
}

// ConvertiblePotential sums all source potentials for c
func (s *Snapshot) ConvertiblePotential(c Commodity) int {
	total := 0
	for _, src := range s.Convertible[c] {
		total += src.Potential
	}
	return total
}

// Peer finds a peer's holdings
func (s *Snapshot) Peer(id PeerID) (*PeerHoldings, bool) {
	for i := range s.Peers {
		if s.Peers[i].Peer == id {
			return &s.Peers[i], true
		}
	}
	return nil, false
}

// Validate checks every index is within [0, size) and counts are non-negative.
func (s *Snapshot) Validate(size int) error {
	if len(s.Physical) != size {
		return &ErrSnapshotShape{Expected: size, Actual: len(s.Physical)}
	}
	for i, n := range s.Physical {
		if n < 0 {
			return &ErrCommodityOutOfRange{Commodity: Commodity(i), Size: size, Context: "negative physical stock"}
		}
	}
	for c, sources := range s.Convertible {
		if c < 0 || int(c) >= size {
			return &ErrCommodityOutOfRange{Commodity: c, Size: size, Context: "convertible potential"}
		}
		for _, src := range sources {
			if src.Potential < 0 {
				return &ErrCommodityOutOfRange{Commodity: c, Size: size, Context: "negative convertible potential of " + src.ID}
			}
		}
	}
	for _, peer := range s.Peers {
		for c := range peer.Stock {
			if c < 0 || int(c) >= size {
				return &ErrCommodityOutOfRange{Commodity: c, Size: size, Context: "stock of peer " + string(peer.Peer)}
			}
		}
	}
	return nil
}

// ChangedCommodities lists commodities whose physical, convertible or peer
// counts differ between prev and next. A nil prev yields every commodity.
func ChangedCommodities(prev, next *Snapshot) []Commodity {
	changed := make(map[Commodity]struct{})
	if prev == nil {
		for i := range next.Physical {
			changed[Commodity(i)] = struct{}{}
		}
		return sortedCommodities(changed)
	}

	n := len(next.Physical)
	if len(prev.Physical) > n {
		n = len(prev.Physical)
	}
	for i := 0; i < n; i++ {
		if prev.PhysicalCount(Commodity(i)) != next.PhysicalCount(Commodity(i)) {
			changed[Commodity(i)] = struct{}{}
		}
	}

	for c := range prev.Convertible {
		if prev.ConvertiblePotential(c) != next.ConvertiblePotential(c) {
			changed[c] = struct{}{}
		}
	}
	for c := range next.Convertible {
		if prev.ConvertiblePotential(c) != next.ConvertiblePotential(c) {
			changed[c] = struct{}{}
		}
	}

	diffPeer := func(a, b *Snapshot) {
		for _, pa := range a.Peers {
			pb, ok := b.Peer(pa.Peer)
			for c, n := range pa.Stock {
				if !ok || pb.Stock[c] != n || pb.RemainingTrades != pa.RemainingTrades {
					changed[c] = struct{}{}
				}
			}
		}
	}
	diffPeer(prev, next)
	diffPeer(next, prev)

	return sortedCommodities(changed)
}

func sortedCommodities(set map[Commodity]struct{}) []Commodity {
	out := make([]Commodity, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
