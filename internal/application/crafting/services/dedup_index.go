package services

import (
	"github.com/andrescamacho/cookbook-go/internal/domain/crafting"
)

// DedupIndex remembers the canonical signatures of chains already discovered
// in a pass. Hashes bucket candidates; the exact identity keys settle
// collisions so two different chains are never merged by accident.
type DedupIndex struct {
	bySignature map[int64][]string
	bySteps     map[int64][]string
	collisions  int
}

// NewDedupIndex creates an empty index for one pass
func NewDedupIndex() *DedupIndex {
	return &DedupIndex{
		bySignature: make(map[int64][]string),
		bySteps:     make(map[int64][]string),
	}
}

// SeenSteps is the cheap pre-filter run before cost resolution. stepsKey is
// only evaluated when the predicted hash already has a bucket.
func (d *DedupIndex) SeenSteps(predicted int64, stepsKey func() string) bool {
	bucket, ok := d.bySteps[predicted]
	if !ok {
		return false
	}
	key := stepsKey()
	for _, k := range bucket {
		if k == key {
			return true
		}
	}
	return false
}

// Add registers chain and reports whether it was new
func (d *DedupIndex) Add(chain *crafting.Chain) bool {
	sig := chain.Signature()
	key := chain.IdentityKey()
	for _, k := range d.bySignature[sig] {
		if k == key {
			return false
		}
	}
	if len(d.bySignature[sig]) > 0 {
		d.collisions++
	}
	d.bySignature[sig] = append(d.bySignature[sig], key)

	base := chain.BaseHash()
	stepsKey := chain.StepsKey()
	for _, k := range d.bySteps[base] {
		if k == stepsKey {
			return true
		}
	}
	d.bySteps[base] = append(d.bySteps[base], stepsKey)
	return true
}

// Collisions counts distinct chains that shared a signature
func (d *DedupIndex) Collisions() int {
	return d.collisions
}

// Len is the number of distinct chains registered
func (d *DedupIndex) Len() int {
	n := 0
	for _, b := range d.bySignature {
		n += len(b)
	}
	return n
}
