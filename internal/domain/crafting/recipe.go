package crafting

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Ingredient is one (commodity, count) entry of a recipe's ingredient multiset
type Ingredient struct {
	Commodity Commodity
	Count     int
}

// Step is one application in a chain: either a catalog Recipe or a TradeStep.
type Step interface {
	Result() Commodity
	ResultCount() int
	// Ingredients returns the canonical (sorted, merged) ingredient multiset
	Ingredients() []Ingredient
	// Hash is order independent over the ingredient multiset
	Hash() int64
	// Key identifies the step exactly; equal keys mean equal steps
	Key() string
}

// Recipe is an immutable production rule
type Recipe struct {
	result      Commodity
	resultCount int
	ingredients []Ingredient
	hash        int64
	key         string
}

// NewRecipe builds a recipe and canonicalizes its ingredient multiset.
// Duplicate ingredient entries are merged.
func NewRecipe(result Commodity, resultCount int, ingredients []Ingredient) (*Recipe, error) {
	if result < 0 {
		return nil, &ErrInvalidRecipe{Result: result, Reason: "negative result commodity"}
	}
	if resultCount < 1 {
		return nil, &ErrInvalidRecipe{Result: result, Reason: fmt.Sprintf("result count %d < 1", resultCount)}
	}

	merged := make(map[Commodity]int, len(ingredients))
	for _, ing := range ingredients {
		if ing.Count < 1 {
			return nil, &ErrInvalidRecipe{Result: result, Reason: fmt.Sprintf("ingredient %d has count %d", int(ing.Commodity), ing.Count)}
		}
		if ing.Commodity < 0 {
			return nil, &ErrInvalidRecipe{Result: result, Reason: "negative ingredient commodity"}
		}
		merged[ing.Commodity] += ing.Count
	}

	canonical := make([]Ingredient, 0, len(merged))
	for c, n := range merged {
		canonical = append(canonical, Ingredient{Commodity: c, Count: n})
	}
	sortIngredients(canonical)

	r := &Recipe{
		result:      result,
		resultCount: resultCount,
		ingredients: canonical,
	}
	r.hash = recipeHash(r)
	r.key = recipeKey(r)
	return r, nil
}

func (r *Recipe) Result() Commodity         { return r.result }
func (r *Recipe) ResultCount() int          { return r.resultCount }
func (r *Recipe) Ingredients() []Ingredient { return r.ingredients }
func (r *Recipe) Hash() int64               { return r.hash }
func (r *Recipe) Key() string               { return r.key }

// Equal compares result and canonical ingredient multiset
func (r *Recipe) Equal(other *Recipe) bool {
	if other == nil {
		return false
	}
	return r.key == other.key
}

// IsSelfCycle reports whether the recipe consumes its own result
func (r *Recipe) IsSelfCycle() bool {
	return r.Consumes(r.result) > 0
}

// IsEmpty reports a recipe with no ingredients (only trades may do that)
func (r *Recipe) IsEmpty() bool {
	return len(r.ingredients) == 0
}

// Consumes returns how many units of c a single application needs
func (r *Recipe) Consumes(c Commodity) int {
	for _, ing := range r.ingredients {
		if ing.Commodity == c {
			return ing.Count
		}
	}
	return 0
}

func (r *Recipe) String() string {
	return r.key
}

// PeerID identifies another participant whose holdings may be traded for
type PeerID string

// TradeStep is a zero-ingredient pseudo-recipe yielding one unit from a peer
type TradeStep struct {
	Peer      PeerID
	Commodity Commodity
}

// NewTradeStep creates a trade step for one unit of commodity from peer
func NewTradeStep(peer PeerID, commodity Commodity) *TradeStep {
	return &TradeStep{Peer: peer, Commodity: commodity}
}

func (t *TradeStep) Result() Commodity         { return t.Commodity }
func (t *TradeStep) ResultCount() int          { return 1 }
func (t *TradeStep) Ingredients() []Ingredient { return nil }

func (t *TradeStep) Hash() int64 {
	return mix64(uint64(peerHash(t.Peer))*31 + uint64(t.Commodity) + 0x7472616465)
}

func (t *TradeStep) Key() string {
	return "T" + string(t.Peer) + ":" + strconv.Itoa(int(t.Commodity))
}

// IsTrade reports whether s is a trade pseudo-recipe
func IsTrade(s Step) bool {
	_, ok := s.(*TradeStep)
	return ok
}

func sortIngredients(ings []Ingredient) {
	sort.Slice(ings, func(i, j int) bool {
		if ings[i].Commodity != ings[j].Commodity {
			return ings[i].Commodity < ings[j].Commodity
		}
		return ings[i].Count < ings[j].Count
	})
}

func recipeHash(r *Recipe) int64 {
	var ingHash uint64 = 17
	for _, ing := range r.ingredients {
		ingHash = ingHash*31 + uint64(ing.Commodity)*31 + uint64(ing.Count)
	}

	var h uint64 = 17
	h = h*31 + uint64(r.result)
	h = h*31 + uint64(r.resultCount)
	h = h*31 + ingHash
	return mix64(h)
}

func recipeKey(r *Recipe) string {
	var b strings.Builder
	b.WriteString("R")
	b.WriteString(strconv.Itoa(int(r.result)))
	b.WriteString("x")
	b.WriteString(strconv.Itoa(r.resultCount))
	b.WriteString("<")
	for i, ing := range r.ingredients {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(strconv.Itoa(int(ing.Commodity)))
		b.WriteString("x")
		b.WriteString(strconv.Itoa(ing.Count))
	}
	return b.String()
}

func peerHash(p PeerID) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(p))
	return int64(h.Sum64())
}

// mix64 is the splitmix64 finalizer; it spreads step hashes so that their
// additive combination rarely collides.
func mix64(x uint64) int64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}
