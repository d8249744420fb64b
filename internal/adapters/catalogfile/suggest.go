package catalogfile

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Suggest returns up to limit names closest to name by edit distance.
// Names further than half the query length away are never suggested.
func Suggest(names []string, name string, limit int) []string {
	if limit <= 0 || name == "" {
		return nil
	}

	type scored struct {
		name string
		dist int
	}

	query := strings.ToLower(name)
	threshold := len(query)/2 + 1

	var candidates []scored
	for _, n := range names {
		d := levenshtein.ComputeDistance(query, strings.ToLower(n))
		if d <= threshold {
			candidates = append(candidates, scored{name: n, dist: d})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].name < candidates[j].name
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.name)
	}
	return out
}
