package palette

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// MaxSuggestDistance is the largest edit distance Suggest accepts.
const MaxSuggestDistance = 2

// Group is a named section of filtered items.
type Group struct {
	Name  string
	Items []Item
}

// Filter keeps the items matching query and groups them by Group. Groups
// appear in the order their first item appears in items; items keep
// their relative order inside a group.
func Filter(items []Item, query string) []Group {
	var groups []Group
	pos := make(map[string]int)
	for _, it := range items {
		if !it.Matches(query) {
			continue
		}
		i, ok := pos[it.Group]
		if !ok {
			i = len(groups)
			pos[it.Group] = i
			groups = append(groups, Group{Name: it.Group})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}

// Count returns the number of items across groups.
func Count(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += len(g.Items)
	}
	return n
}

// Suggest returns the keyword nearest to query, for "did you mean" hints
// when nothing matches. A keyword is compared both whole and by its prefix
// of the query's length, so a misspelled beginning still finds it. Ties go
// to the earlier item.
func Suggest(items []Item, query string) (string, bool) {
	q := strings.ToLower(query)
	if q == "" {
		return "", false
	}
	best, bestDist := "", MaxSuggestDistance+1
	for _, it := range items {
		for _, kw := range it.Keywords {
			k := strings.ToLower(kw)
			dist := levenshtein.ComputeDistance(q, k)
			if kr, n := []rune(k), len([]rune(q)); len(kr) > n {
				dist = min(dist, levenshtein.ComputeDistance(q, string(kr[:n])))
			}
			if dist < bestDist {
				best, bestDist = kw, dist
			}
		}
	}
	return best, best != ""
}
