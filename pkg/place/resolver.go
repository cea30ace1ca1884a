package place

import (
	"errors"
	"strings"

	"ecoroute/pkg/datastructure"

	"golang.org/x/exp/slices"
)

const maxFuzzyCandidates = 5

var (
	// ErrNotFound no node could even be suggested (empty node set).
	ErrNotFound = errors.New("place not found")
	// ErrAmbiguous no automatic decision; the ranked candidates carry the choices.
	ErrAmbiguous = errors.New("place query is ambiguous")
)

// Candidate is a ranked disambiguation choice. Distance is the edit distance
// to the query (0 for substring matches).
type Candidate struct {
	IDx      int32  `json:"index"`
	Name     string `json:"name"`
	Distance int    `json:"distance"`
}

// Resolver resolves free-text queries against the loaded node set.
type Resolver struct {
	nodes []datastructure.Node
}

func NewResolver(nodes []datastructure.Node) *Resolver {
	return &Resolver{nodes: nodes}
}

// Resolve maps a query to a node index. Priority order: case-insensitive
// exact match, unique case-insensitive substring match, then edit-distance
// suggestions. When no automatic decision is possible the ranked candidate
// list is returned with ErrAmbiguous; ties always break by node order.
func (r *Resolver) Resolve(query string) (int32, []Candidate, error) {
	if len(r.nodes) == 0 {
		return -1, nil, ErrNotFound
	}
	q := strings.ToLower(strings.TrimSpace(query))

	for _, n := range r.nodes {
		if strings.ToLower(n.Name) == q {
			return n.IDx, nil, nil
		}
	}

	sub := []Candidate{}
	for _, n := range r.nodes {
		if strings.Contains(strings.ToLower(n.Name), q) {
			sub = append(sub, Candidate{IDx: n.IDx, Name: n.Name})
		}
	}
	if len(sub) == 1 {
		return sub[0].IDx, nil, nil
	}
	if len(sub) > 1 {
		return -1, sub, ErrAmbiguous
	}

	fuzzy := make([]Candidate, 0, len(r.nodes))
	for _, n := range r.nodes {
		fuzzy = append(fuzzy, Candidate{
			IDx:      n.IDx,
			Name:     n.Name,
			Distance: levenshteinCI(n.Name, q),
		})
	}
	slices.SortStableFunc(fuzzy, func(a, b Candidate) int {
		return a.Distance - b.Distance
	})
	if len(fuzzy) > maxFuzzyCandidates {
		fuzzy = fuzzy[:maxFuzzyCandidates]
	}
	return -1, fuzzy, ErrAmbiguous
}

// levenshteinCI case-insensitive edit distance.
func levenshteinCI(s1, s2 string) int {
	a := strings.ToLower(s1)
	b := strings.ToLower(s2)
	n, m := len(a), len(b)

	prev := make([]int, m+1)
	curr := make([]int, m+1)
	for j := 0; j <= m; j++ {
		prev[j] = j
	}
	for i := 1; i <= n; i++ {
		curr[0] = i
		for j := 1; j <= m; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[m]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
