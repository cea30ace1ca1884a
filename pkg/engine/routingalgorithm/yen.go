package routingalgorithm

import (
	"ecoroute/pkg/datastructure"
)

// TwoBestPaths the minimum-cost path and at most one loop-free alternative,
// a Yen's algorithm capped at K=2: every consecutive edge (u,v) of the best
// path is excluded in turn and a spur search reruns from u to the target.
// The candidate's true cost is re-summed over the concatenated edges so the
// excluded segment is never double counted. Returns a single path when no
// alternate survives deduplication, and zero paths when the target is
// unreachable.
func (rt *RouteEngine) TwoBestPaths(source, target int32) ([]datastructure.Path, error) {
	if source == target {
		return nil, ErrSourceEqualsTarget
	}
	dist, prev := rt.Dijkstra(source, target, NoExcludedEdge())
	best, found := BuildPath(dist, prev, target)
	if !found {
		return []datastructure.Path{}, nil
	}
	paths := []datastructure.Path{best}

	candidates := []datastructure.Path{}
	for i := 0; i < len(best.Nodes)-1; i++ {
		spur := best.Nodes[i]
		excluded := ExcludedEdge{U: best.Nodes[i], V: best.Nodes[i+1]}

		spurDist, spurPrev := rt.Dijkstra(spur, target, excluded)
		spurPath, ok := BuildPath(spurDist, spurPrev, target)
		if !ok {
			continue
		}

		cand, ok := rt.concatPrefixAndSpur(best.Nodes[:i+1], spurPath.Nodes)
		if !ok {
			continue
		}

		dup := false
		for _, c := range candidates {
			if c.Equal(cand) {
				dup = true
				break
			}
		}
		if !dup {
			candidates = append(candidates, cand)
		}
	}

	if len(candidates) == 0 {
		return paths, nil
	}
	besti := 0
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Cost < candidates[besti].Cost {
			besti = i
		}
	}
	if !candidates[besti].Equal(best) {
		paths = append(paths, candidates[besti])
	}
	return paths, nil
}

// concatPrefixAndSpur joins the best path's prefix (ending at the spur node)
// with the spur path, summing the real edge weights along the joined walk.
func (rt *RouteEngine) concatPrefixAndSpur(prefix []int32, spurNodes []int32) (datastructure.Path, bool) {
	nodes := make([]int32, 0, len(prefix)+len(spurNodes)-1)
	cost := 0.0
	for j, u := range prefix {
		nodes = append(nodes, u)
		if j > 0 {
			w, ok := rt.g.EdgeWeight(prefix[j-1], u)
			if !ok {
				return datastructure.Path{}, false
			}
			cost += w
		}
	}
	for j := 1; j < len(spurNodes); j++ {
		nodes = append(nodes, spurNodes[j])
		w, ok := rt.g.EdgeWeight(spurNodes[j-1], spurNodes[j])
		if !ok {
			return datastructure.Path{}, false
		}
		cost += w
	}
	return datastructure.Path{Nodes: nodes, Cost: cost}, true
}
