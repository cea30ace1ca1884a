package routingalgorithm

import (
	"errors"
	"math"

	"ecoroute/pkg/datastructure"
	"ecoroute/pkg/util"
)

var (
	ErrSourceEqualsTarget = errors.New("source and destination must differ")
)

// WeightedGraph is what the route engine needs from a graph. Both the sparse
// KNN graph and the dense emission graph satisfy it.
type WeightedGraph interface {
	NumNodes() int
	AdjacentEdges(u int32) []datastructure.Edge
	EdgeWeight(u, v int32) (float64, bool)
}

// ExcludedEdge marks one undirected edge to be skipped during relaxation.
// The zero value (both -1) excludes nothing.
type ExcludedEdge struct {
	U int32
	V int32
}

// NoExcludedEdge excludes nothing.
func NoExcludedEdge() ExcludedEdge { return ExcludedEdge{U: -1, V: -1} }

func (x ExcludedEdge) matches(u, v int32) bool {
	return (u == x.U && v == x.V) || (u == x.V && v == x.U)
}

type RouteEngine struct {
	g WeightedGraph
}

func NewRouteEngine(g WeightedGraph) *RouteEngine {
	return &RouteEngine{g: g}
}

// Dijkstra single-source relaxation from source, early-exiting once target is
// settled. Node selection is a linear minimum scan; at this system's scale
// (<=1500 nodes) the selection structure does not matter for correctness, and
// the scan settles the lowest-index node among equal minima, keeping path
// selection deterministic. The excluded edge is request-scoped and never
// mutates the graph.
func (rt *RouteEngine) Dijkstra(source, target int32, excluded ExcludedEdge) ([]float64, []int32) {
	n := rt.g.NumNodes()
	dist := make([]float64, n)
	prev := make([]int32, n)
	visited := make([]bool, n)
	for i := 0; i < n; i++ {
		dist[i] = math.Inf(1)
		prev[i] = -1
	}
	dist[source] = 0.0

	for {
		u := int32(-1)
		best := math.Inf(1)
		for i := 0; i < n; i++ {
			if !visited[i] && dist[i] < best {
				best = dist[i]
				u = int32(i)
			}
		}
		if u == -1 {
			break
		}
		visited[u] = true
		if u == target {
			break
		}
		for _, e := range rt.g.AdjacentEdges(u) {
			v := e.ToNodeIDX
			if excluded.matches(u, v) {
				continue
			}
			alt := dist[u] + e.Weight
			if alt < dist[v] {
				dist[v] = alt
				prev[v] = u
			}
		}
	}
	return dist, prev
}

// BuildPath walks predecessors from target back to the source and reverses.
// Returns false when the target was never reached.
func BuildPath(dist []float64, prev []int32, target int32) (datastructure.Path, bool) {
	if math.IsInf(dist[target], 1) {
		return datastructure.Path{}, false
	}
	nodes := []int32{}
	for v := target; v != -1; v = prev[v] {
		nodes = append(nodes, v)
	}
	util.ReverseG(nodes)
	return datastructure.Path{Nodes: nodes, Cost: dist[target]}, true
}

// ShortestPath the minimum-cost path between source and target. The second
// return is false when the target is unreachable; that is a normal outcome,
// not an error.
func (rt *RouteEngine) ShortestPath(source, target int32) (datastructure.Path, bool, error) {
	if source == target {
		return datastructure.Path{}, false, ErrSourceEqualsTarget
	}
	dist, prev := rt.Dijkstra(source, target, NoExcludedEdge())
	p, found := BuildPath(dist, prev, target)
	return p, found, nil
}
