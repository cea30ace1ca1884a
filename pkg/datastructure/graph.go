package datastructure

import (
	"errors"

	"ecoroute/pkg/geo"
)

const (
	// MaxNodes sparse-graph node capacity.
	MaxNodes = 1500
	// maxEdgeFactor caps the sparse edge list at maxEdgeFactor*V directed records.
	maxEdgeFactor = 16

	// DefaultKNearest neighbors per node in the sparse builder.
	DefaultKNearest = 8
)

var (
	ErrInsufficientNodes = errors.New("need at least 2 places to build a graph")
	ErrCapacityExceeded  = errors.New("graph capacity exceeded")
)

// Edge is one directed traversal record of an undirected edge.
type Edge struct {
	ToNodeIDX int32
	DistKm    float64
	Weight    float64
}

// Graph is a sparse k-nearest-neighbor graph over named places.
type Graph struct {
	nodes     []Node
	adj       [][]Edge
	edgeCount int
}

func (g *Graph) NumNodes() int                { return len(g.nodes) }
func (g *Graph) GetNode(idx int32) Node       { return g.nodes[idx] }
func (g *Graph) Nodes() []Node                { return g.nodes }
func (g *Graph) AdjacentEdges(u int32) []Edge { return g.adj[u] }

// EdgeCount undirected edge count.
func (g *Graph) EdgeCount() int { return g.edgeCount / 2 }

// EdgeWeight weight of the directed record u->v, false when no such edge.
func (g *Graph) EdgeWeight(u, v int32) (float64, bool) {
	for _, e := range g.adj[u] {
		if e.ToNodeIDX == v {
			return e.Weight, true
		}
	}
	return 0, false
}

// addEdge inserts both traversal records of the undirected edge (u,v),
// skipping self loops and ordered pairs already present.
func (g *Graph) addEdge(u, v int32, distKm float64) error {
	if u == v {
		return nil
	}
	if g.edgeCount+2 > maxEdgeFactor*len(g.nodes) {
		return ErrCapacityExceeded
	}
	if _, ok := g.EdgeWeight(u, v); !ok {
		g.adj[u] = append(g.adj[u], Edge{ToNodeIDX: v, DistKm: distKm, Weight: distKm})
		g.edgeCount++
	}
	if _, ok := g.EdgeWeight(v, u); !ok {
		g.adj[v] = append(g.adj[v], Edge{ToNodeIDX: u, DistKm: distKm, Weight: distKm})
		g.edgeCount++
	}
	return nil
}

// ClampKNearest clamps k to the usable neighbor range for v nodes:
// at most v-1, with a floor of 2 once at least 3 nodes exist.
func ClampKNearest(k, v int) int {
	if k < 1 {
		k = 1
	}
	if v-1 < k {
		k = v - 1
	}
	if k < 2 && v >= 3 {
		k = 2
	}
	return k
}

// NewKNNGraph builds the sparse graph: every node is connected to its k
// nearest other nodes by great-circle distance. Distance ties break by
// ascending node index so the build is deterministic.
func NewKNNGraph(nodes []Node, k int) (*Graph, error) {
	if len(nodes) < 2 {
		return nil, ErrInsufficientNodes
	}
	if len(nodes) > MaxNodes {
		return nil, ErrCapacityExceeded
	}
	k = ClampKNearest(k, len(nodes))

	g := &Graph{
		nodes: nodes,
		adj:   make([][]Edge, len(nodes)),
	}

	v := len(nodes)
	dists := make([]float64, v)
	idx := make([]int32, v)
	for u := 0; u < v; u++ {
		for j := 0; j < v; j++ {
			if j == u {
				dists[j] = inf
			} else {
				dists[j] = geo.HaversineKm(nodes[u].Lat, nodes[u].Lon, nodes[j].Lat, nodes[j].Lon)
			}
			idx[j] = int32(j)
		}
		// partial selection of the k closest, ties by ascending index
		for i := 0; i < k && i < v; i++ {
			mi := i
			for j := i + 1; j < v; j++ {
				if dists[j] < dists[mi] || (dists[j] == dists[mi] && idx[j] < idx[mi]) {
					mi = j
				}
			}
			dists[i], dists[mi] = dists[mi], dists[i]
			idx[i], idx[mi] = idx[mi], idx[i]
		}
		for i := 0; i < k; i++ {
			if idx[i] == int32(u) {
				continue
			}
			if err := g.addEdge(int32(u), idx[i], dists[i]); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

const inf = 1e18
