package datastructure

import (
	"ecoroute/pkg/geo"
)

// MaxDenseNodes complete-graph node capacity.
const MaxDenseNodes = 300

// DenseEdge is one directed slot of the N x N matrix. ToNodeIDX is -1 for
// the invalid self pair.
type DenseEdge struct {
	ToNodeIDX     int32
	DistanceKm    float64
	TrafficFactor float64
	CO2Cost       float64
}

// DenseGraph is the complete graph over all nodes, addressed by flattened
// (i*n + j) slots. Used by the emission-weighted routing mode.
type DenseGraph struct {
	nodes []Node
	edges []DenseEdge
}

// NewDenseGraph builds the complete graph: every ordered pair (i,j), i != j,
// gets its great-circle distance, traffic factor 1.0 and cost 0.
func NewDenseGraph(nodes []Node) (*DenseGraph, error) {
	if len(nodes) < 2 {
		return nil, ErrInsufficientNodes
	}
	if len(nodes) > MaxDenseNodes {
		return nil, ErrCapacityExceeded
	}
	n := len(nodes)
	g := &DenseGraph{
		nodes: nodes,
		edges: make([]DenseEdge, n*n),
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			e := &g.edges[i*n+j]
			e.TrafficFactor = 1.0
			if i == j {
				e.ToNodeIDX = -1
				continue
			}
			e.ToNodeIDX = int32(j)
			e.DistanceKm = geo.HaversineKm(nodes[i].Lat, nodes[i].Lon, nodes[j].Lat, nodes[j].Lon)
		}
	}
	return g, nil
}

func (g *DenseGraph) NumNodes() int          { return len(g.nodes) }
func (g *DenseGraph) GetNode(idx int32) Node { return g.nodes[idx] }
func (g *DenseGraph) Nodes() []Node          { return g.nodes }

// GetEdge the directed slot (u,v).
func (g *DenseGraph) GetEdge(u, v int32) *DenseEdge {
	return &g.edges[int(u)*len(g.nodes)+int(v)]
}

func (g *DenseGraph) AdjacentEdges(u int32) []Edge {
	n := len(g.nodes)
	out := make([]Edge, 0, n-1)
	for v := 0; v < n; v++ {
		e := g.edges[int(u)*n+v]
		if e.ToNodeIDX < 0 {
			continue
		}
		out = append(out, Edge{ToNodeIDX: e.ToNodeIDX, DistKm: e.DistanceKm, Weight: e.CO2Cost})
	}
	return out
}

func (g *DenseGraph) EdgeWeight(u, v int32) (float64, bool) {
	e := g.GetEdge(u, v)
	if e.ToNodeIDX < 0 {
		return 0, false
	}
	return e.CO2Cost, true
}

// SetTrafficFactor stores the same multiplier on both directed slots of the
// undirected pair (u,v).
func (g *DenseGraph) SetTrafficFactor(u, v int32, factor float64) {
	g.GetEdge(u, v).TrafficFactor = factor
	g.GetEdge(v, u).TrafficFactor = factor
}

// ResetTrafficFactors sets every slot back to the free-flow multiplier.
func (g *DenseGraph) ResetTrafficFactors() {
	for i := range g.edges {
		g.edges[i].TrafficFactor = 1.0
	}
}
