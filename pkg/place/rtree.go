package place

import (
	"ecoroute/pkg/datastructure"

	"github.com/dhconnelly/rtreego"
)

var tol = 0.0001

type nodePoint struct {
	Location rtreego.Point
	Node     datastructure.Node
}

func (p *nodePoint) Bounds() rtreego.Rect {
	// rectangle centered at the node with side lengths 2 * tol
	return p.Location.ToRect(tol)
}

// SpatialIndex answers nearest-node queries for raw coordinates, so callers
// can route from a map click instead of a place name.
type SpatialIndex struct {
	tree *rtreego.Rtree
}

func NewSpatialIndex(nodes []datastructure.Node) *SpatialIndex {
	tree := rtreego.NewTree(2, 25, 50)
	for _, n := range nodes {
		tree.Insert(&nodePoint{
			Location: rtreego.Point{n.Lat, n.Lon},
			Node:     n,
		})
	}
	return &SpatialIndex{tree: tree}
}

// NearestNodeIDx the index of the node closest to (lat,lon); false when the
// index is empty.
func (idx *SpatialIndex) NearestNodeIDx(lat, lon float64) (int32, bool) {
	nearest := idx.tree.NearestNeighbor(rtreego.Point{lat, lon})
	if nearest == nil {
		return -1, false
	}
	return nearest.(*nodePoint).Node.IDx, true
}
