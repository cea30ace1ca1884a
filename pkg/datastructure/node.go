package datastructure

import (
	"ecoroute/pkg/geo"

	"github.com/twpayne/go-polyline"
)

// Node is a named place. Insertion order is the canonical index order;
// nodes are immutable once loaded.
type Node struct {
	Name string
	Lat  float64
	Lon  float64
	IDx  int32
}

func (n Node) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: n.Lat, Lon: n.Lon}
}

func RenderPath(coords []geo.Coordinate) string {
	latLons := make([][]float64, 0, len(coords))
	for _, c := range coords {
		latLons = append(latLons, []float64{c.Lat, c.Lon})
	}
	return string(polyline.EncodeCoords(latLons))
}
