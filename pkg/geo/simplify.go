package geo

// Coordinate is a plain (lat,lon) degree pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

const (
	// SamplesPerSegment interpolated points per route edge (start included, end excluded).
	SamplesPerSegment = 8
	// DefaultSimplifyEpsDeg RDP tolerance in coordinate-degree units.
	DefaultSimplifyEpsDeg = 0.0004
)

// InterpolateRoute expands a route's node coordinates into a dense polyline.
// Each segment contributes SamplesPerSegment points (its start point included,
// its end point excluded); the final route endpoint is appended exactly once.
func InterpolateRoute(routeCoords []Coordinate) []Coordinate {
	if len(routeCoords) == 0 {
		return []Coordinate{}
	}
	dense := make([]Coordinate, 0, (len(routeCoords)-1)*SamplesPerSegment+1)
	for i := 0; i < len(routeCoords)-1; i++ {
		a := routeCoords[i]
		b := routeCoords[i+1]
		for s := 0; s < SamplesPerSegment; s++ {
			t := float64(s) / float64(SamplesPerSegment)
			dense = append(dense, Coordinate{
				Lat: a.Lat*(1.0-t) + b.Lat*t,
				Lon: a.Lon*(1.0-t) + b.Lon*t,
			})
		}
	}
	dense = append(dense, routeCoords[len(routeCoords)-1])
	return dense
}

// squared perpendicular distance from c to the chord (a,b). A degenerate chord
// (coincident endpoints) falls back to the plain euclidean distance to a.
func chordPointDist2(a, b, c Coordinate) float64 {
	vx := b.Lon - a.Lon
	vy := b.Lat - a.Lat
	wx := c.Lon - a.Lon
	wy := c.Lat - a.Lat
	vv := vx*vx + vy*vy
	if vv == 0.0 {
		return wx*wx + wy*wy
	}
	t := (vx*wx + vy*wy) / vv
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	px := a.Lon + t*vx
	py := a.Lat + t*vy
	dx := c.Lon - px
	dy := c.Lat - py
	return dx*dx + dy*dy
}

// RDPSimplify reduces a dense polyline with the iterative Ramer-Douglas-Peucker
// algorithm. Both endpoints are always retained; the output never has more
// points than the input and is empty only for empty input.
func RDPSimplify(pts []Coordinate, epsDeg float64) []Coordinate {
	if len(pts) == 0 {
		return []Coordinate{}
	}
	if len(pts) <= 2 {
		out := make([]Coordinate, len(pts))
		copy(out, pts)
		return out
	}

	keep := make([]bool, len(pts))
	keep[0] = true
	keep[len(pts)-1] = true

	type span struct{ i, j int }
	stack := []span{{0, len(pts) - 1}}
	for len(stack) > 0 {
		sp := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		bestD2 := -1.0
		bestK := -1
		for k := sp.i + 1; k < sp.j; k++ {
			d2 := chordPointDist2(pts[sp.i], pts[sp.j], pts[k])
			if d2 > bestD2 {
				bestD2 = d2
				bestK = k
			}
		}
		if bestD2 > epsDeg*epsDeg {
			keep[bestK] = true
			stack = append(stack, span{sp.i, bestK}, span{bestK, sp.j})
		}
	}

	out := make([]Coordinate, 0, len(pts))
	for i, p := range pts {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}
