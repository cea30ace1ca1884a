package geo_test

import (
	"testing"

	"ecoroute/pkg/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolateRoute(t *testing.T) {
	t.Run("success dense point count per segment", func(t *testing.T) {
		route := []geo.Coordinate{
			{Lat: 0, Lon: 0},
			{Lat: 0, Lon: 1},
			{Lat: 1, Lon: 1},
		}
		dense := geo.InterpolateRoute(route)
		assert.Len(t, dense, 2*geo.SamplesPerSegment+1)
		assert.Equal(t, route[0], dense[0])
		assert.Equal(t, route[2], dense[len(dense)-1])
	})

	t.Run("success empty route", func(t *testing.T) {
		assert.Empty(t, geo.InterpolateRoute(nil))
	})

	t.Run("success single point route", func(t *testing.T) {
		route := []geo.Coordinate{{Lat: 2, Lon: 3}}
		assert.Equal(t, route, geo.InterpolateRoute(route))
	})
}

func TestRDPSimplify(t *testing.T) {
	zigzag := []geo.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 0.01, Lon: 0.25},
		{Lat: -0.01, Lon: 0.5},
		{Lat: 0.01, Lon: 0.75},
		{Lat: 0, Lon: 1},
	}

	t.Run("success endpoints always retained", func(t *testing.T) {
		out := geo.RDPSimplify(zigzag, geo.DefaultSimplifyEpsDeg)
		require.NotEmpty(t, out)
		assert.Equal(t, zigzag[0], out[0])
		assert.Equal(t, zigzag[len(zigzag)-1], out[len(out)-1])
	})

	t.Run("success tolerance zero keeps every deviating point", func(t *testing.T) {
		out := geo.RDPSimplify(zigzag, 0)
		assert.Equal(t, zigzag, out)
	})

	t.Run("success collinear interior points dropped", func(t *testing.T) {
		line := []geo.Coordinate{
			{Lat: 0, Lon: 0},
			{Lat: 0, Lon: 0.25},
			{Lat: 0, Lon: 0.5},
			{Lat: 0, Lon: 1},
		}
		out := geo.RDPSimplify(line, geo.DefaultSimplifyEpsDeg)
		assert.Equal(t, []geo.Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}}, out)
	})

	t.Run("success coarser tolerance never keeps more points", func(t *testing.T) {
		fine := geo.RDPSimplify(zigzag, 0.0001)
		coarse := geo.RDPSimplify(zigzag, 0.1)
		assert.LessOrEqual(t, len(coarse), len(fine))
		assert.LessOrEqual(t, len(fine), len(zigzag))
	})

	t.Run("success two point input passthrough", func(t *testing.T) {
		two := []geo.Coordinate{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 1}}
		assert.Equal(t, two, geo.RDPSimplify(two, geo.DefaultSimplifyEpsDeg))
	})

	t.Run("success empty input", func(t *testing.T) {
		assert.Empty(t, geo.RDPSimplify(nil, geo.DefaultSimplifyEpsDeg))
	})
}

func TestHaversine(t *testing.T) {
	t.Run("success one degree of longitude at the equator", func(t *testing.T) {
		// one degree of arc on a 6371 km sphere
		assert.InDelta(t, 111.19, geo.HaversineKm(0, 0, 0, 1), 0.05)
	})

	t.Run("success zero distance for identical points", func(t *testing.T) {
		assert.InDelta(t, 0.0, geo.HaversineKm(-7.57, 110.82, -7.57, 110.82), 1e-9)
	})

	t.Run("success symmetric", func(t *testing.T) {
		assert.InDelta(t,
			geo.HaversineKm(-7.57, 110.82, -7.8, 110.36),
			geo.HaversineKm(-7.8, 110.36, -7.57, 110.82), 1e-12)
	})
}

func TestMidPoint(t *testing.T) {
	t.Run("success midpoint along the equator", func(t *testing.T) {
		lat, lon := geo.MidPoint(0, 0, 0, 2)
		assert.InDelta(t, 0.0, lat, 1e-9)
		assert.InDelta(t, 1.0, lon, 1e-9)
	})
}
