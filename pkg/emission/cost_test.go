package emission_test

import (
	"testing"

	"ecoroute/pkg/datastructure"
	"ecoroute/pkg/emission"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTimeMin(t *testing.T) {
	t.Run("success car time over 40 km", func(t *testing.T) {
		assert.InDelta(t, 60.0, emission.ComputeTimeMin(40, emission.CarKmh), 1e-9)
	})

	t.Run("success walk time over 5 km", func(t *testing.T) {
		assert.InDelta(t, 60.0, emission.ComputeTimeMin(5, emission.WalkKmh), 1e-9)
	})

	t.Run("success zero speed yields zero", func(t *testing.T) {
		assert.Equal(t, 0.0, emission.ComputeTimeMin(10, 0))
	})
}

func TestCarTimeMinWithTraffic(t *testing.T) {
	t.Run("success free flow speed at factor one", func(t *testing.T) {
		// 50 km at 50 km/h
		assert.InDelta(t, 60.0, emission.CarTimeMinWithTraffic(50, 1.0), 1e-9)
	})

	t.Run("success congestion halves effective speed", func(t *testing.T) {
		// 50 km at 25 km/h
		assert.InDelta(t, 120.0, emission.CarTimeMinWithTraffic(50, 2.0), 1e-9)
	})

	t.Run("success speed floored at minimum", func(t *testing.T) {
		// 50/20 = 2.5 km/h would be below the 5 km/h floor
		assert.InDelta(t, emission.ComputeTimeMin(10, emission.MinCarKmh),
			emission.CarTimeMinWithTraffic(10, 20.0), 1e-9)
	})
}

func TestVehicleProfiles(t *testing.T) {
	profiles := emission.NewVehicleProfiles(map[string]float64{
		"Toyota Prius": 78,
		"Ford F150":    365,
	})

	t.Run("success case insensitive lookup", func(t *testing.T) {
		f, ok := profiles.Factor("toyota prius")
		assert.True(t, ok)
		assert.Equal(t, 78.0, f)
	})

	t.Run("success unknown model falls back to default", func(t *testing.T) {
		f, ok := profiles.Factor("unknown model")
		assert.False(t, ok)
		assert.Equal(t, emission.DefaultCO2GramsPerKm, f)
	})

	t.Run("success nil profiles fall back to default", func(t *testing.T) {
		var nilProfiles *emission.VehicleProfiles
		f, ok := nilProfiles.Factor("anything")
		assert.False(t, ok)
		assert.Equal(t, emission.DefaultCO2GramsPerKm, f)
	})
}

func TestApplyCO2Weights(t *testing.T) {
	t.Run("success cost is distance times factor times grams", func(t *testing.T) {
		nodes := []datastructure.Node{
			{Name: "A", Lat: 0, Lon: 0, IDx: 0},
			{Name: "B", Lat: 0, Lon: 0.1, IDx: 1},
		}
		g, err := datastructure.NewDenseGraph(nodes)
		require.NoError(t, err)

		// pin the inputs so the expectation is exact
		e := g.GetEdge(0, 1)
		e.DistanceKm = 10.0
		g.GetEdge(1, 0).DistanceKm = 10.0
		g.SetTrafficFactor(0, 1, 2.0)

		emission.ApplyCO2Weights(g, emission.DefaultCO2GramsPerKm)

		assert.InDelta(t, 2400.0, g.GetEdge(0, 1).CO2Cost, 1e-9)
		assert.InDelta(t, 2400.0, g.GetEdge(1, 0).CO2Cost, 1e-9)
		assert.Equal(t, 0.0, g.GetEdge(0, 0).CO2Cost)
	})

	t.Run("success reweighting is idempotent per call", func(t *testing.T) {
		nodes := []datastructure.Node{
			{Name: "A", Lat: 0, Lon: 0, IDx: 0},
			{Name: "B", Lat: 0, Lon: 0.1, IDx: 1},
		}
		g, err := datastructure.NewDenseGraph(nodes)
		require.NoError(t, err)

		emission.ApplyCO2Weights(g, 100)
		first := g.GetEdge(0, 1).CO2Cost
		emission.ApplyCO2Weights(g, 100)
		assert.Equal(t, first, g.GetEdge(0, 1).CO2Cost)
	})
}
