package emission

import (
	"strings"

	"ecoroute/pkg/datastructure"
)

// Average speeds (km/h) used only for estimated-time display, never for
// path cost.
const (
	CarKmh  = 40.0
	BikeKmh = 15.0
	WalkKmh = 5.0

	// CarFreeflowKmh expected free-flow car speed in the emission mode; the
	// effective speed divides this by the segment's traffic factor, floored
	// at MinCarKmh.
	CarFreeflowKmh = 50.0
	MinCarKmh      = 5.0

	// DefaultCO2GramsPerKm fallback emission factor for unknown vehicles.
	DefaultCO2GramsPerKm = 120.0
)

// ComputeTimeMin minutes to cover distanceKm at speedKmh.
func ComputeTimeMin(distanceKm, speedKmh float64) float64 {
	if speedKmh <= 0.0 {
		return 0.0
	}
	return (distanceKm / speedKmh) * 60.0
}

// CarTimeMinWithTraffic car minutes for one segment under a traffic factor.
func CarTimeMinWithTraffic(distanceKm, factor float64) float64 {
	speed := CarFreeflowKmh
	if factor > 0 {
		speed = CarFreeflowKmh / factor
	}
	if speed < MinCarKmh {
		speed = MinCarKmh
	}
	return ComputeTimeMin(distanceKm, speed)
}

// VehicleProfiles emission factors (grams CO2 per km) by model name,
// case-insensitive.
type VehicleProfiles struct {
	factors map[string]float64
}

func NewVehicleProfiles(factors map[string]float64) *VehicleProfiles {
	lowered := make(map[string]float64, len(factors))
	for model, f := range factors {
		lowered[strings.ToLower(strings.TrimSpace(model))] = f
	}
	return &VehicleProfiles{factors: lowered}
}

// Factor the grams-per-km factor for a model. Unknown or blank models fall
// back to DefaultCO2GramsPerKm; the second return reports whether the model
// was found.
func (p *VehicleProfiles) Factor(model string) (float64, bool) {
	if p == nil {
		return DefaultCO2GramsPerKm, false
	}
	f, ok := p.factors[strings.ToLower(strings.TrimSpace(model))]
	if !ok {
		return DefaultCO2GramsPerKm, false
	}
	return f, true
}

// ApplyCO2Weights derives every valid slot's cost as
// distance * traffic factor * gramsPerKm.
func ApplyCO2Weights(g *datastructure.DenseGraph, gramsPerKm float64) {
	n := g.NumNodes()
	for i := int32(0); i < int32(n); i++ {
		for j := int32(0); j < int32(n); j++ {
			e := g.GetEdge(i, j)
			if e.ToNodeIDX >= 0 {
				e.CO2Cost = e.DistanceKm * e.TrafficFactor * gramsPerKm
			} else {
				e.CO2Cost = 0.0
			}
		}
	}
}
