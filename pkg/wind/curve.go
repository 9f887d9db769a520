// Package wind estimates the output of small wind turbines.
package wind

import "github.com/buoybudget/buoybudget/pkg/types"

// Power returns the turbine output in W at wind speed v (m/s).
//
// Below cut-in and above cut-out the turbine produces nothing. Between
// cut-in and rated speed the output follows the cube of the wind speed,
// P = rated * (v³ - cutIn³) / (ratedSpeed³ - cutIn³), and it is flat at the
// rated power between rated and cut-out speed.
func Power(g types.WindGenerator, v float64) float64 {
	switch {
	case v < g.CutInSpeed:
		return 0
	case g.CutOutSpeed > 0 && v > g.CutOutSpeed:
		return 0
	case v >= g.RatedSpeed:
		return g.RatedPower
	}
	cutIn3 := g.CutInSpeed * g.CutInSpeed * g.CutInSpeed
	den := g.RatedSpeed*g.RatedSpeed*g.RatedSpeed - cutIn3
	if den <= 0 {
		return g.RatedPower
	}
	return g.RatedPower * (v*v*v - cutIn3) / den
}

// MonthlyEnergy returns the energy in Wh produced by all turbines of the
// group over a month with the given average wind speed.
func MonthlyEnergy(g types.WindGenerator, avgSpeed float64, days int) float64 {
	qty := g.Quantity
	if qty <= 0 {
		qty = 1
	}
	return Power(g, avgSpeed) * float64(qty) * float64(days) * 24
}
