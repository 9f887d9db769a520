package solar

import "math"

const (
	// DefaultNOCT is the nominal operating cell temperature in °C.
	DefaultNOCT = 45.0
	// DefaultTempCoefficient is the power temperature coefficient in %/°C.
	DefaultTempCoefficient = -0.4
	// STCTemperature is the cell temperature at standard test conditions.
	STCTemperature = 25.0
)

// EstimateCellTemperature estimates the PV cell temperature in °C with the
// linear NOCT model. irradiance is in W/m². A zero noct uses DefaultNOCT.
func EstimateCellTemperature(ambient, irradiance, noct float64) float64 {
	if noct == 0 {
		noct = DefaultNOCT
	}
	return ambient + (noct-20)*(irradiance/1000)
}

// DeratingFactor returns the fraction of rated power delivered at cellTemp.
// It never goes below 0.
func DeratingFactor(cellTemp, coeff, stcTemp float64) float64 {
	return math.Max(0, 1+coeff/100*(cellTemp-stcTemp))
}

// ApplyDerating scales power for the given cell temperature. coeff is in
// %/°C (typically negative).
func ApplyDerating(power, cellTemp, coeff, stcTemp float64) float64 {
	return power * DeratingFactor(cellTemp, coeff, stcTemp)
}
