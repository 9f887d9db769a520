// Package solar implements the solar geometry, plane-of-array irradiance and
// PV thermal derating used by the energy budget. All angles are in degrees.
package solar

import (
	"fmt"
	"math"
)

// MaxDeclination is the axial tilt used by Cooper's approximation.
const MaxDeclination = 23.45

// NumericDomainError is returned for physically impossible inputs.
type NumericDomainError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *NumericDomainError) Error() string {
	return fmt.Sprintf("%s %g outside of [%g, %g]", e.Field, e.Value, e.Min, e.Max)
}

// CheckLatitude returns a NumericDomainError if lat is not within [-90, 90].
func CheckLatitude(lat float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return &NumericDomainError{Field: "latitude", Value: lat, Min: -90, Max: 90}
	}
	return nil
}

// CheckTilt returns a NumericDomainError if tilt is not within [0, 90].
func CheckTilt(tilt float64) error {
	if math.IsNaN(tilt) || tilt < 0 || tilt > 90 {
		return &NumericDomainError{Field: "tilt", Value: tilt, Min: 0, Max: 90}
	}
	return nil
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }
func radToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }

// clampUnit keeps inverse trig arguments within [-1, 1] so rounding can't
// produce NaN.
func clampUnit(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}

// Declination returns the solar declination for a day of the year (1-365)
// using Cooper's approximation.
func Declination(dayOfYear int) float64 {
	return MaxDeclination * math.Sin(degToRad(360.0/365.0*float64(dayOfYear-81)))
}

// HourAngle returns the hour angle for a local solar time in hours. Solar
// noon is 0, mornings are negative.
func HourAngle(solarTimeHours float64) float64 {
	return 15 * (solarTimeHours - 12)
}

// Altitude returns the elevation of the sun above the horizon.
func Altitude(lat, decl, hourAngle float64) float64 {
	latRad := degToRad(lat)
	declRad := degToRad(decl)
	sinAlt := math.Sin(latRad)*math.Sin(declRad) + math.Cos(latRad)*math.Cos(declRad)*math.Cos(degToRad(hourAngle))
	return radToDeg(math.Asin(clampUnit(sinAlt)))
}

// Azimuth returns the solar azimuth measured clockwise from north. Afternoon
// positions (positive hour angle) are mirrored to the western half.
func Azimuth(lat, decl, hourAngle, altitude float64) float64 {
	latRad := degToRad(lat)
	altRad := degToRad(altitude)
	den := math.Cos(altRad) * math.Cos(latRad)
	if math.Abs(den) < 1e-12 {
		// sun at the zenith or observer at a pole; azimuth is undefined so
		// point at the equator
		if lat < 0 {
			return 0
		}
		return 180
	}
	cosAz := (math.Sin(degToRad(decl)) - math.Sin(altRad)*math.Sin(latRad)) / den
	az := radToDeg(math.Acos(clampUnit(cosAz)))
	if hourAngle > 0 {
		az = 360 - az
	}
	return az
}

// IncidenceAngle returns the angle between the sun and the normal of a panel
// with the given tilt and azimuth.
func IncidenceAngle(tilt, panelAzimuth, solarAltitude, solarAzimuth float64) float64 {
	tiltRad := degToRad(tilt)
	altRad := degToRad(solarAltitude)
	cosInc := math.Sin(altRad)*math.Cos(tiltRad) +
		math.Cos(altRad)*math.Sin(tiltRad)*math.Cos(degToRad(solarAzimuth-panelAzimuth))
	return radToDeg(math.Acos(clampUnit(cosInc)))
}

// DaylightHours returns the length of the day between sunrise and sunset.
// Polar night returns 0 and polar day returns 24.
func DaylightHours(lat, decl float64) float64 {
	cosH := -math.Tan(degToRad(lat)) * math.Tan(degToRad(decl))
	return 2 * radToDeg(math.Acos(clampUnit(cosH))) / 15
}

// Position is the location of the sun in the sky.
type Position struct {
	DayOfYear   int     `json:"dayOfYear"`
	SolarTime   float64 `json:"solarTime"`
	Declination float64 `json:"declination"`
	HourAngle   float64 `json:"hourAngle"`
	Altitude    float64 `json:"altitude"`
	Azimuth     float64 `json:"azimuth"`
}

// SunPosition returns the position of the sun at lat on the given day and
// local solar time.
func SunPosition(lat float64, dayOfYear int, solarTimeHours float64) Position {
	decl := Declination(dayOfYear)
	ha := HourAngle(solarTimeHours)
	alt := Altitude(lat, decl, ha)
	return Position{
		DayOfYear:   dayOfYear,
		SolarTime:   solarTimeHours,
		Declination: decl,
		HourAngle:   ha,
		Altitude:    alt,
		Azimuth:     Azimuth(lat, decl, ha, alt),
	}
}
