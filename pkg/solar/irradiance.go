package solar

import (
	"math"
)

// GroundAlbedo is the fixed reflectance used for the ground reflected
// component.
const GroundAlbedo = 0.2

// IrradianceOnTilt estimates the plane-of-array irradiance of a tilted panel
// from horizontal global and diffuse irradiance. The result has the same
// unit as ghi.
//
// The beam component is transposed with the noon ratio
// Rb = cos(lat - tilt - decl) / cos(lat - decl) for the representative day,
// the diffuse component uses an isotropic sky and the ground contributes
// with a fixed albedo. This is a monthly average approximation, not an
// hourly integral.
func IrradianceOnTilt(ghi, diffuse, tilt, panelAzimuth, lat float64, dayOfYear int) float64 {
	direct := math.Max(0, ghi-diffuse)
	decl := Declination(dayOfYear)
	tiltRad := degToRad(tilt)

	rb := BeamRatio(tilt, panelAzimuth, lat, decl)

	sky := diffuse * (1 + math.Cos(tiltRad)) / 2
	ground := ghi * GroundAlbedo * (1 - math.Cos(tiltRad)) / 2
	return direct*rb + sky + ground
}

// BeamRatio returns the ratio of beam irradiance on the panel to beam
// irradiance on a horizontal surface at solar noon. A panel that does not
// face the equator only gets the part of its tilt projected towards the
// equator. Ratios implying negative beam irradiance are returned as 0.
func BeamRatio(tilt, panelAzimuth, lat, decl float64) float64 {
	equatorAzimuth := 180.0
	sign := 1.0
	if lat < 0 {
		equatorAzimuth = 0
		sign = -1
	}
	effTilt := sign * tilt * math.Cos(degToRad(panelAzimuth-equatorAzimuth))

	den := math.Cos(degToRad(lat - decl))
	if den <= 0 {
		// sun does not rise above the horizon at noon
		return 0
	}
	rb := math.Cos(degToRad(lat-effTilt-decl)) / den
	if rb < 0 || math.IsNaN(rb) {
		return 0
	}
	return rb
}
