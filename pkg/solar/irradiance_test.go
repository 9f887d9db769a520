package solar

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIrradianceOnTilt(t *testing.T) {
	t.Run("Horizontal Panel Sees GHI", func(t *testing.T) {
		for _, day := range []int{15, 105, 196, 288} {
			assert.InDelta(t, 5.0, IrradianceOnTilt(5, 2, 0, 180, 45, day), 1e-9, "day %d", day)
		}
	})

	t.Run("Winter Tilt Gain", func(t *testing.T) {
		// a steep equator facing panel collects more than a flat one in winter
		flat := IrradianceOnTilt(1.5, 0.7, 0, 180, 45, 15)
		tilted := IrradianceOnTilt(1.5, 0.7, 45, 180, 45, 15)
		assert.Greater(t, tilted, flat)
	})

	t.Run("Components", func(t *testing.T) {
		ghi, diffuse, tilt := 4.0, 1.5, 60.0
		decl := Declination(196)
		rb := BeamRatio(tilt, 180, 30, decl)
		c := math.Cos(tilt * math.Pi / 180)
		want := (ghi-diffuse)*rb + diffuse*(1+c)/2 + ghi*GroundAlbedo*(1-c)/2
		assert.InDelta(t, want, IrradianceOnTilt(ghi, diffuse, tilt, 180, 30, 196), 1e-9)
	})

	t.Run("Polar Night Only Diffuse And Ground", func(t *testing.T) {
		ghi, diffuse, tilt := 0.3, 0.3, 60.0
		c := math.Cos(tilt * math.Pi / 180)
		want := diffuse*(1+c)/2 + ghi*GroundAlbedo*(1-c)/2
		assert.InDelta(t, want, IrradianceOnTilt(ghi, diffuse, tilt, 180, 75, 355), 1e-9)
	})

	t.Run("Diffuse Above GHI", func(t *testing.T) {
		// inconsistent measurements never produce a negative beam term
		got := IrradianceOnTilt(1, 2, 0, 180, 45, 100)
		assert.InDelta(t, 2.0, got, 1e-9)
	})
}

func TestBeamRatio(t *testing.T) {
	t.Run("Flat Is One", func(t *testing.T) {
		assert.InDelta(t, 1.0, BeamRatio(0, 180, 45, 10), 1e-9)
	})

	t.Run("Sun Below Horizon", func(t *testing.T) {
		assert.Equal(t, 0.0, BeamRatio(30, 180, 70, -23.45))
	})

	t.Run("Sun Behind Panel", func(t *testing.T) {
		assert.Equal(t, 0.0, BeamRatio(90, 180, 10, 23.45))
	})

	t.Run("Southern Hemisphere Mirrors Northern", func(t *testing.T) {
		assert.InDelta(t, BeamRatio(30, 180, 45, 20), BeamRatio(30, 0, -45, -20), 1e-9)
	})

	t.Run("East Facing Panel Gets No Equator Tilt", func(t *testing.T) {
		assert.InDelta(t, 1.0, BeamRatio(30, 90, 45, 0), 1e-9)
	})

	t.Run("Never Negative Or NaN", func(t *testing.T) {
		for lat := -90.0; lat <= 90.0; lat += 5 {
			for tilt := 0.0; tilt <= 90.0; tilt += 15 {
				for az := 0.0; az < 360.0; az += 45 {
					for day := 1; day <= 365; day += 30 {
						rb := BeamRatio(tilt, az, lat, Declination(day))
						assert.False(t, math.IsNaN(rb))
						assert.GreaterOrEqual(t, rb, 0.0)
					}
				}
			}
		}
	})
}
