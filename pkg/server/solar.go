package server

import (
	"net/http"
	"strconv"

	"github.com/buoybudget/buoybudget/pkg/solar"
)

// SolarPositionResponse is the sun position and, when a panel orientation
// was given, the incidence angle on the panel.
type SolarPositionResponse struct {
	solar.Position
	DaylightHours  float64  `json:"daylightHours"`
	IncidenceAngle *float64 `json:"incidenceAngle,omitempty"`
}

func queryFloat(r *http.Request, name string, def float64) (float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return strconv.ParseFloat(v, 64)
}

func (s *Server) handleSolarPosition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	if q.Get("lat") == "" || q.Get("day") == "" {
		writeJSONError(w, "lat and day are required", http.StatusBadRequest)
		return
	}
	lat, err := queryFloat(r, "lat", 0)
	if err != nil {
		writeJSONError(w, "invalid lat", http.StatusBadRequest)
		return
	}
	if err := solar.CheckLatitude(lat); err != nil {
		writeError(ctx, w, "invalid lat", err)
		return
	}
	day, err := strconv.Atoi(q.Get("day"))
	if err != nil || day < 1 || day > 365 {
		writeJSONError(w, "day must be between 1 and 365", http.StatusBadRequest)
		return
	}
	hour, err := queryFloat(r, "hour", 12)
	if err != nil || hour < 0 || hour > 24 {
		writeJSONError(w, "hour must be between 0 and 24", http.StatusBadRequest)
		return
	}

	pos := solar.SunPosition(lat, day, hour)
	res := SolarPositionResponse{
		Position:      pos,
		DaylightHours: solar.DaylightHours(lat, pos.Declination),
	}
	if q.Has("tilt") {
		tilt, err := queryFloat(r, "tilt", 0)
		if err != nil {
			writeJSONError(w, "invalid tilt", http.StatusBadRequest)
			return
		}
		if err := solar.CheckTilt(tilt); err != nil {
			writeError(ctx, w, "invalid tilt", err)
			return
		}
		az, err := queryFloat(r, "azimuth", 180)
		if err != nil {
			writeJSONError(w, "invalid azimuth", http.StatusBadRequest)
			return
		}
		inc := solar.IncidenceAngle(tilt, az, pos.Altitude, pos.Azimuth)
		res.IncidenceAngle = &inc
	}
	writeJSON(w, res)
}
