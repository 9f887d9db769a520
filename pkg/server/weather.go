package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/buoybudget/buoybudget/pkg/log"
	"github.com/buoybudget/buoybudget/pkg/solar"
)

// WeatherRequest selects the site and the data to fetch for a project.
type WeatherRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	// Provider is the weather provider name. Empty uses the default.
	Provider string `json:"provider"`
	// SkipSolar and SkipWind leave the corresponding data untouched.
	SkipSolar bool `json:"skipSolar"`
	SkipWind  bool `json:"skipWind"`
}

func (s *Server) handleFetchWeather(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("projectID", id)))

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req WeatherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := solar.CheckLatitude(req.Latitude); err != nil {
		writeError(ctx, w, "invalid location", err)
		return
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		writeError(ctx, w, "invalid location", &solar.NumericDomainError{Field: "longitude", Value: req.Longitude, Min: -180, Max: 180})
		return
	}

	provider, err := s.weather.Provider(req.Provider)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := s.getProjectWithMigration(ctx, id)
	if err != nil {
		writeError(ctx, w, "failed to get project", err)
		return
	}

	if !req.SkipSolar {
		sd, err := provider.GetSolarData(ctx, req.Latitude, req.Longitude)
		if err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to fetch solar data", slog.Any("error", err))
			writeJSONError(w, fmt.Sprintf("failed to fetch solar data: %v", err), http.StatusBadGateway)
			return
		}
		p.SolarData = &sd
	}
	if !req.SkipWind {
		wd, err := provider.GetWindData(ctx, req.Latitude, req.Longitude)
		if err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to fetch wind data", slog.Any("error", err))
			writeJSONError(w, fmt.Sprintf("failed to fetch wind data: %v", err), http.StatusBadGateway)
			return
		}
		p.WindData = &wd
	}

	if err := s.storage.SaveProject(ctx, id, p); err != nil {
		writeError(ctx, w, "failed to save project", err)
		return
	}
	log.Ctx(ctx).InfoContext(
		ctx,
		"updated project weather",
		slog.Bool("solar", !req.SkipSolar),
		slog.Bool("wind", !req.SkipWind),
		slog.String("email", s.getEmail(r)),
	)
	writeJSON(w, p)
}
