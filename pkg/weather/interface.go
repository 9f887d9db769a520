package weather

import (
	"context"

	"github.com/buoybudget/buoybudget/pkg/types"
)

// Provider defines the interface for fetching site climatology.
type Provider interface {
	// GetSolarData returns monthly irradiance and temperature for the
	// location.
	GetSolarData(ctx context.Context, lat, lon float64) (types.SolarData, error)

	// GetWindData returns monthly wind speed statistics for the location.
	GetWindData(ctx context.Context, lat, lon float64) (types.WindData, error)
}
