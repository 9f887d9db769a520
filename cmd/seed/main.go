package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/levenlabs/go-lflag"

	"github.com/buoybudget/buoybudget/pkg/budget"
	"github.com/buoybudget/buoybudget/pkg/log"
	"github.com/buoybudget/buoybudget/pkg/storage"
	"github.com/buoybudget/buoybudget/pkg/types"
)

func main() {
	os.Setenv("FIRESTORE_EMULATOR_HOST", "127.0.0.1:8087")
	s := storage.Configured()
	lflag.Configure()

	ctx := context.Background()

	log.Ctx(ctx).InfoContext(ctx, "seeding sample projects")

	err := seed(ctx, s, time.Now().UTC())
	s.Close()
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to seed projects", slog.Any("error", err))
		os.Exit(1)
	}
}

func seed(ctx context.Context, s storage.Database, now time.Time) error {
	for id, p := range sampleProjects(now) {
		if _, err := budget.NewCalculator().CalculateBudget(ctx, p); err != nil {
			return fmt.Errorf("sample project %s: %w", id, err)
		}
		if err := s.SaveProject(ctx, id, p); err != nil {
			return fmt.Errorf("failed to save project %s: %w", id, err)
		}
		log.Ctx(ctx).InfoContext(ctx, "saved project", slog.String("projectID", id), slog.String("name", p.Name))
	}
	return nil
}

// sampleProjects returns a mid-latitude solar buoy and a high-latitude
// hybrid buoy with hand-entered climatology.
func sampleProjects(now time.Time) map[string]types.ProjectConfig {
	wind := func(avg [12]float64) *types.WindData {
		monthly := make([]types.MonthlyWind, 12)
		for i, v := range avg {
			monthly[i] = types.MonthlyWind{
				Month:        i + 1,
				AvgWindSpeed: v,
				MaxWindSpeed: v * 2.5,
				MinWindSpeed: v * 0.1,
			}
		}
		return &types.WindData{
			Location:    types.WindLocation{Name: "seed"},
			MonthlyData: monthly,
			FetchedAt:   now,
			Source:      "seed",
		}
	}

	return map[string]types.ProjectConfig{
		"gulf-of-maine": {
			Version: types.CurrentProjectVersion,
			Name:    "Gulf of Maine mooring",
			Loads: []types.Load{
				{ID: types.NewID(), Name: "CTD", PowerOn: 6, PowerIdle: 0.2, DutyCycle: 10},
				{ID: types.NewID(), Name: "Iridium modem", PowerOn: 12, PowerIdle: 0.5, DutyCycle: 5},
				{ID: types.NewID(), Name: "Navigation light", PowerOn: 3, DutyCycle: 50},
			},
			Batteries: []types.Battery{
				{ID: types.NewID(), Name: "House bank", Type: types.BatteryTypeAGM, Voltage: 12, CapacityAh: 200, Quantity: 2, DepthOfDischarge: 50},
			},
			SolarPanels: []types.SolarPanel{
				{ID: types.NewID(), Name: "South face", RatedPower: 50, Quantity: 2, Tilt: 60, Azimuth: 180},
				{ID: types.NewID(), Name: "West face", RatedPower: 50, Quantity: 1, Tilt: 60, Azimuth: 270},
			},
			SolarData: &types.SolarData{
				Latitude:           43.5,
				Longitude:          -68.5,
				MonthlyGHI:         []float64{1.6, 2.5, 3.7, 4.7, 5.5, 5.9, 5.9, 5.2, 4.1, 2.8, 1.7, 1.3},
				MonthlyDiffuse:     []float64{0.7, 1.0, 1.4, 1.8, 2.2, 2.4, 2.3, 2.0, 1.6, 1.1, 0.8, 0.6},
				MonthlyTemperature: []float64{-3, -2, 1, 5, 9, 14, 18, 19, 16, 11, 6, 1},
				FetchedAt:          now,
				Source:             "seed",
			},
		},
		"labrador-sea": {
			Version: types.CurrentProjectVersion,
			Name:    "Labrador Sea hybrid",
			Loads: []types.Load{
				{ID: types.NewID(), Name: "ADCP", PowerOn: 10, PowerIdle: 2, DutyCycle: 25},
				{ID: types.NewID(), Name: "Satellite modem", PowerOn: 20, PowerIdle: 5, DutyCycle: 50},
			},
			Batteries: []types.Battery{
				{ID: types.NewID(), Name: "Lithium bank", Type: types.BatteryTypeLiFePO4, Voltage: 12.8, CapacityAh: 300, Quantity: 2, DepthOfDischarge: 90},
			},
			SolarPanels: []types.SolarPanel{
				{ID: types.NewID(), Name: "Deck", RatedPower: 100, Quantity: 2, Tilt: 45, Azimuth: 180},
			},
			WindGenerators: []types.WindGenerator{
				{ID: types.NewID(), Name: "Mast turbine", RatedPower: 400, CutInSpeed: 3, RatedSpeed: 12.5, CutOutSpeed: 25, Quantity: 1},
			},
			OtherSources: []types.OtherSource{
				{ID: types.NewID(), Name: "Methanol fuel cell", Power: 25, HoursPerDay: 4},
			},
			SolarData: &types.SolarData{
				Latitude:       57,
				Longitude:      -52,
				MonthlyGHI:     []float64{0.4, 1.1, 2.3, 3.8, 4.6, 5.0, 4.7, 3.7, 2.4, 1.2, 0.5, 0.3},
				MonthlyDiffuse: []float64{0.3, 0.7, 1.3, 2.0, 2.5, 2.7, 2.6, 2.1, 1.4, 0.8, 0.4, 0.2},
				FetchedAt:      now,
				Source:         "seed",
			},
			WindData: wind([12]float64{11.5, 11.2, 10.1, 8.6, 7.2, 6.5, 6.1, 6.6, 8.0, 9.6, 10.7, 11.4}),
		},
	}
}
