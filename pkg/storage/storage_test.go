package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buoybudget/buoybudget/pkg/types"
)

func sampleProject(name string) types.ProjectConfig {
	return types.ProjectConfig{
		Version: types.CurrentProjectVersion,
		Name:    name,
		Loads: []types.Load{
			{ID: "l1", Name: "Modem", PowerOn: 20, PowerIdle: 5, DutyCycle: 50},
		},
		Batteries: []types.Battery{
			{ID: "b1", Type: types.BatteryTypeLiFePO4, Voltage: 12.8, CapacityAh: 100, Quantity: 1, DepthOfDischarge: 90},
		},
		SolarPanels: []types.SolarPanel{
			{ID: "s1", RatedPower: 100, Quantity: 1, Tilt: 30, Azimuth: 180},
		},
		SolarData: &types.SolarData{
			Latitude:       45,
			Longitude:      -63,
			MonthlyGHI:     []float64{1.2, 2.0, 3.1, 4.4, 5.5, 6.0, 5.8, 4.9, 3.6, 2.3, 1.4, 1.0},
			MonthlyDiffuse: []float64{0.6, 0.9, 1.3, 1.7, 2.0, 2.1, 2.1, 1.8, 1.4, 1.0, 0.7, 0.5},
			FetchedAt:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			Source:         "manual",
		},
	}
}

// testDatabase exercises the Database contract against an empty store.
func testDatabase(t *testing.T, db Database) {
	ctx := context.Background()

	t.Run("Get Missing", func(t *testing.T) {
		_, err := db.GetProject(ctx, "missing")
		assert.ErrorIs(t, err, ErrProjectNotFound)
	})

	t.Run("Empty ID", func(t *testing.T) {
		_, err := db.GetProject(ctx, "")
		assert.ErrorContains(t, err, "project id cannot be empty")
		assert.Error(t, db.SaveProject(ctx, "", sampleProject("x")))
		assert.Error(t, db.DeleteProject(ctx, ""))
	})

	t.Run("Save And Get", func(t *testing.T) {
		p := sampleProject("north buoy")
		require.NoError(t, db.SaveProject(ctx, "north", p))

		got, err := db.GetProject(ctx, "north")
		require.NoError(t, err)
		assert.Equal(t, p, got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		p := sampleProject("south buoy")
		require.NoError(t, db.SaveProject(ctx, "south", p))
		p.Name = "south buoy v2"
		p.Loads[0].DutyCycle = 10
		require.NoError(t, db.SaveProject(ctx, "south", p))

		got, err := db.GetProject(ctx, "south")
		require.NoError(t, err)
		assert.Equal(t, "south buoy v2", got.Name)
		assert.Equal(t, 10.0, got.Loads[0].DutyCycle)
	})

	t.Run("List", func(t *testing.T) {
		projects, err := db.ListProjects(ctx)
		require.NoError(t, err)
		require.Len(t, projects, 2)
		assert.Equal(t, "north", projects[0].ID)
		assert.Equal(t, "north buoy", projects[0].Name)
		assert.Equal(t, types.CurrentProjectVersion, projects[0].Version)
		assert.False(t, projects[0].UpdatedAt.IsZero())
		assert.Equal(t, "south", projects[1].ID)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, db.DeleteProject(ctx, "north"))
		_, err := db.GetProject(ctx, "north")
		assert.ErrorIs(t, err, ErrProjectNotFound)
		assert.ErrorIs(t, db.DeleteProject(ctx, "north"), ErrProjectNotFound)

		projects, err := db.ListProjects(ctx)
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, "south", projects[0].ID)
	})
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	testDatabase(t, m)

	t.Run("Stored Copy Is Isolated", func(t *testing.T) {
		ctx := context.Background()
		p := sampleProject("isolated")
		require.NoError(t, m.SaveProject(ctx, "iso", p))
		p.Loads[0].Name = "changed"

		got, err := m.GetProject(ctx, "iso")
		require.NoError(t, err)
		assert.Equal(t, "Modem", got.Loads[0].Name)
	})
}
