package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/buoybudget/buoybudget/pkg/budget"
	"github.com/buoybudget/buoybudget/pkg/storage"
	"github.com/buoybudget/buoybudget/pkg/storage/storagemock"
	"github.com/buoybudget/buoybudget/pkg/types"
)

func TestHandleBudget(t *testing.T) {
	handler := newTestServer(&storagemock.MockDatabase{}, nil).setupHandler()

	post := func(t *testing.T, url string, p any) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(mustJSON(t, p)))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	t.Run("Balanced Project", func(t *testing.T) {
		w := post(t, "/api/budget", testProject())
		require.Equal(t, http.StatusOK, w.Code)

		var res BudgetResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		require.Len(t, res.Budget.MonthlyData, 12)
		assert.True(t, res.Budget.Summary.SystemAdequate)
		assert.InDelta(t, 2.0, res.Budget.Summary.AutonomyDays, 1e-9)
		require.Len(t, res.SOC.Samples, budget.DaysPerYear)
		assert.Equal(t, 100.0, res.SOC.MinSOC)
		assert.False(t, res.SOC.CarryDeficit)
	})

	t.Run("Carry Deficit", func(t *testing.T) {
		w := post(t, "/api/budget?carryDeficit=true", testProject())
		require.Equal(t, http.StatusOK, w.Code)

		var res BudgetResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		assert.True(t, res.SOC.CarryDeficit)
	})

	t.Run("Invalid Carry Deficit", func(t *testing.T) {
		w := post(t, "/api/budget?carryDeficit=maybe", testProject())
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("No Loads", func(t *testing.T) {
		p := testProject()
		p.Loads = nil
		w := post(t, "/api/budget", p)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), budget.ErrNoLoads.Error())
	})

	t.Run("No Generation", func(t *testing.T) {
		p := testProject()
		p.OtherSources = nil
		w := post(t, "/api/budget", p)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), budget.ErrNoGeneration.Error())
	})

	t.Run("Latitude Out Of Range", func(t *testing.T) {
		p := testProject()
		p.SolarPanels = []types.SolarPanel{{ID: "s1", RatedPower: 100, Quantity: 1, Tilt: 30, Azimuth: 180}}
		p.SolarData = &types.SolarData{
			Latitude:       120,
			MonthlyGHI:     make([]float64, 12),
			MonthlyDiffuse: make([]float64, 12),
		}
		w := post(t, "/api/budget", p)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "latitude")
	})

	t.Run("Depth Of Discharge Above 100", func(t *testing.T) {
		p := testProject()
		p.Batteries[0].DepthOfDischarge = 150
		w := post(t, "/api/budget", p)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "depthOfDischarge")
	})

	t.Run("Loads Drawing Nothing", func(t *testing.T) {
		p := testProject()
		p.Loads[0].PowerOn = 0
		w := post(t, "/api/budget", p)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"autonomyDays":null`)

		var res BudgetResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		assert.True(t, math.IsInf(res.Budget.Summary.AutonomyDays, 1))
	})

	t.Run("Short Measurement Series", func(t *testing.T) {
		p := testProject()
		p.SolarData = &types.SolarData{Latitude: 10, MonthlyGHI: []float64{1, 2}, MonthlyDiffuse: []float64{1, 2}}
		w := post(t, "/api/budget", p)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "12 monthly values")
	})
}

func TestHandleProjectBudget(t *testing.T) {
	t.Run("Stored Project", func(t *testing.T) {
		db := &storagemock.MockDatabase{}
		db.On("GetProject", mock.Anything, "p1").Return(testProject(), nil)
		handler := newTestServer(db, nil).setupHandler()

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/projects/p1/budget?carryDeficit=true", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var res BudgetResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		assert.InDelta(t, 300.0*365, res.Budget.Summary.AnnualConsumption, 1e-6)
		assert.True(t, res.SOC.CarryDeficit)
		db.AssertExpectations(t)
	})

	t.Run("Server Default Carry Deficit", func(t *testing.T) {
		db := &storagemock.MockDatabase{}
		db.On("GetProject", mock.Anything, "p1").Return(testProject(), nil)
		srv := newTestServer(db, nil)
		srv.carryDeficit = true
		handler := srv.setupHandler()

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/projects/p1/budget", nil))
		require.Equal(t, http.StatusOK, w.Code)
		var res BudgetResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		assert.True(t, res.SOC.CarryDeficit)

		w = httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/projects/p1/budget?carryDeficit=false", nil))
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		assert.False(t, res.SOC.CarryDeficit)
	})

	t.Run("Not Found", func(t *testing.T) {
		db := &storagemock.MockDatabase{}
		db.On("GetProject", mock.Anything, "missing").Return(types.ProjectConfig{}, storage.ErrProjectNotFound)
		handler := newTestServer(db, nil).setupHandler()

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/projects/missing/budget", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Stored Project Without Loads", func(t *testing.T) {
		p := testProject()
		p.Loads = nil
		db := &storagemock.MockDatabase{}
		db.On("GetProject", mock.Anything, "p1").Return(p, nil)
		handler := newTestServer(db, nil).setupHandler()

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/projects/p1/budget", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Storage Error", func(t *testing.T) {
		db := &storagemock.MockDatabase{}
		db.On("GetProject", mock.Anything, "p1").Return(types.ProjectConfig{}, errors.New("deadline exceeded"))
		handler := newTestServer(db, nil).setupHandler()

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/projects/p1/budget", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
