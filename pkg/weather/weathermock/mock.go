package weathermock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/buoybudget/buoybudget/pkg/types"
	"github.com/buoybudget/buoybudget/pkg/weather"
)

type MockProvider struct {
	mock.Mock
}

var _ weather.Provider = (*MockProvider)(nil)

func (m *MockProvider) GetSolarData(ctx context.Context, lat, lon float64) (types.SolarData, error) {
	args := m.Called(ctx, lat, lon)
	return args.Get(0).(types.SolarData), args.Error(1)
}

func (m *MockProvider) GetWindData(ctx context.Context, lat, lon float64) (types.WindData, error) {
	args := m.Called(ctx, lat, lon)
	return args.Get(0).(types.WindData), args.Error(1)
}
