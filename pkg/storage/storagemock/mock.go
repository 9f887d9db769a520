package storagemock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/buoybudget/buoybudget/pkg/storage"
	"github.com/buoybudget/buoybudget/pkg/types"
)

type MockDatabase struct {
	mock.Mock
}

var _ storage.Database = (*MockDatabase)(nil)

func (m *MockDatabase) GetProject(ctx context.Context, id string) (types.ProjectConfig, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.ProjectConfig), args.Error(1)
}

func (m *MockDatabase) SaveProject(ctx context.Context, id string, project types.ProjectConfig) error {
	args := m.Called(ctx, id, project)
	return args.Error(0)
}

func (m *MockDatabase) ListProjects(ctx context.Context) ([]storage.ProjectSummary, error) {
	args := m.Called(ctx)
	// allow returning a nil slice without a typed nil
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.ProjectSummary), args.Error(1)
}

func (m *MockDatabase) DeleteProject(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDatabase) Close() error {
	args := m.Called()
	return args.Error(0)
}
