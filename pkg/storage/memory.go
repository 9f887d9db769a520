package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/buoybudget/buoybudget/pkg/types"
)

type memoryProject struct {
	json      []byte
	name      string
	version   int
	updatedAt time.Time
}

// Memory implements the Database interface in process memory. Projects are
// kept JSON encoded, like in Firestore, so callers never share state with
// the store.
type Memory struct {
	mu       sync.Mutex
	projects map[string]memoryProject
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		projects: make(map[string]memoryProject),
	}
}

// GetProject implements Database.
func (m *Memory) GetProject(ctx context.Context, id string) (types.ProjectConfig, error) {
	if err := validateID(id); err != nil {
		return types.ProjectConfig{}, err
	}
	m.mu.Lock()
	stored, ok := m.projects[id]
	m.mu.Unlock()
	if !ok {
		return types.ProjectConfig{}, ErrProjectNotFound
	}

	var p types.ProjectConfig
	if err := json.Unmarshal(stored.json, &p); err != nil {
		return types.ProjectConfig{}, fmt.Errorf("failed to unmarshal project json (id=%s): %w", id, err)
	}
	return p, nil
}

// SaveProject implements Database.
func (m *Memory) SaveProject(ctx context.Context, id string, project types.ProjectConfig) error {
	if err := validateID(id); err != nil {
		return err
	}
	b, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[id] = memoryProject{
		json:      b,
		name:      project.Name,
		version:   project.Version,
		updatedAt: time.Now().UTC(),
	}
	return nil
}

// ListProjects implements Database.
func (m *Memory) ListProjects(ctx context.Context) ([]ProjectSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	projects := make([]ProjectSummary, 0, len(m.projects))
	for id, p := range m.projects {
		projects = append(projects, ProjectSummary{
			ID:        id,
			Name:      p.name,
			Version:   p.version,
			UpdatedAt: p.updatedAt,
		})
	}
	slices.SortFunc(projects, func(a, b ProjectSummary) int {
		return strings.Compare(a.ID, b.ID)
	})
	return projects, nil
}

// DeleteProject implements Database.
func (m *Memory) DeleteProject(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return ErrProjectNotFound
	}
	delete(m.projects, id)
	return nil
}

// Close implements Database.
func (m *Memory) Close() error {
	return nil
}
