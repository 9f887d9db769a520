package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/levenlabs/go-lflag"

	"github.com/buoybudget/buoybudget/pkg/types"
)

var (
	ErrProjectNotFound = errors.New("project not found")
)

// ProjectSummary is the listing entry of a stored project.
type ProjectSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Database defines the interface for persisting projects.
type Database interface {
	// GetProject returns the stored project exactly as it was saved. It
	// returns ErrProjectNotFound if there is no project with the id.
	GetProject(ctx context.Context, id string) (types.ProjectConfig, error)
	// SaveProject creates or replaces the project with the id.
	SaveProject(ctx context.Context, id string, project types.ProjectConfig) error
	// ListProjects returns every stored project ordered by id.
	ListProjects(ctx context.Context) ([]ProjectSummary, error)
	// DeleteProject removes the project. It returns ErrProjectNotFound if
	// there is no project with the id.
	DeleteProject(ctx context.Context, id string) error

	// Lifecycle
	Close() error
}

// Configured sets up the Storage provider based on flags.
func Configured() Database {
	provider := lflag.String("storage-provider", "firestore", "Storage provider to use (available: firestore, memory)")

	var p struct{ Database }

	fs := configuredFirestore()

	lflag.Do(func() {
		switch *provider {
		case "firestore":
			if err := fs.Validate(); err != nil {
				panic(fmt.Sprintf("firestore validation failed: %v", err))
			}
			p.Database = fs
			if err := fs.Init(context.Background()); err != nil {
				panic(fmt.Sprintf("firestore init failed: %v", err))
			}
		case "memory":
			p.Database = NewMemory()
		default:
			panic(fmt.Sprintf("unknown storage provider: %s", *provider))
		}
	})

	return &p
}

func validateID(id string) error {
	if id == "" {
		return fmt.Errorf("project id cannot be empty")
	}
	return nil
}
