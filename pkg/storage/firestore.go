package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/levenlabs/go-lflag"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/buoybudget/buoybudget/pkg/log"
	"github.com/buoybudget/buoybudget/pkg/types"
)

const projectsCollection = "projects"

// FirestoreProvider implements the Database interface using Google Cloud
// Firestore. Each project is a document in the "projects" collection that
// holds the project as a JSON string alongside a few indexed fields.
type FirestoreProvider struct {
	client    *firestore.Client
	projectID string
	database  string
}

// configuredFirestore sets up the Firestore provider.
// It registers flags for configuration.
func configuredFirestore() *FirestoreProvider {
	projectID := lflag.String("firestore-project-id", "", "Google Cloud Project ID for Firestore")
	database := lflag.String("firestore-database", "", "Google Cloud Firestore Database")
	emulator := lflag.String("firestore-emulator", "", "Use Firestore emulator")

	f := &FirestoreProvider{}

	lflag.Do(func() {
		f.projectID = *projectID
		f.database = *database

		// set this because that's how firestore client expects it
		if *emulator != "" {
			os.Setenv("FIRESTORE_EMULATOR_HOST", *emulator)
		}
	})

	return f
}

// Validate checks if the provider is properly configured.
func (f *FirestoreProvider) Validate() error {
	// an empty project ID is detected from the environment
	return nil
}

// Init initializes the Firestore client.
// This must be called before using the provider methods.
func (f *FirestoreProvider) Init(ctx context.Context) error {
	projectID := f.projectID
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	database := f.database
	if database == "" {
		database = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, database)
	if err != nil {
		return fmt.Errorf("failed to create firestore client (project=%s, database=%s): %w", projectID, database, err)
	}
	f.client = client
	return nil
}

// Close closes the Firestore client connection.
func (f *FirestoreProvider) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func (f *FirestoreProvider) projectDoc(id string) (*firestore.DocumentRef, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return f.client.Collection(projectsCollection).Doc(id), nil
}

// decodeProject reads the "json" field of a project document.
func decodeProject(ctx context.Context, doc *firestore.DocumentSnapshot) (types.ProjectConfig, error) {
	val, err := doc.DataAt("json")
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "project doc missing json", slog.String("projectID", doc.Ref.ID))
		return types.ProjectConfig{}, fmt.Errorf("project document %s missing 'json' field: %w", doc.Ref.ID, err)
	}

	jsonStr, ok := val.(string)
	if !ok {
		log.Ctx(ctx).WarnContext(ctx, "project doc json not string", slog.String("projectID", doc.Ref.ID))
		return types.ProjectConfig{}, fmt.Errorf("project document %s 'json' field is not a string", doc.Ref.ID)
	}

	var p types.ProjectConfig
	if err := json.Unmarshal([]byte(jsonStr), &p); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to unmarshal project json", slog.String("projectID", doc.Ref.ID), slog.Any("err", err))
		return types.ProjectConfig{}, fmt.Errorf("failed to unmarshal project json (id=%s): %w", doc.Ref.ID, err)
	}
	return p, nil
}

// GetProject retrieves a project from the "projects" collection.
func (f *FirestoreProvider) GetProject(ctx context.Context, id string) (types.ProjectConfig, error) {
	ref, err := f.projectDoc(id)
	if err != nil {
		return types.ProjectConfig{}, err
	}
	doc, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.ProjectConfig{}, ErrProjectNotFound
		}
		return types.ProjectConfig{}, fmt.Errorf("failed to fetch project %s: %w", id, err)
	}
	return decodeProject(ctx, doc)
}

// SaveProject stores the project as a JSON string for portability.
func (f *FirestoreProvider) SaveProject(ctx context.Context, id string, project types.ProjectConfig) error {
	jsonBytes, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	ref, err := f.projectDoc(id)
	if err != nil {
		return err
	}
	_, err = ref.Set(ctx, map[string]interface{}{
		"json":      string(jsonBytes),
		"name":      project.Name,
		"version":   project.Version,
		"updatedAt": time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to save project %s: %w", id, err)
	}
	return nil
}

// ListProjects returns a summary of every project ordered by document ID.
// Only the indexed fields are read, not the project JSON.
func (f *FirestoreProvider) ListProjects(ctx context.Context) ([]ProjectSummary, error) {
	iter := f.client.Collection(projectsCollection).
		Select("name", "version", "updatedAt").
		OrderBy(firestore.DocumentID, firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var projects []ProjectSummary
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating projects: %w", err)
		}

		s := ProjectSummary{ID: doc.Ref.ID}
		if v, err := doc.DataAt("name"); err == nil {
			s.Name, _ = v.(string)
		}
		if v, err := doc.DataAt("version"); err == nil {
			if vInt, ok := v.(int64); ok {
				s.Version = int(vInt)
			}
		}
		if v, err := doc.DataAt("updatedAt"); err == nil {
			s.UpdatedAt, _ = v.(time.Time)
		}
		projects = append(projects, s)
	}
	return projects, nil
}

// DeleteProject removes a project document.
func (f *FirestoreProvider) DeleteProject(ctx context.Context, id string) error {
	ref, err := f.projectDoc(id)
	if err != nil {
		return err
	}
	_, err = ref.Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project %s: %w", id, err)
	}
	return nil
}
