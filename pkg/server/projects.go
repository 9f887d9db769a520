package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/buoybudget/buoybudget/pkg/log"
	"github.com/buoybudget/buoybudget/pkg/storage"
	"github.com/buoybudget/buoybudget/pkg/types"
)

// getProjectWithMigration loads the project and upgrades it to the current
// version, saving the upgraded copy on a best effort basis.
func (s *Server) getProjectWithMigration(ctx context.Context, id string) (types.ProjectConfig, error) {
	p, err := s.storage.GetProject(ctx, id)
	if err != nil {
		return types.ProjectConfig{}, err
	}
	if p.Version >= types.CurrentProjectVersion {
		return p, nil
	}

	log.Ctx(ctx).InfoContext(ctx, "migrating project", slog.Int("oldVersion", p.Version), slog.Int("newVersion", types.CurrentProjectVersion))
	migrated, changed, err := types.MigrateProject(p, p.Version)
	if err != nil {
		// Log error but return project as is (best effort)
		log.Ctx(ctx).ErrorContext(ctx, "failed to migrate project", slog.Int("currentVersion", p.Version), slog.Any("error", err))
		return p, nil
	}
	if changed {
		if err := s.storage.SaveProject(ctx, id, migrated); err != nil {
			// the migrated project still serves this request
			log.Ctx(ctx).ErrorContext(ctx, "failed to save migrated project", slog.Any("error", err))
		} else {
			log.Ctx(ctx).InfoContext(ctx, "saved migrated project", slog.Int("oldVersion", p.Version), slog.Int("newVersion", types.CurrentProjectVersion))
		}
	}
	return migrated, nil
}

// decodeProject reads a project from the request body, upgrades it to the
// current version and validates it.
func decodeProject(w http.ResponseWriter, r *http.Request) (types.ProjectConfig, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var p types.ProjectConfig
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return types.ProjectConfig{}, &invalidProjectError{err: fmt.Errorf("failed to decode project: %w", err)}
	}
	p, _, err := types.MigrateProject(p, p.Version)
	if err != nil {
		return types.ProjectConfig{}, &invalidProjectError{err: err}
	}
	if err := types.ValidateProject(p); err != nil {
		return types.ProjectConfig{}, &invalidProjectError{err: err}
	}
	return p, nil
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projects, err := s.storage.ListProjects(ctx)
	if err != nil {
		writeError(ctx, w, "failed to list projects", err)
		return
	}
	if projects == nil {
		// encode an empty array rather than null
		projects = []storage.ProjectSummary{}
	}
	writeJSON(w, projects)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	p, err := s.getProjectWithMigration(ctx, id)
	if err != nil {
		writeError(ctx, w, "failed to get project", err)
		return
	}
	writeJSON(w, p)
}

func (s *Server) handlePutProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	p, err := decodeProject(w, r)
	if err != nil {
		writeError(ctx, w, "invalid project", err)
		return
	}
	if err := s.storage.SaveProject(ctx, id, p); err != nil {
		writeError(ctx, w, "failed to save project", err)
		return
	}
	log.Ctx(ctx).InfoContext(ctx, "saved project", slog.String("projectID", id), slog.String("email", s.getEmail(r)))
	writeJSON(w, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if err := s.storage.DeleteProject(ctx, id); err != nil {
		writeError(ctx, w, "failed to delete project", err)
		return
	}
	log.Ctx(ctx).InfoContext(ctx, "deleted project", slog.String("projectID", id), slog.String("email", s.getEmail(r)))
	w.WriteHeader(http.StatusNoContent)
}
