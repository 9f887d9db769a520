package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/levenlabs/go-lflag"

	"github.com/buoybudget/buoybudget/pkg/budget"
	"github.com/buoybudget/buoybudget/pkg/log"
	"github.com/buoybudget/buoybudget/pkg/solar"
	"github.com/buoybudget/buoybudget/pkg/storage"
	"github.com/buoybudget/buoybudget/pkg/weather"
)

// maxBodyBytes limits request bodies. A project with a year of measurements
// is a few KB.
const maxBodyBytes = 1 << 20

// tokenVerifier is a function that validates a Google ID Token.
type tokenVerifier func(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)

// Server handles the HTTP API for computing buoy energy budgets and
// managing stored projects.
type Server struct {
	calculator *budget.Calculator
	weather    *weather.Map
	storage    storage.Database

	listenAddr string
	httpServer *http.Server
	serverName string

	adminEmails  []string
	oidcAudience string
	oidcVerifier tokenVerifier
	bypassAuth   bool
	carryDeficit bool
}

// Configured initializes the Server with dependencies.
// It uses lflag to register command-line flags for configuration.
func Configured(w *weather.Map, s storage.Database) *Server {
	srv := &Server{
		calculator: budget.NewCalculator(),
		weather:    w,
		storage:    s,
		serverName: "buoybudget",
	}
	revision := os.Getenv("K_REVISION")
	if revision != "" {
		srv.serverName = revision
	}

	// get the port from PORT when running in cloud run
	port := os.Getenv("PORT")
	if port == "" {
		// otherwise default to 8080
		port = "8080"
	}

	listenAddr := lflag.String("http-listen", ":"+port, "HTTP server listen address")
	adminEmails := lflag.String("admin-emails", "", "comma-delimited list of email addresses allowed to modify projects")
	oidcAudience := lflag.String("oidc-audience", "", "audience to validate Google ID tokens against; empty disables authentication")
	carryDeficit := lflag.Bool("budget-carry-deficit", false, "carry unmet energy between days in the state of charge simulation by default")

	lflag.Do(func() {
		srv.listenAddr = *listenAddr
		if *adminEmails != "" {
			srv.adminEmails = strings.Split(*adminEmails, ",")
			for i, email := range srv.adminEmails {
				srv.adminEmails[i] = strings.TrimSpace(email)
			}
		}
		if *oidcAudience != "" {
			provider, err := oidc.NewProvider(context.Background(), "https://accounts.google.com")
			if err != nil {
				log.Ctx(context.Background()).Error("failed to initialize Google OIDC provider", slog.Any("error", err))
				os.Exit(1)
			}
			srv.oidcAudience = *oidcAudience
			srv.oidcVerifier = provider.Verifier(&oidc.Config{ClientID: *oidcAudience}).Verify
			if len(srv.adminEmails) == 0 {
				log.Ctx(context.Background()).Warn("no admin-emails configured, all project changes will be rejected")
			}
		} else {
			log.Ctx(context.Background()).Warn("no oidc-audience configured, project changes are not authenticated")
			srv.bypassAuth = true
		}
		srv.carryDeficit = *carryDeficit
	})

	return srv
}

func (s *Server) setupHandler() http.Handler {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("POST /api/budget", s.handleBudget)
	apiMux.HandleFunc("GET /api/projects", s.handleListProjects)
	apiMux.HandleFunc("GET /api/projects/{id}", s.handleGetProject)
	apiMux.Handle("PUT /api/projects/{id}", s.authMiddleware(http.HandlerFunc(s.handlePutProject)))
	apiMux.Handle("DELETE /api/projects/{id}", s.authMiddleware(http.HandlerFunc(s.handleDeleteProject)))
	apiMux.HandleFunc("GET /api/projects/{id}/budget", s.handleProjectBudget)
	apiMux.Handle("POST /api/projects/{id}/weather", s.authMiddleware(http.HandlerFunc(s.handleFetchWeather)))
	apiMux.HandleFunc("GET /api/solar/position", s.handleSolarPosition)

	mux := http.NewServeMux()
	mux.Handle("/api/", s.requestLogMiddleware(apiMux))
	mux.HandleFunc("/healthz", s.handleHealthz)
	return s.revisionMiddleware(gziphandler.GzipHandler(s.securityHeadersMiddleware(mux)))
}

// Run starts the HTTP server and blocks until the context is canceled or an error occurs.
// It also handles graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.listenAddr,
		Handler:      s.setupHandler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	// use a channel to capturing server errors
	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		log.Ctx(ctx).InfoContext(ctx, "starting server", slog.String("addr", s.listenAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Ctx(ctx).InfoContext(ctx, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg}); err != nil {
		slog.Warn("failed to write error response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic(http.ErrAbortHandler)
	}
}

// invalidProjectError marks a project that failed structural validation.
type invalidProjectError struct {
	err error
}

func (e *invalidProjectError) Error() string { return e.err.Error() }
func (e *invalidProjectError) Unwrap() error { return e.err }

// writeError maps err to a status code and writes it as a JSON error.
func writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	var verr *budget.ValidationError
	var derr *solar.NumericDomainError
	var perr *invalidProjectError
	switch {
	case errors.As(err, &verr), errors.As(err, &derr), errors.As(err, &perr):
		log.Ctx(ctx).WarnContext(ctx, msg, slog.Any("error", err))
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, storage.ErrProjectNotFound):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	default:
		log.Ctx(ctx).ErrorContext(ctx, msg, slog.Any("error", err))
		writeJSONError(w, msg, http.StatusInternalServerError)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = log.With(ctx, log.Ctx(ctx).With(slog.String("reqPath", r.URL.Path)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) revisionMiddleware(next http.Handler) http.Handler {
	if s.serverName == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", s.serverName)
		next.ServeHTTP(w, r)
	})
}
