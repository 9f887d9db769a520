package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/buoybudget/buoybudget/pkg/storage/storagemock"
)

func TestAuthMiddleware(t *testing.T) {
	issuer, priv := setupOIDCTest(t)
	defer issuer.Close()
	provider, err := oidc.NewProvider(context.Background(), issuer.URL)
	require.NoError(t, err)

	adminToken := generateTestToken(t, issuer.URL, priv, "admin@example.com", "admin1")
	userToken := generateTestToken(t, issuer.URL, priv, "user@example.com", "user1")

	db := &storagemock.MockDatabase{}
	db.On("DeleteProject", mock.Anything, "p1").Return(nil)

	srv := newTestServer(db, nil)
	srv.bypassAuth = false
	srv.adminEmails = []string{"admin@example.com"}
	srv.oidcAudience = testAudience
	srv.oidcVerifier = provider.Verifier(&oidc.Config{ClientID: testAudience}).Verify
	handler := srv.setupHandler()

	del := func(authHeader string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/api/projects/p1", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	t.Run("Missing Header", func(t *testing.T) {
		w := del("")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Not Bearer", func(t *testing.T) {
		w := del("Basic YWRtaW46cGFzcw==")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Invalid Token", func(t *testing.T) {
		w := del("Bearer not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Unauthorized - Not Admin", func(t *testing.T) {
		w := del("Bearer " + userToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		var resp map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "forbidden", resp["error"])
	})

	t.Run("Authorized - Admin", func(t *testing.T) {
		w := del("Bearer " + adminToken)
		assert.Equal(t, http.StatusNoContent, w.Code)
		db.AssertNumberOfCalls(t, "DeleteProject", 1)
	})

	t.Run("Reads Stay Public", func(t *testing.T) {
		db.On("ListProjects", mock.Anything).Return(nil, nil).Once()
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Nobody Without Admin List", func(t *testing.T) {
		srv.adminEmails = nil
		defer func() { srv.adminEmails = []string{"admin@example.com"} }()

		w := del("Bearer " + userToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
		w = del("Bearer " + adminToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
		db.AssertNumberOfCalls(t, "DeleteProject", 1)
	})
}

func TestIsAdmin(t *testing.T) {
	srv := &Server{adminEmails: []string{"a@example.com", "b@example.com"}}
	assert.True(t, srv.isAdmin("b@example.com"))
	assert.False(t, srv.isAdmin("c@example.com"))
	assert.False(t, srv.isAdmin(""))

	srv.adminEmails = nil
	assert.False(t, srv.isAdmin("c@example.com"))
	assert.False(t, srv.isAdmin(""))
}
