package common

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "BuoyBudget/"+strings.TrimSpace(version), r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := HTTPClient(5 * time.Second)
	assert.Equal(t, 5*time.Second, client.Timeout)

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "overridden")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "overridden", req.Header.Get("User-Agent"), "request must not be mutated")
}

func TestGetJSON(t *testing.T) {
	ctx := context.Background()
	client := HTTPClient(5 * time.Second)

	t.Run("Decodes", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			w.Write([]byte(`{"name":"buoy","value":4.5}`))
		}))
		defer server.Close()

		var out struct {
			Name  string  `json:"name"`
			Value float64 `json:"value"`
		}
		require.NoError(t, GetJSON(ctx, client, server.URL, &out))
		assert.Equal(t, "buoy", out.Name)
		assert.Equal(t, 4.5, out.Value)
	})

	t.Run("Status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad coordinates", http.StatusUnprocessableEntity)
		}))
		defer server.Close()

		var out map[string]any
		err := GetJSON(ctx, client, server.URL, &out)
		var serr *StatusError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, http.StatusUnprocessableEntity, serr.StatusCode)
		assert.Equal(t, "bad coordinates", serr.Body)
		assert.ErrorContains(t, err, "422")
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{`))
		}))
		defer server.Close()

		var out map[string]any
		assert.ErrorContains(t, GetJSON(ctx, client, server.URL, &out), "decode")
	})
}
