package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsedeck/backend/models"
)

func createServiceHTTP(t *testing.T, f *fixture, body map[string]any) *models.Service {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/services", body, f.token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var svc models.Service
	decode(t, w, &svc)
	return &svc
}

func TestServiceCRUDEndpoints(t *testing.T) {
	f := newFixture(t)

	svc := createServiceHTTP(t, f, map[string]any{
		"name": "Demo API",
		"url":  "http://localhost:3000",
	})
	assert.Equal(t, "/health", svc.HealthEndpoint)
	assert.True(t, svc.Enabled)

	t.Run("create without url", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/services", map[string]any{"name": "x"}, f.token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/services", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Count    int               `json:"count"`
			Services []*models.Service `json:"services"`
		}
		decode(t, w, &body)
		assert.Equal(t, 1, body.Count)
	})

	t.Run("list with bad enabled param", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/services?enabled=maybe", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("get", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/services/"+svc.ID, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		var got models.Service
		decode(t, w, &got)
		assert.Equal(t, "Demo API", got.Name)
	})

	t.Run("update", func(t *testing.T) {
		w := f.do(t, http.MethodPatch, "/api/services/"+svc.ID, map[string]any{
			"enabled": false,
		}, f.token)
		require.Equal(t, http.StatusOK, w.Code)
		var got models.Service
		decode(t, w, &got)
		assert.False(t, got.Enabled)
		assert.Equal(t, "Demo API", got.Name)
	})

	t.Run("delete", func(t *testing.T) {
		w := f.do(t, http.MethodDelete, "/api/services/"+svc.ID, nil, f.token)
		require.Equal(t, http.StatusOK, w.Code)

		w = f.do(t, http.MethodGet, "/api/services/"+svc.ID, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTestServiceEndpoint(t *testing.T) {
	f := newFixture(t)

	t.Run("healthy probe", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		svc := createServiceHTTP(t, f, map[string]any{"name": "up", "url": ts.URL})
		w := f.do(t, http.MethodPost, "/api/services/"+svc.ID+"/test", nil, f.token)
		require.Equal(t, http.StatusOK, w.Code)
		var result models.ProbeResult
		decode(t, w, &result)
		assert.True(t, result.Healthy)
		assert.Equal(t, "up", result.Service)
	})

	t.Run("unreachable probe still returns 200", func(t *testing.T) {
		svc := createServiceHTTP(t, f, map[string]any{"name": "down", "url": "http://127.0.0.1:1"})
		w := f.do(t, http.MethodPost, "/api/services/"+svc.ID+"/test", nil, f.token)
		require.Equal(t, http.StatusOK, w.Code)
		var result models.ProbeResult
		decode(t, w, &result)
		assert.False(t, result.Healthy)
		assert.Nil(t, result.ResponseTime)
		assert.NotEmpty(t, result.Error)
	})

	t.Run("unknown service", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/services/nope/test", nil, f.token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
