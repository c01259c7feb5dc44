package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsedeck/backend/apperr"
	"github.com/pulsedeck/backend/models"
	"github.com/pulsedeck/backend/store"
)

func newTestRegistry() *RegistryService {
	return NewRegistryService(store.NewMemory(), 2*time.Second)
}

func TestRegistryCreate(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry()

	t.Run("defaults applied", func(t *testing.T) {
		svc, err := reg.Create(ctx, &models.CreateServiceRequest{
			Name: "Demo API",
			URL:  "http://localhost:3000",
		})
		require.NoError(t, err)
		assert.Equal(t, "/health", svc.HealthEndpoint)
		assert.Equal(t, models.ServiceAPI, svc.Category)
		assert.True(t, svc.Enabled)
		assert.NotEmpty(t, svc.ID)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := reg.Create(ctx, &models.CreateServiceRequest{URL: "http://localhost:3000"})
		assert.True(t, apperr.Is(err, apperr.Validation))
	})

	t.Run("malformed url", func(t *testing.T) {
		for _, raw := range []string{"", "not a url", "ftp://example.com", "http://"} {
			_, err := reg.Create(ctx, &models.CreateServiceRequest{Name: "x", URL: raw})
			assert.True(t, apperr.Is(err, apperr.Validation), "url %q", raw)
		}
	})

	t.Run("health endpoint normalised", func(t *testing.T) {
		svc, err := reg.Create(ctx, &models.CreateServiceRequest{
			Name:           "x",
			URL:            "http://localhost:3000/",
			HealthEndpoint: "status",
		})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:3000", svc.URL)
		assert.Equal(t, "/status", svc.HealthEndpoint)
	})
}

func TestRegistryUpdate(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry()

	svc, err := reg.Create(ctx, &models.CreateServiceRequest{Name: "api", URL: "http://localhost:3000"})
	require.NoError(t, err)

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		disabled := false
		updated, err := reg.Update(ctx, svc.ID, &models.UpdateServiceRequest{Enabled: &disabled})
		require.NoError(t, err)
		assert.False(t, updated.Enabled)
		assert.Equal(t, "api", updated.Name)
		assert.Equal(t, "http://localhost:3000", updated.URL)
	})

	t.Run("invalid url rejected", func(t *testing.T) {
		bad := "nope"
		_, err := reg.Update(ctx, svc.ID, &models.UpdateServiceRequest{URL: &bad})
		assert.True(t, apperr.Is(err, apperr.Validation))
	})

	t.Run("unknown id", func(t *testing.T) {
		name := "x"
		_, err := reg.Update(ctx, "missing", &models.UpdateServiceRequest{Name: &name})
		assert.True(t, apperr.Is(err, apperr.NotFound))
	})
}

func TestRegistryTest(t *testing.T) {
	ctx := context.Background()

	t.Run("healthy target", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/health", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		reg := newTestRegistry()
		svc, err := reg.Create(ctx, &models.CreateServiceRequest{Name: "up", URL: ts.URL})
		require.NoError(t, err)

		result, err := reg.Test(ctx, svc.ID)
		require.NoError(t, err)
		assert.True(t, result.Healthy)
		assert.Equal(t, "up", result.Service)
		require.NotNil(t, result.ResponseTime)
		assert.Empty(t, result.Error)
	})

	t.Run("unhealthy status code", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer ts.Close()

		reg := newTestRegistry()
		svc, err := reg.Create(ctx, &models.CreateServiceRequest{Name: "down", URL: ts.URL})
		require.NoError(t, err)

		result, err := reg.Test(ctx, svc.ID)
		require.NoError(t, err)
		assert.False(t, result.Healthy)
		assert.Contains(t, result.Error, "503")
	})

	t.Run("unreachable target is a result, not an error", func(t *testing.T) {
		reg := newTestRegistry()
		svc, err := reg.Create(ctx, &models.CreateServiceRequest{
			Name: "Demo API",
			URL:  "http://127.0.0.1:1", // nothing listens here
		})
		require.NoError(t, err)

		result, err := reg.Test(ctx, svc.ID)
		require.NoError(t, err)
		assert.False(t, result.Healthy)
		assert.Nil(t, result.ResponseTime)
		assert.NotEmpty(t, result.Error)

		// The stored record is untouched.
		again, err := reg.Get(ctx, svc.ID)
		require.NoError(t, err)
		assert.Equal(t, svc.UpdatedAt, again.UpdatedAt)
		assert.True(t, again.Enabled)
	})

	t.Run("unknown id", func(t *testing.T) {
		reg := newTestRegistry()
		_, err := reg.Test(ctx, "missing")
		assert.True(t, apperr.Is(err, apperr.NotFound))
	})
}
