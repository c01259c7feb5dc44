package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/pulsedeck/backend/ai"
	"github.com/pulsedeck/backend/config"
	"github.com/pulsedeck/backend/handlers"
	"github.com/pulsedeck/backend/router"
	"github.com/pulsedeck/backend/services"
	"github.com/pulsedeck/backend/store"
)

const (
	testEmail    = "admin@company.com"
	testPassword = "admin123"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fixture is a full HTTP stack over the in-memory store with the rule analyzer
// as the only AI provider.
type fixture struct {
	router    *gin.Engine
	incidents *services.IncidentService
	registry  *services.RegistryService
	token     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := config.Config{
		JWTSecret:        "test-secret",
		AdminEmail:       testEmail,
		AdminPassword:    testPassword,
		ProbeTimeout:     2 * time.Second,
		AITimeout:        time.Second,
		DefaultListLimit: 50,
	}

	st := store.NewMemory()
	incidents := services.NewIncidentService(st, nil)
	registry := services.NewRegistryService(st, cfg.ProbeTimeout)
	fallback, err := ai.NewRuleAnalyzer("")
	require.NoError(t, err)
	analyzer := ai.NewAnalyzer(incidents, nil, fallback, cfg.AITimeout, nil)

	r := gin.New()
	router.Register(r, router.Handlers{
		App:      handlers.NewApp(cfg),
		Auth:     handlers.NewAuthHandler(cfg),
		Incident: handlers.NewIncidentHandler(incidents, cfg.DefaultListLimit),
		Service:  handlers.NewServiceHandler(registry),
		System:   handlers.NewSystemHandler(incidents),
		AI:       handlers.NewAIHandler(analyzer),
	}, []string{"http://localhost:3000"}, cfg.JWTSecret)

	f := &fixture{router: r, incidents: incidents, registry: registry}
	f.token = f.login(t)
	return f
}

func (f *fixture) login(t *testing.T) string {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email":    testEmail,
		"password": testPassword,
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func (f *fixture) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), into), "body: %s", w.Body.String())
}

func testCtx() context.Context {
	return context.Background()
}

func TestLogin(t *testing.T) {
	f := newFixture(t)

	t.Run("bad credentials", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/auth/login", gin.H{
			"email":    testEmail,
			"password": "wrong",
		}, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "not-an-email"}, "")
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthRequiredForWrites(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/incidents", gin.H{
		"title":       "x",
		"description": "y",
	}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodPost, "/api/incidents", gin.H{
		"title":       "x",
		"description": "y",
	}, "garbage-token")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
}
