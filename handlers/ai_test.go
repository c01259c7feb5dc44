package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsedeck/backend/models"
)

func seedAnalyzedIncident(t *testing.T, f *fixture) *models.Incident {
	t.Helper()
	inc := createIncidentHTTP(t, f, map[string]any{
		"title":       "API latency",
		"description": "p99 through the roof",
	})
	w := f.do(t, http.MethodPost, "/api/incidents/"+inc.ID+"/logs", map[string]any{
		"message": "query timeout after 30s",
		"level":   "error",
	}, f.token)
	require.Equal(t, http.StatusCreated, w.Code)
	return inc
}

func TestAnalyzeREST(t *testing.T) {
	f := newFixture(t)
	inc := seedAnalyzedIncident(t, f)

	w := f.do(t, http.MethodGet, "/api/ai/analysis/"+inc.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.IncidentAnalysisResponse
	decode(t, w, &resp)
	assert.Equal(t, inc.ID, resp.Incident.ID)
	assert.Equal(t, "rules", resp.AIAnalysis.Provider)
	assert.NotEmpty(t, resp.AIAnalysis.RootCause)
	assert.NotEmpty(t, resp.AIAnalysis.SuggestedActions)
	assert.Equal(t, 1, resp.LogsAnalyzed)
	assert.Equal(t, 1, resp.ErrorCount)

	t.Run("unknown incident", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/ai/analysis/nope", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

type rpcTestResponse struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  *struct {
		Content []struct {
			Type string                          `json:"type"`
			Data models.IncidentAnalysisResponse `json:"data"`
		} `json:"content"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func rpcCall(t *testing.T, f *fixture, body map[string]any) rpcTestResponse {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/mcp/jsonrpc", body, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp rpcTestResponse
	decode(t, w, &resp)
	return resp
}

func TestAnalyzeJSONRPC(t *testing.T) {
	f := newFixture(t)
	inc := seedAnalyzedIncident(t, f)

	t.Run("success envelope", func(t *testing.T) {
		resp := rpcCall(t, f, map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"method":  "tools/call",
			"params": map[string]any{
				"name":      "analyzeIncident",
				"arguments": map[string]any{"incidentId": inc.ID},
			},
		})
		require.Nil(t, resp.Error)
		require.NotNil(t, resp.Result)
		require.Len(t, resp.Result.Content, 1)
		assert.Equal(t, "json", resp.Result.Content[0].Type)

		payload := resp.Result.Content[0].Data
		assert.Equal(t, inc.ID, payload.Incident.ID)
		assert.NotEmpty(t, payload.AIAnalysis.RootCause)
	})

	t.Run("wrong version", func(t *testing.T) {
		resp := rpcCall(t, f, map[string]any{
			"jsonrpc": "1.0",
			"id":      2,
			"method":  "tools/call",
		})
		require.NotNil(t, resp.Error)
		assert.Equal(t, -32600, resp.Error.Code)
	})

	t.Run("unknown method", func(t *testing.T) {
		resp := rpcCall(t, f, map[string]any{
			"jsonrpc": "2.0",
			"id":      3,
			"method":  "tools/list",
		})
		require.NotNil(t, resp.Error)
		assert.Equal(t, -32601, resp.Error.Code)
	})

	t.Run("unknown tool", func(t *testing.T) {
		resp := rpcCall(t, f, map[string]any{
			"jsonrpc": "2.0",
			"id":      4,
			"method":  "tools/call",
			"params":  map[string]any{"name": "summonDragons"},
		})
		require.NotNil(t, resp.Error)
		assert.Equal(t, -32601, resp.Error.Code)
	})

	t.Run("missing incidentId", func(t *testing.T) {
		resp := rpcCall(t, f, map[string]any{
			"jsonrpc": "2.0",
			"id":      5,
			"method":  "tools/call",
			"params":  map[string]any{"name": "analyzeIncident"},
		})
		require.NotNil(t, resp.Error)
		assert.Equal(t, -32602, resp.Error.Code)
	})

	t.Run("unknown incident rides in the error object", func(t *testing.T) {
		resp := rpcCall(t, f, map[string]any{
			"jsonrpc": "2.0",
			"id":      6,
			"method":  "tools/call",
			"params": map[string]any{
				"name":      "analyzeIncident",
				"arguments": map[string]any{"incidentId": "nope"},
			},
		})
		require.NotNil(t, resp.Error)
		assert.Equal(t, -32602, resp.Error.Code)
		assert.NotEmpty(t, resp.Error.Message)
	})
}
