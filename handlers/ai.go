package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulsedeck/backend/ai"
	"github.com/pulsedeck/backend/apperr"
)

// AIHandler exposes the analysis adapter over two equivalent surfaces: plain
// REST and a JSON-RPC 2.0 tools/call envelope. Both return the same
// IncidentAnalysisResponse.
type AIHandler struct {
	analyzer *ai.Analyzer
}

func NewAIHandler(analyzer *ai.Analyzer) *AIHandler {
	return &AIHandler{analyzer: analyzer}
}

// Analyze handles GET /api/ai/analysis/:id.
func (h *AIHandler) Analyze(c *gin.Context) {
	result, err := h.analyzer.Analyze(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

const toolAnalyzeIncident = "analyzeIncident"

// JSON-RPC 2.0 error codes.
const (
	rpcInvalidRequest = -32600
	rpcMethodNotFound = -32601
	rpcInvalidParams  = -32602
	rpcServerError    = -32000
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  struct {
		Name      string `json:"name"`
		Arguments struct {
			IncidentID string `json:"incidentId"`
		} `json:"arguments"`
	} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcContent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  *struct {
		Content []rpcContent `json:"content"`
	} `json:"result,omitempty"`
	Error *rpcError `json:"error,omitempty"`
}

// JSONRPC handles POST /api/mcp/jsonrpc. Per JSON-RPC convention, application
// failures ride in the error object over HTTP 200.
func (h *AIHandler) JSONRPC(c *gin.Context) {
	var req rpcRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, rpcErrorResponse(nil, rpcInvalidRequest, "invalid JSON-RPC request"))
		return
	}
	if req.JSONRPC != "2.0" {
		c.JSON(http.StatusOK, rpcErrorResponse(req.ID, rpcInvalidRequest, "jsonrpc must be \"2.0\""))
		return
	}
	if req.Method != "tools/call" {
		c.JSON(http.StatusOK, rpcErrorResponse(req.ID, rpcMethodNotFound, "unknown method: "+req.Method))
		return
	}
	if req.Params.Name != toolAnalyzeIncident {
		c.JSON(http.StatusOK, rpcErrorResponse(req.ID, rpcMethodNotFound, "unknown tool: "+req.Params.Name))
		return
	}
	if req.Params.Arguments.IncidentID == "" {
		c.JSON(http.StatusOK, rpcErrorResponse(req.ID, rpcInvalidParams, "incidentId is required"))
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), req.Params.Arguments.IncidentID)
	if err != nil {
		code := rpcServerError
		if apperr.Is(err, apperr.NotFound) {
			code = rpcInvalidParams
		}
		c.JSON(http.StatusOK, rpcErrorResponse(req.ID, code, apperr.Message(err)))
		return
	}

	resp := rpcResponse{JSONRPC: "2.0", ID: req.ID}
	resp.Result = &struct {
		Content []rpcContent `json:"content"`
	}{
		Content: []rpcContent{{Type: "json", Data: result}},
	}
	c.JSON(http.StatusOK, resp)
}

func rpcErrorResponse(id json.RawMessage, code int, message string) rpcResponse {
	return rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message},
	}
}
