package api

import (
	"net/http"

	"github.com/koopa0/rag-platform/internal/config"
)

// Document is the retrieval result shape exposed by the versioned API.
// Retriever plugins populate it once implemented; until then responses
// carry an empty list.
type Document struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// registerV1 mounts the versioned route group under the configured prefix.
// Feature toggles gate each group: a disabled group's routes are never
// registered, so they answer 404. Retrieval is the platform's core surface
// and is always mounted.
func registerV1(mux *http.ServeMux, prefix string, cfg *config.Config) {
	if cfg.EnableRAG {
		rh := ragHandler{}
		mux.HandleFunc("POST "+prefix+"/rag/ingest", rh.ingest)
		mux.HandleFunc("POST "+prefix+"/rag/query", rh.query)
		mux.HandleFunc("GET "+prefix+"/rag/status", rh.status)
	}

	if cfg.EnableAgents {
		ah := agentHandler{}
		mux.HandleFunc("POST "+prefix+"/agents/execute", ah.execute)
		mux.HandleFunc("GET "+prefix+"/agents/status/{execution_id}", ah.status)
	}

	mux.HandleFunc("POST "+prefix+"/retrievers/retrieve", retrieverHandler{}.retrieve)

	if cfg.EnableEvaluation {
		mux.HandleFunc("POST "+prefix+"/evaluation/evaluate", evaluationHandler{}.evaluate)
	}

	if cfg.MultiTenantEnabled {
		th := tenantHandler{}
		mux.HandleFunc("POST "+prefix+"/tenants/create", th.create)
		mux.HandleFunc("GET "+prefix+"/tenants/{tenant_id}", th.get)
	}
}

// ragHandler serves the RAG pipeline route group. Every response is a
// fixed-shape placeholder until the ingestion and query pipeline lands.
type ragHandler struct{}

type ragIngestResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ragQueryResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

type ragStatusResponse struct {
	Status         string `json:"status"`
	Vectorstore    string `json:"vectorstore"`
	DocumentsCount int    `json:"documents_count"`
}

func (ragHandler) ingest(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, ragIngestResponse{
		Status:  "pending",
		Message: "Document ingestion initiated",
	})
}

func (ragHandler) query(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, ragQueryResponse{
		Answer:  "RAG response pending implementation",
		Sources: []string{},
	})
}

func (ragHandler) status(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, ragStatusResponse{
		Status:         "ready",
		Vectorstore:    "initialized",
		DocumentsCount: 0,
	})
}

// agentHandler serves the agent execution route group. The agent engine is
// an external collaborator; both endpoints answer static placeholders.
type agentHandler struct{}

type agentExecutionResponse struct {
	ExecutionID string `json:"execution_id"`
	Status      string `json:"status"`
}

func (agentHandler) execute(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, agentExecutionResponse{
		ExecutionID: "agent-001",
		Status:      "running",
	})
}

func (agentHandler) status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, agentExecutionResponse{
		ExecutionID: r.PathValue("execution_id"),
		Status:      "completed",
	})
}

// retrieverHandler serves the pluggable document retrieval endpoint.
type retrieverHandler struct{}

type retrieveResponse struct {
	Documents []Document `json:"documents"`
	Total     int        `json:"total"`
}

func (retrieverHandler) retrieve(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, retrieveResponse{
		Documents: []Document{},
		Total:     0,
	})
}

// evaluationHandler serves the evaluation harness endpoint.
type evaluationHandler struct{}

type evaluateResponse struct {
	Accuracy float64 `json:"accuracy"`
	F1Score  float64 `json:"f1_score"`
}

func (evaluationHandler) evaluate(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, evaluateResponse{
		Accuracy: 0.0,
		F1Score:  0.0,
	})
}

// tenantHandler serves the multi-tenant route group. Isolation-level
// semantics belong to the tenant store implementation, which is not part
// of this skeleton; both endpoints answer static placeholders.
type tenantHandler struct{}

type tenantCreateResponse struct {
	TenantID string `json:"tenant_id"`
	Status   string `json:"status"`
}

type tenantResponse struct {
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
}

func (tenantHandler) create(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, tenantCreateResponse{
		TenantID: "tenant-001",
		Status:   "created",
	})
}

func (tenantHandler) get(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, tenantResponse{
		TenantID: r.PathValue("tenant_id"),
		Name:     "Tenant Name",
		Status:   "active",
	})
}
