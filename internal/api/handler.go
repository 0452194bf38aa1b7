package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/situkangsayur/fraude-ai/internal/domain"
	"github.com/situkangsayur/fraude-ai/internal/graph"
	"github.com/situkangsayur/fraude-ai/internal/orchestrator"
	"github.com/situkangsayur/fraude-ai/internal/rules"
)

// Handler holds dependencies for API handlers.
type Handler struct {
	store        domain.Store
	graph        *graph.Engine
	rules        *rules.Engine
	orchestrator *orchestrator.Orchestrator
	cache        domain.Cache
	bus          domain.EventBus
	version      string
}

// NewHandler creates a new API handler.
func NewHandler(store domain.Store, graphEngine *graph.Engine, rulesEngine *rules.Engine, orch *orchestrator.Orchestrator, cache domain.Cache, bus domain.EventBus, version string) *Handler {
	return &Handler{
		store:        store,
		graph:        graphEngine,
		rules:        rulesEngine,
		orchestrator: orch,
		cache:        cache,
		bus:          bus,
		version:      version,
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps a typed error to its status code and JSON body.
func writeError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	status := domain.HTTPStatus(kind)

	var typed *domain.Error
	message := err.Error()
	if errors.As(err, &typed) {
		message = typed.Message
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		message = "internal server error"
	}

	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  string(kind),
	})
}

// decodeJSON parses a request body, surfacing bad_request on malformed
// JSON.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.BadRequestf("invalid JSON request body")
	}
	return nil
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}
	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}
	if h.bus != nil {
		if err := h.bus.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}
	if h.graph != nil && !h.graph.Ready() {
		status = "initializing"
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// ProcessTransaction handles POST /transactions: validate, persist and
// score the transaction against every policy.
func (h *Handler) ProcessTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var tx domain.Transaction
	if err := decodeJSON(r, &tx); err != nil {
		writeError(w, err)
		return
	}

	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now().UTC()
	}

	if err := tx.Validate(); err != nil {
		writeError(w, err)
		return
	}

	if err := h.store.InsertTransaction(ctx, &tx); err != nil {
		writeError(w, err)
		return
	}

	score, err := h.rules.EvaluateTransaction(ctx, &tx)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("transaction scored",
		"transaction_id", tx.IDTransaction,
		"id_user", tx.IDUser,
		"risk_points", score.RiskPoints,
		"risk_level", score.RiskLevel,
	)

	writeJSON(w, http.StatusOK, score)
}

// FraudCheck handles GET /fraud_check/{transaction_id}: the orchestrated
// pipeline over all four analyzers.
func (h *Handler) FraudCheck(w http.ResponseWriter, r *http.Request) {
	txID := chi.URLParam(r, "transaction_id")

	result, err := h.orchestrator.FraudCheck(r.Context(), txID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// analyzeRequest is the GET /analyze body: a transaction document or a
// bare user reference.
type analyzeRequest map[string]any

// Analyze handles GET /analyze: graph proximity analysis only.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var doc analyzeRequest
	if err := decodeJSON(r, &doc); err != nil {
		writeError(w, err)
		return
	}

	userID, _ := doc["id_user"].(string)
	if userID == "" {
		userID, _ = doc["user_id"].(string)
	}
	if userID == "" {
		writeError(w, domain.BadRequestf("id_user is required"))
		return
	}

	analysis, err := h.graph.Analyze(r.Context(), userID, doc)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}
