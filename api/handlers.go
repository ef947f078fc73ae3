/*
handlers.go - HTTP API handlers for the batch ledger evaluator

PURPOSE:
  Exposes the evaluator via REST API. Handles HTTP request/response and
  JSON serialization, and delegates to the ledger package.

ENDPOINTS:
  GET    /api/health                 Liveness
  POST   /api/evaluations            Evaluate a batch (?dry_run=true skips the archive)
  GET    /api/evaluations            List archived runs (?limit=N, ?account=)
  GET    /api/evaluations/{id}       Get one archived run
  GET    /api/scenarios              List demo batches
  POST   /api/scenarios/{id}/run     Evaluate a demo batch

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Evaluator: ledger.Evaluator with the configured observers
  - Store: Run archive
  - cache: Recently saved or read runs

ERROR HANDLING:
  Evaluation itself never fails. Errors are returned as JSON with:
  - 400: Body is not a JSON object
  - 404: Run or scenario not found
  - 429: Rate limited (see ratelimit.go)
  - 500: Archive failures

SECURITY NOTE:
  No authentication or authorization. Who may submit batches is out of
  scope for this service.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo batches
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
	"github.com/warp/batch-ledger/ledger"
	"go.uber.org/zap"
)

// maxBodyBytes caps the size of an evaluation request.
const maxBodyBytes = 1 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Evaluator *ledger.Evaluator
	Store     ledger.RunStore
	Logger    *zap.Logger

	cache *cache.Cache
	now   func() time.Time
}

// NewHandler creates a handler. cacheTTL <= 0 uses five minutes.
func NewHandler(evaluator *ledger.Evaluator, store ledger.RunStore, logger *zap.Logger, cacheTTL time.Duration) *Handler {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Evaluator: evaluator,
		Store:     store,
		Logger:    logger,
		cache:     cache.New(cacheTTL, 2*cacheTTL),
		now:       time.Now,
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// EVALUATION HANDLERS
// =============================================================================

// Evaluate runs a batch and archives the result.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var account ledger.AccountDescriptor
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&account); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))
	h.evaluateAndRespond(w, r, account, dryRun)
}

func (h *Handler) evaluateAndRespond(w http.ResponseWriter, r *http.Request, account ledger.AccountDescriptor, dryRun bool) {
	summary := h.Evaluator.Evaluate(r.Context(), account)
	run := ledger.NewRun(summary, h.now())

	if dryRun {
		dto := toRunDTO(run)
		dto.ID = ""
		dto.DryRun = true
		writeJSON(w, http.StatusOK, dto)
		return
	}

	if err := h.Store.SaveRun(r.Context(), run); err != nil {
		h.Logger.Error("failed to archive run", zap.String("run_id", run.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to archive evaluation", err)
		return
	}
	h.cache.SetDefault(run.ID, run)

	writeJSON(w, http.StatusCreated, toRunDTO(run))
}

// ListEvaluations returns archived runs, newest first, optionally for one
// account (?account=).
func (h *Handler) ListEvaluations(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	var runs []ledger.Run
	var err error
	if account := r.URL.Query().Get("account"); account != "" {
		runs, err = h.Store.ListRunsByAccount(r.Context(), account, limit)
	} else {
		runs, err = h.Store.ListRuns(r.Context(), limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list evaluations", err)
		return
	}

	dtos := make([]RunListItemDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunListItemDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEvaluation returns one archived run.
func (h *Handler) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if cached, ok := h.cache.Get(id); ok {
		writeJSON(w, http.StatusOK, toRunDTO(cached.(ledger.Run)))
		return
	}

	run, err := h.Store.GetRun(r.Context(), id)
	if errors.Is(err, ledger.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "Evaluation not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get evaluation", err)
		return
	}

	h.cache.SetDefault(run.ID, run)
	writeJSON(w, http.StatusOK, toRunDTO(run))
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
