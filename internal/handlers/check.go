package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/veil-waf/framegate/internal/classify"
	"github.com/veil-waf/framegate/internal/urlrisk"
)

// MaxBatchSize is the largest number of URLs accepted by AssessBatch.
const MaxBatchSize = 100

// Request body limits.
const (
	maxBodyBytes      = 64 << 10
	maxBatchBodyBytes = 1 << 20
)

// CheckHandler serves the URL check endpoints.
type CheckHandler struct {
	checker     *classify.Checker
	concurrency int
	logger      *slog.Logger
}

// NewCheckHandler creates a CheckHandler. concurrency bounds the number of
// URLs assessed at once by a batch request.
func NewCheckHandler(checker *classify.Checker, concurrency int, logger *slog.Logger) *CheckHandler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &CheckHandler{checker: checker, concurrency: concurrency, logger: logger}
}

type urlRequest struct {
	URL string `json:"url"`
}

type checkResponse struct {
	Status     string       `json:"status"`
	Confidence float64      `json:"confidence"`
	Tier       urlrisk.Tier `json:"tier,omitempty"`
	RiskScore  *int         `json:"risk_score,omitempty"`
	Reason     string       `json:"reason,omitempty"`
}

// Check handles POST /api/check with the configured strategy. It speaks the
// same {status, confidence} contract the remote strategy consumes.
func (h *CheckHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if !decodeJSON(w, r, maxBodyBytes, &req) {
		return
	}

	res := h.checker.Check(r.Context(), req.URL)
	writeJSON(w, http.StatusOK, checkResponse{
		Status:     res.Status,
		Confidence: res.Confidence,
		Tier:       res.Tier,
		RiskScore:  res.RiskScore,
		Reason:     res.Reason,
	})
}

// Assess handles POST /v1/assess with the full local verdict for one URL.
func (h *CheckHandler) Assess(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if !decodeJSON(w, r, maxBodyBytes, &req) {
		return
	}

	v := urlrisk.Assess(req.URL)
	h.logger.Debug("url assessed", "risk_score", v.RiskScore, "tier", v.Tier)
	writeJSON(w, http.StatusOK, v)
}

type batchResult struct {
	URL string `json:"url"`
	urlrisk.Verdict
}

// AssessBatch handles POST /v1/assess/batch. Results keep the input order.
func (h *CheckHandler) AssessBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URLs []string `json:"urls"`
	}
	if !decodeJSON(w, r, maxBatchBodyBytes, &req) {
		return
	}
	if len(req.URLs) == 0 {
		jsonError(w, "urls field is required", http.StatusBadRequest)
		return
	}
	if len(req.URLs) > MaxBatchSize {
		jsonError(w, fmt.Sprintf("at most %d urls per batch", MaxBatchSize), http.StatusBadRequest)
		return
	}

	results, err := urlrisk.AssessAll(r.Context(), req.URLs, h.concurrency)
	if err != nil {
		jsonError(w, "batch cancelled", http.StatusServiceUnavailable)
		return
	}

	out := make([]batchResult, len(results))
	for i, v := range results {
		out[i] = batchResult{URL: req.URLs[i], Verdict: v}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

// decodeJSON reads at most limit bytes of JSON body into v. On failure it
// writes the error response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit)).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		jsonError(w, fmt.Sprintf("request body exceeds %d bytes", limit), http.StatusRequestEntityTooLarge)
		return false
	}
	jsonError(w, "invalid JSON body", http.StatusBadRequest)
	return false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
