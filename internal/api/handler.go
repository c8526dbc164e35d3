package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/eugenenazirov/smartpack/internal/catalog"
	"github.com/eugenenazirov/smartpack/internal/dataset"
	"github.com/eugenenazirov/smartpack/internal/engine"
	"github.com/eugenenazirov/smartpack/internal/session"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const defaultDatasetSize = session.DefaultDatasetSize

// Handler wires the catalog, scan engine and session store into HTTP handlers.
type Handler struct {
	catalog  *catalog.Catalog
	sessions session.Store

	defaultSize int
	clock       func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithDefaultDatasetSize sets the record count used when a session request omits one.
func WithDefaultDatasetSize(n int) HandlerOption {
	return func(h *Handler) {
		if n >= 0 {
			h.defaultSize = n
		}
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(cat *catalog.Catalog, store session.Store, opts ...HandlerOption) *Handler {
	h := &Handler{
		catalog:     cat,
		sessions:    store,
		defaultSize: defaultDatasetSize,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, h.catalog.Clone())
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	size := h.defaultSize
	if req.Size != nil {
		size = *req.Size
	}

	sess, err := h.sessions.Create(size, req.Seed)
	if err != nil {
		if errors.Is(err, dataset.ErrInvalidConfiguration) {
			writeError(w, http.StatusBadRequest, "Invalid session configuration", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	w.Header().Set("Location", "/api/sessions/"+sess.ID())
	writeJSON(w, http.StatusCreated, newSessionResponse(sess))
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.PathValue("id")); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found", err.Error(), "Create a new session with POST /api/sessions")
			return
		}
		writeInternalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetRecords(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}
	records := sess.Dataset().Records()
	writeJSON(w, http.StatusOK, recordsResponse{
		SessionID: sess.ID(),
		Total:     len(records),
		Records:   records,
	})
}

func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	citySuggestion := "Choose one of: " + strings.Join(h.catalog.Cities, ", ")
	if strings.TrimSpace(req.City) == "" {
		writeError(w, http.StatusBadRequest, "Invalid city", "city is required", citySuggestion)
		return
	}

	res, err := sess.Scan(req.Code, req.City)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrUnknownCity):
			writeError(w, http.StatusBadRequest, "Invalid city", err.Error(), citySuggestion)
		default:
			writeInternalError(w, err)
		}
		return
	}

	if !res.Found {
		details := "empty code"
		if res.Code != "" {
			details = fmt.Sprintf("no package with code %s", res.Code)
		}
		suggestion := "This session has no packages; create one with a positive size"
		if n := sess.Dataset().Len(); n > 0 {
			suggestion = fmt.Sprintf("Codes run from %s to %s", dataset.FormatID(1), dataset.FormatID(n))
		}
		writeError(w, http.StatusNotFound, "Code not recognised", details, suggestion)
		return
	}

	writeJSON(w, http.StatusOK, scanResponse{
		Code:          res.Code,
		ScanOutcome:   *res.Outcome,
		SessionPoints: sess.Stats().Points,
	})
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	report := sess.Report()
	writeJSON(w, http.StatusOK, reportResponse{
		SessionID:       sess.ID(),
		Report:          report,
		CityRanking:     engine.Rank(report.ScansByCity),
		MaterialRanking: engine.Rank(report.ScansByMaterial),
		ProductRanking:  engine.Rank(report.ScansByProduct),
		GeneratedAt:     h.clock(),
	})
}

func (h *Handler) sessionFromRequest(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found", err.Error(), "Create a new session with POST /api/sessions")
			return nil, false
		}
		writeInternalError(w, err)
		return nil, false
	}
	return sess, true
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type createSessionRequest struct {
	Size *int    `json:"size"`
	Seed *uint64 `json:"seed"`
}

type scanRequest struct {
	Code string `json:"code"`
	City string `json:"city"`
}

type sessionResponse struct {
	SessionID string    `json:"sessionId"`
	Size      int       `json:"size"`
	Seed      uint64    `json:"seed"`
	CreatedAt time.Time `json:"createdAt"`
	Points    int       `json:"points"`
	Scans     int       `json:"scans"`
}

func newSessionResponse(sess *session.Session) sessionResponse {
	stats := sess.Stats()
	return sessionResponse{
		SessionID: sess.ID(),
		Size:      sess.Dataset().Len(),
		Seed:      sess.Seed(),
		CreatedAt: sess.CreatedAt(),
		Points:    stats.Points,
		Scans:     stats.Scans,
	}
}

type recordsResponse struct {
	SessionID string           `json:"sessionId"`
	Total     int              `json:"total"`
	Records   []dataset.Record `json:"records"`
}

type scanResponse struct {
	Code string `json:"code"`
	engine.ScanOutcome
	SessionPoints int `json:"sessionPoints"`
}

type reportResponse struct {
	SessionID string `json:"sessionId"`
	engine.Report
	CityRanking     []engine.Count `json:"cityRanking"`
	MaterialRanking []engine.Count `json:"materialRanking"`
	ProductRanking  []engine.Count `json:"productRanking"`
	GeneratedAt     time.Time      `json:"generatedAt"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
