package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/memodeck/memodeck-progression/internal/application/command"
	"github.com/memodeck/memodeck-progression/internal/application/query"
	"github.com/memodeck/memodeck-progression/internal/domain/challenge"
	"github.com/memodeck/memodeck-progression/internal/domain/session"
	"github.com/memodeck/memodeck-progression/internal/domain/shared"
	"github.com/memodeck/memodeck-progression/pkg/logger"
)

// maxBodyBytes bounds request bodies; every payload here is a small JSON object.
const maxBodyBytes = 64 << 10

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":    "MemoDeck Progression API",
		"version": "v1",
		"endpoints": map[string]string{
			"health":      "/health",
			"progression": "/api/v1/users/{id}/progression",
			"today":       "/api/v1/users/{id}/challenges/today",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESSION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetProgression handles GET /api/v1/users/{id}/progression
func (s *Server) handleGetProgression(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "User ID is required")
		return
	}

	if s.deps.GetProgressionHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Progression handler not configured")
		return
	}

	q := query.GetProgressionQuery{
		UserID:       userID,
		HistoryLimit: getQueryParamInt(r, "history_limit", 0),
	}

	result, err := s.deps.GetProgressionHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err, "failed to get progression")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// applyXPRequest is the body of POST /api/v1/users/{id}/xp.
type applyXPRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

// handleApplyXP handles POST /api/v1/users/{id}/xp
func (s *Server) handleApplyXP(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "User ID is required")
		return
	}

	if s.deps.ApplyXPHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "XP handler not configured")
		return
	}

	var req applyXPRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.ApplyXPCommand{
		UserID: userID,
		Delta:  req.Delta,
		Reason: req.Reason,
	}
	if err := cmd.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.ApplyXPHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeError(w, r, err, "failed to apply XP")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// evaluateRequest is the body of POST /api/v1/users/{id}/achievements/evaluate.
// The session block is optional; without it, session-scoped conditions are
// skipped for the pass.
type evaluateRequest struct {
	Session *struct {
		SessionID       string `json:"session_id"`
		CorrectCount    int    `json:"correct_count"`
		TotalCards      int    `json:"total_cards"`
		DurationSeconds int    `json:"duration_seconds"`
		Score           int    `json:"score"`
		SessionXP       int    `json:"session_xp"`
		CompletedAtHour int    `json:"completed_at_hour"`
	} `json:"session,omitempty"`
}

// handleEvaluateAchievements handles POST /api/v1/users/{id}/achievements/evaluate
func (s *Server) handleEvaluateAchievements(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "User ID is required")
		return
	}

	if s.deps.EvaluateAchievementsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Achievement handler not configured")
		return
	}

	var req evaluateRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.EvaluateAchievementsCommand{UserID: userID}
	if req.Session != nil {
		cmd.SessionContext = &session.Context{
			SessionID:       req.Session.SessionID,
			CorrectCount:    req.Session.CorrectCount,
			TotalCards:      req.Session.TotalCards,
			DurationSeconds: req.Session.DurationSeconds,
			Score:           req.Session.Score,
			SessionXP:       req.Session.SessionXP,
			CompletedAtHour: req.Session.CompletedAtHour,
		}
	}

	result, err := s.deps.EvaluateAchievementsHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeError(w, r, err, "failed to evaluate achievements")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// DAILY CHALLENGE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetToday handles GET /api/v1/users/{id}/challenges/today
func (s *Server) handleGetToday(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "User ID is required")
		return
	}

	if s.deps.GetTodayHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Challenge handler not configured")
		return
	}

	result, err := s.deps.GetTodayHandler.Handle(r.Context(), query.GetTodayQuery{UserID: userID})
	if err != nil {
		s.writeError(w, r, err, "failed to get challenge board")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleClaimReward handles POST /api/v1/users/{id}/challenges/{kind}/claim
func (s *Server) handleClaimReward(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "User ID is required")
		return
	}

	kind := challenge.Kind(r.PathValue("kind"))
	if !kind.IsValid() {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Unknown challenge kind")
		return
	}

	if s.deps.ClaimRewardHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Claim handler not configured")
		return
	}

	cmd := command.ClaimRewardCommand{
		UserID:    userID,
		Challenge: kind,
	}

	result, err := s.deps.ClaimRewardHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeError(w, r, err, "failed to claim reward")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// writeError maps a domain error to an HTTP response. Expected rejections map
// to 409 and are not logged as errors; everything unexplained is a 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, logMsg string) {
	switch {
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, shared.ErrAlreadyProcessed):
		writeJSONError(w, http.StatusConflict, "already_claimed", err.Error())
	case errors.Is(err, shared.ErrNotEligible):
		writeJSONError(w, http.StatusConflict, "not_eligible", err.Error())
	default:
		s.logger.Error(logMsg,
			logger.Err(err),
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

// decodeBody decodes a JSON request body. An empty body decodes to the zero
// value, so endpoints with all-optional fields accept bare POSTs.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to read request body")
		return false
	}
	if len(body) == 0 {
		return true
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body")
		return false
	}
	return true
}
