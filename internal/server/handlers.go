package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/lanternhq/lantern/internal/cycles"
)

// defaultTriggerBudget is how long a cycle trigger request holds the
// connection before detaching. Kept under typical proxy timeouts.
const defaultTriggerBudget = 55 * time.Second

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "lantern",
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleSystemStatus handles system status requests
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	s.mu.RLock()
	lastRuns := make(map[string]string, len(s.lastCycleRuns))
	for name, at := range s.lastCycleRuns {
		lastRuns[name] = at.UTC().Format(time.RFC3339)
	}
	s.mu.RUnlock()

	response := map[string]interface{}{
		"status":          "running",
		"last_cycle_runs": lastRuns,
		"memory": map[string]interface{}{
			"alloc_mb":       m.Alloc / 1024 / 1024,
			"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
			"sys_mb":         m.Sys / 1024 / 1024,
			"num_gc":         m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}

	if s.decisions != nil {
		response["decision_fallback_size"] = s.decisions.FallbackSize()
	}

	s.writeJSON(w, http.StatusOK, response)
}

// triggerRequest is the optional body of a cycle trigger request
type triggerRequest struct {
	Brand string `json:"brand"`
}

// handleTriggerBrainCycle runs a brain cycle on demand
func (s *Server) handleTriggerBrainCycle(w http.ResponseWriter, r *http.Request) {
	s.runCycleWithBudget(w, r, func(ctx context.Context, filter string) cycles.CycleResult {
		return s.brain.RunBrainCycle(ctx, "manual", filter)
	})
}

// handleTriggerPublishingCycle runs a publishing cycle on demand
func (s *Server) handleTriggerPublishingCycle(w http.ResponseWriter, r *http.Request) {
	s.runCycleWithBudget(w, r, func(ctx context.Context, filter string) cycles.CycleResult {
		return s.publishing.RunPublishingCycle(ctx, "manual", filter)
	})
}

// runCycleWithBudget starts the cycle immediately and waits up to the
// trigger budget for it to finish. A cycle that outlives the budget keeps
// running detached and the caller gets a 202 instead of a proxy timeout.
func (s *Server) runCycleWithBudget(w http.ResponseWriter, r *http.Request, run func(context.Context, string) cycles.CycleResult) {
	filter := r.URL.Query().Get("brand")
	if filter == "" && r.Body != nil {
		var req triggerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			filter = req.Brand
		}
	}

	done := make(chan cycles.CycleResult, 1)
	go func() {
		// Deliberately detached from the request context: the cycle must
		// complete even if the caller goes away
		done <- run(context.Background(), filter)
	}()

	select {
	case result := <-done:
		s.writeJSON(w, http.StatusOK, result)
	case <-time.After(s.triggerBudget):
		s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "pending"})
	}
}

// handleRecentDecisions returns the most recent decisions, optionally for a
// single brand
func (s *Server) handleRecentDecisions(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	var err error
	var list interface{}
	if brand := r.URL.Query().Get("brand"); brand != "" {
		list, err = s.decisions.RecentForBrand(brand, limit)
	} else {
		list, err = s.decisions.Recent(limit)
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load decisions")
		return
	}

	s.writeJSON(w, http.StatusOK, list)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
