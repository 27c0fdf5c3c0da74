package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rsouza-dev/leadforge/internal/entity"
	"github.com/rsouza-dev/leadforge/internal/infra/cache"
	"github.com/rsouza-dev/leadforge/internal/usecase"
)

type LeadStore interface {
	Create(ctx context.Context, lead *entity.Lead) error
	FindByID(ctx context.Context, id string) (*entity.Lead, error)
}

type StatusUpdater interface {
	UpdateLeadStatus(ctx context.Context, leadID, actorID string, newStatus entity.LeadStatus, notes, triggeredBy string) (*usecase.TriggerOutcome, error)
}

type EngagementCounter interface {
	CountForLead(ctx context.Context, leadID string) (opens, clicks int, err error)
}

type LeadHandler struct {
	Leads       LeadStore
	Workflow    StatusUpdater
	Engagements EngagementCounter
	Scores      cache.ScoreCache
	rateLimiter *RateLimiter
}

func NewLeadHandler(leads LeadStore, workflow StatusUpdater, engagements EngagementCounter, scores cache.ScoreCache) *LeadHandler {
	return &LeadHandler{
		Leads:       leads,
		Workflow:    workflow,
		Engagements: engagements,
		Scores:      scores,
		rateLimiter: NewRateLimiter(10, time.Minute), // 10 req/min per IP
	}
}

type CaptureLeadRequest struct {
	OwnerID string `json:"owner_id"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
}

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// CaptureLead creates a lead in the initial status. Public endpoint, so it
// sits behind the per-IP rate limiter.
func (h *LeadHandler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clientIP := getClientIP(r)
	if !h.rateLimiter.Allow(clientIP) {
		writeJSON(w, http.StatusTooManyRequests, apiResponse{
			Success: false,
			Message: "Too many requests. Please try again later.",
		})
		return
	}

	var req CaptureLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Invalid JSON"})
		return
	}

	if req.Email == "" {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Email is required"})
		return
	}

	lead := entity.NewLead(req.OwnerID, req.Name, req.Email)
	lead.Phone = req.Phone
	lead.Company = req.Company

	if err := h.Leads.Create(ctx, lead); err != nil {
		writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Failed to capture lead"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": lead.ID})
}

type UpdateStatusRequest struct {
	ActorID     string `json:"actor_id"`
	Status      string `json:"status"`
	Notes       string `json:"notes,omitempty"`
	TriggeredBy string `json:"triggered_by,omitempty"`
}

// UpdateStatus is the manual path around the rule table. A same-status update
// succeeds silently with no history row.
func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: "Invalid JSON"})
		return
	}

	outcome, err := h.Workflow.UpdateLeadStatus(r.Context(), leadID, req.ActorID, entity.LeadStatus(req.Status), req.Notes, req.TriggeredBy)
	if err != nil {
		if usecase.IsDomainError(err) {
			writeJSON(w, http.StatusNotFound, apiResponse{Success: false, Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// GetScore serves the lead's current scoring result, read through the cache.
func (h *LeadHandler) GetScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	leadID := chi.URLParam(r, "leadID")

	if h.Scores != nil {
		if cached, err := h.Scores.Get(ctx, leadID); err == nil && cached != nil {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	lead, err := h.Leads.FindByID(ctx, leadID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Failed to load lead"})
		return
	}
	if lead == nil {
		writeJSON(w, http.StatusNotFound, apiResponse{Success: false, Message: "Lead not found"})
		return
	}

	opens, clicks, err := h.Engagements.CountForLead(ctx, leadID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Failed to load engagement"})
		return
	}

	result := usecase.ScoreLead(lead, opens, clicks)

	if h.Scores != nil {
		_ = h.Scores.Store(ctx, leadID, result)
	}

	writeJSON(w, http.StatusOK, result)
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
}

type visitor struct {
	count     int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
	}

	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	now := time.Now()

	if !exists {
		rl.visitors[ip] = &visitor{count: 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.count = 1
		v.lastReset = now
		return true
	}

	v.count++
	return v.count <= rl.limit
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for ip, v := range rl.visitors {
			if now.Sub(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}
