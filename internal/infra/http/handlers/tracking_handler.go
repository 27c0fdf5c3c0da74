package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rsouza-dev/leadforge/internal/entity"
	"github.com/rsouza-dev/leadforge/internal/infra/cache"
	"github.com/rsouza-dev/leadforge/internal/infra/http/middleware"
	"github.com/rsouza-dev/leadforge/internal/usecase"
)

// transparent 1x1 GIF served for open pixels
var trackingPixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

type TriggerProcessor interface {
	ProcessTrigger(ctx context.Context, leadID, actorID string, trigger usecase.Trigger, metadata, notes string) (*usecase.TriggerOutcome, error)
}

// TrackingHandler ingests open and click events from email clients. These
// endpoints are hit by mail readers and link clicks, not by our own UI.
type TrackingHandler struct {
	Engagements usecase.EngagementRepository
	Leads       usecase.LeadRepository
	Workflow    TriggerProcessor
	Scores      cache.ScoreCache
	Log         *slog.Logger
}

func NewTrackingHandler(engagements usecase.EngagementRepository, leads usecase.LeadRepository, workflow TriggerProcessor, scores cache.ScoreCache, log *slog.Logger) *TrackingHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TrackingHandler{
		Engagements: engagements,
		Leads:       leads,
		Workflow:    workflow,
		Scores:      scores,
		Log:         log,
	}
}

// HandleOpen records an open event and serves the pixel. It always returns
// the pixel, even when recording fails: a broken image in the email is worse
// than a lost event.
func (h *TrackingHandler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	messageID := chi.URLParam(r, "messageID")
	leadID := r.URL.Query().Get("lead")

	h.record(r.Context(), messageID, leadID, entity.EngagementOpen)

	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(trackingPixel)
}

// HandleClick records a click event, fires the link_clicked trigger, and
// redirects to the target URL.
func (h *TrackingHandler) HandleClick(w http.ResponseWriter, r *http.Request) {
	messageID := chi.URLParam(r, "messageID")
	leadID := r.URL.Query().Get("lead")
	target := r.URL.Query().Get("url")

	h.record(r.Context(), messageID, leadID, entity.EngagementClick)

	if leadID != "" {
		if _, err := h.Workflow.ProcessTrigger(r.Context(), leadID, "", usecase.TriggerLinkClicked, "message_id="+messageID, ""); err != nil {
			h.Log.Warn("link_clicked trigger failed", "lead_id", leadID, "err", err)
		}
	}

	if target == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *TrackingHandler) record(ctx context.Context, messageID, leadID string, kind entity.EngagementType) {
	if messageID == "" {
		return
	}

	ev := entity.NewEngagementEvent(messageID, leadID, kind)
	if err := h.Engagements.Append(ctx, ev); err != nil {
		h.Log.Error("engagement event write failed", "message_id", messageID, "type", string(kind), "err", err)
		return
	}

	middleware.RecordEngagementEvent(string(kind))

	if leadID != "" {
		h.rescore(ctx, leadID)
	}
}

// rescore recomputes the lead score from current engagement counters and
// refreshes the cached result.
func (h *TrackingHandler) rescore(ctx context.Context, leadID string) {
	lead, err := h.Leads.FindByID(ctx, leadID)
	if err != nil || lead == nil {
		return
	}

	opens, clicks, err := h.Engagements.CountForLead(ctx, leadID)
	if err != nil {
		h.Log.Warn("engagement count failed", "lead_id", leadID, "err", err)
		return
	}

	result := usecase.ScoreLead(lead, opens, clicks)
	if err := h.Leads.UpdateScore(ctx, leadID, result.Score); err != nil {
		h.Log.Warn("score update failed", "lead_id", leadID, "err", err)
	}

	if h.Scores != nil {
		if err := h.Scores.Store(ctx, leadID, result); err != nil {
			h.Log.Warn("score cache store failed", "lead_id", leadID, "err", err)
		}
	}
}
