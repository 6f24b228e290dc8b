package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ahmar7/betabase-sub002/internal/infra/http/middleware"
	"github.com/ahmar7/betabase-sub002/internal/infra/progress"
	"github.com/ahmar7/betabase-sub002/internal/infra/queue"
	"github.com/ahmar7/betabase-sub002/internal/usecase"
)

type ActivationHandler struct {
	ActivateUC *usecase.ActivateLeadsUseCase
	Producer   queue.ActivationProducerInterface
	Reporter   *progress.Reporter
}

func NewActivationHandler(uc *usecase.ActivateLeadsUseCase, producer queue.ActivationProducerInterface, reporter *progress.Reporter) *ActivationHandler {
	return &ActivationHandler{
		ActivateUC: uc,
		Producer:   producer,
		Reporter:   reporter,
	}
}

type activateRequest struct {
	LeadIDs   []string `json:"lead_ids"`
	SessionID string   `json:"session_id,omitempty"`
}

// HandleActivate is the tightly coupled entry point: user creation plus
// inline email delivery, progress streamed back as server-sent events.
func (h *ActivationHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.LeadIDs) == 0 {
		http.Error(w, "lead_ids is required", http.StatusBadRequest)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	sink := h.Reporter.Open(sessionID)

	// the lead loop survives a dropped client: half-created users with no
	// queued emails would be worse than a wasted stream
	runCtx := context.WithoutCancel(r.Context())
	go func() {
		out, err := h.ActivateUC.Execute(runCtx, usecase.ActivateLeadsInput{
			SessionID:  sessionID,
			LeadIDs:    req.LeadIDs,
			InlineSend: true,
		})
		if err != nil {
			log.Printf("[activation-handler] session=%s: %v", sessionID, err)
		}
		if out != nil {
			middleware.RecordActivations("activated", out.Activated)
			middleware.RecordActivations("skipped", out.Skipped)
			middleware.RecordActivations("failed", out.Failed)
		}
		h.Reporter.Close(sessionID)
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ev := range sink {
		data, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		if _, err := w.Write([]byte("data: " + string(data) + "\n\n")); err != nil {
			// client gone; keep draining so the producer can finish
			continue
		}
		flusher.Flush()
	}
}

// HandleActivateAsync is the decoupled entry point: users are created and
// emails queued synchronously, delivery is left to the background drain.
func (h *ActivationHandler) HandleActivateAsync(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	// same rationale as the SSE path: a dropped client must not leave
	// half-created users with no queued emails
	out, err := h.ActivateUC.Execute(context.WithoutCancel(r.Context()), usecase.ActivateLeadsInput{
		SessionID: req.SessionID,
		LeadIDs:   req.LeadIDs,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if usecase.IsDomainError(err) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	middleware.RecordActivations("activated", out.Activated)
	middleware.RecordActivations("skipped", out.Skipped)
	middleware.RecordActivations("failed", out.Failed)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(out)
}

// HandleEnqueue hands the whole batch to the broker. Preferred for large
// batches: request duration no longer depends on batch size at all.
func (h *ActivationHandler) HandleEnqueue(w http.ResponseWriter, r *http.Request) {
	if h.Producer == nil {
		http.Error(w, "activation queue not configured", http.StatusServiceUnavailable)
		return
	}

	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.LeadIDs) == 0 {
		http.Error(w, "lead_ids is required", http.StatusBadRequest)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	err := h.Producer.PublishActivation(r.Context(), queue.ActivationJob{
		SessionID: sessionID,
		LeadIDs:   req.LeadIDs,
	})
	if err != nil {
		log.Printf("[activation-handler] enqueue failed: %v", err)
		http.Error(w, "failed to enqueue activation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"session_id": sessionID})
}

// HandleProgress serves the polling fallback for clients that lost the
// live stream.
func (h *ActivationHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")

	snapshot, ok := h.Reporter.Get(sessionID)
	if !ok {
		http.Error(w, "session unknown or expired", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}
