package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/ahmar7/betabase-sub002/internal/infra/http/middleware"
	"github.com/ahmar7/betabase-sub002/internal/usecase"
)

type EmailQueueHandler struct {
	StatusUC *usecase.EmailQueueStatusUseCase
}

func NewEmailQueueHandler(statusUC *usecase.EmailQueueStatusUseCase) *EmailQueueHandler {
	return &EmailQueueHandler{StatusUC: statusUC}
}

func (h *EmailQueueHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	out, err := h.StatusUC.Execute(r.Context())
	if err != nil {
		log.Printf("[queue-handler] status failed: %v", err)
		http.Error(w, "failed to read queue status", http.StatusInternalServerError)
		return
	}

	middleware.SetEmailQueueDepth(out.Pending)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// HandleClear is destructive and privileged: it wipes every queued welcome
// email unconditionally.
func (h *EmailQueueHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	cleared, err := h.StatusUC.ClearQueue(r.Context())
	if err != nil {
		log.Printf("[queue-handler] clear failed: %v", err)
		http.Error(w, "failed to clear queue", http.StatusInternalServerError)
		return
	}

	middleware.SetEmailQueueDepth(0)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"cleared": cleared})
}
