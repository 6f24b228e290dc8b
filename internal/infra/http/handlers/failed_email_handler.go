package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/ahmar7/betabase-sub002/internal/entity"
	"github.com/ahmar7/betabase-sub002/internal/usecase"
)

type FailedEmailHandler struct {
	FailedRepo entity.FailedEmailRepositoryInterface
	ResendUC   *usecase.ResendFailedEmailsUseCase
}

func NewFailedEmailHandler(failedRepo entity.FailedEmailRepositoryInterface, resendUC *usecase.ResendFailedEmailsUseCase) *FailedEmailHandler {
	return &FailedEmailHandler{
		FailedRepo: failedRepo,
		ResendUC:   resendUC,
	}
}

type failedEmailListResponse struct {
	Items []*entity.FailedEmail `json:"items"`
	Total int                   `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

func (h *FailedEmailHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 20
	}
	status := q.Get("status")

	items, total, err := h.FailedRepo.List(r.Context(), status, page, limit)
	if err != nil {
		log.Printf("[failed-handler] list failed: %v", err)
		http.Error(w, "failed to list failed emails", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(failedEmailListResponse{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

func (h *FailedEmailHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	out, err := h.ResendUC.Execute(r.Context(), usecase.ResendFailedEmailsInput{IDs: req.IDs})
	if err != nil {
		status := http.StatusInternalServerError
		if usecase.IsDomainError(err) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func (h *FailedEmailHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.IDs) == 0 {
		http.Error(w, "ids is required", http.StatusBadRequest)
		return
	}

	deleted, err := h.FailedRepo.DeleteByIDs(r.Context(), req.IDs)
	if err != nil {
		log.Printf("[failed-handler] delete failed: %v", err)
		http.Error(w, "failed to delete failed emails", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"deleted": deleted})
}
