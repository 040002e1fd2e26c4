package handler

import (
	"net/http"

	"github.com/oakline-furniture/trade-api/internal/domain"
	"github.com/oakline-furniture/trade-api/internal/service"
	"go.uber.org/zap"
)

type AnalyticalAccountHandler struct {
	accounts *service.AnalyticalAccountService
	logger   *zap.Logger
}

func NewAnalyticalAccountHandler(accounts *service.AnalyticalAccountService, logger *zap.Logger) *AnalyticalAccountHandler {
	return &AnalyticalAccountHandler{accounts: accounts, logger: logger}
}

func (h *AnalyticalAccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAnalyticalAccountRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dto, err := h.accounts.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto)
}

func (h *AnalyticalAccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	dto, err := h.accounts.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

func (h *AnalyticalAccountHandler) List(w http.ResponseWriter, r *http.Request) {
	var status *domain.AccountStatus
	if s := r.URL.Query().Get("status"); s != "" {
		accountStatus := domain.AccountStatus(s)
		if accountStatus != domain.AccountStatusConfirmed && accountStatus != domain.AccountStatusArchived {
			respondWithError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		status = &accountStatus
	}

	dtos, err := h.accounts.List(r.Context(), status)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dtos)
}

func (h *AnalyticalAccountHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	dtos, err := h.accounts.ListChildren(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dtos)
}

func (h *AnalyticalAccountHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.accounts.Archive(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
