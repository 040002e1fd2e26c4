package handler

import (
	"net/http"

	"github.com/oakline-furniture/trade-api/internal/domain"
	"github.com/oakline-furniture/trade-api/internal/service"
	"go.uber.org/zap"
)

type BudgetHandler struct {
	budgets *service.BudgetService
	logger  *zap.Logger
}

func NewBudgetHandler(budgets *service.BudgetService, logger *zap.Logger) *BudgetHandler {
	return &BudgetHandler{budgets: budgets, logger: logger}
}

func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateBudgetRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dto, err := h.budgets.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto)
}

func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	dto, err := h.budgets.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

func (h *BudgetHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)

	var stage *domain.BudgetStage
	if s := r.URL.Query().Get("stage"); s != "" {
		budgetStage := domain.BudgetStage(s)
		switch budgetStage {
		case domain.BudgetStageDraft, domain.BudgetStageConfirm,
			domain.BudgetStageRevised, domain.BudgetStageCancelled:
			stage = &budgetStage
		default:
			respondWithError(w, http.StatusBadRequest, "invalid stage filter")
			return
		}
	}

	dtos, total, err := h.budgets.List(r.Context(), page, pageSize, stage)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.PaginatedResponse{
		Items:    dtos,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *BudgetHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	dto, err := h.budgets.Confirm(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

func (h *BudgetHandler) Revise(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	req := &domain.ReviseBudgetRequest{}
	if r.ContentLength > 0 {
		if !decodeAndValidate(w, r, req) {
			return
		}
	}

	dto, err := h.budgets.Revise(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto)
}

func (h *BudgetHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	dto, err := h.budgets.Cancel(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// UpdateAchieved sets the achieved amount on one budget line
func (h *BudgetHandler) UpdateAchieved(w http.ResponseWriter, r *http.Request) {
	lineID, ok := uuidParam(w, r, "lineId")
	if !ok {
		return
	}

	var req domain.UpdateAchievedRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dto, err := h.budgets.UpdateAchieved(r.Context(), lineID, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto)
}
