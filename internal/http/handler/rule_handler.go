package handler

import (
	"net/http"

	"github.com/oakline-furniture/trade-api/internal/domain"
	"github.com/oakline-furniture/trade-api/internal/service"
	"go.uber.org/zap"
)

type RuleHandler struct {
	rules  *service.RuleService
	logger *zap.Logger
}

func NewRuleHandler(rules *service.RuleService, logger *zap.Logger) *RuleHandler {
	return &RuleHandler{rules: rules, logger: logger}
}

func (h *RuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRuleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dto, err := h.rules.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto)
}

func (h *RuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	dto, err := h.rules.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	var ruleStatus *domain.RuleStatus
	if s := r.URL.Query().Get("ruleStatus"); s != "" {
		status := domain.RuleStatus(s)
		if status != domain.RuleStatusDraft && status != domain.RuleStatusConfirm && status != domain.RuleStatusCancelled {
			respondWithError(w, http.StatusBadRequest, "invalid ruleStatus filter")
			return
		}
		ruleStatus = &status
	}

	dtos, err := h.rules.List(r.Context(), ruleStatus)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dtos)
}

func (h *RuleHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	dto, err := h.rules.Confirm(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

func (h *RuleHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	dto, err := h.rules.Cancel(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// Resolve answers a what-if resolution query without touching any order
func (h *RuleHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req domain.ResolveAccountRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.rules.Resolve(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
