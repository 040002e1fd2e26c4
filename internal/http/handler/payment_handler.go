package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/oakline-furniture/trade-api/internal/domain"
	"github.com/oakline-furniture/trade-api/internal/repository"
	"github.com/oakline-furniture/trade-api/internal/service"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	payments *service.PaymentService
	logger   *zap.Logger
}

func NewPaymentHandler(payments *service.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, logger: logger}
}

func (h *PaymentHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req domain.RecordPaymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dto, err := h.payments.Record(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto)
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	dto, err := h.payments.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)

	filters := &repository.PaymentFilters{}
	if t := r.URL.Query().Get("type"); t != "" {
		paymentType := domain.PaymentType(t)
		if paymentType != domain.PaymentTypeIncoming && paymentType != domain.PaymentTypeOutgoing {
			respondWithError(w, http.StatusBadRequest, "invalid type filter")
			return
		}
		filters.Type = &paymentType
	}
	if c := r.URL.Query().Get("contactId"); c != "" {
		contactID, err := uuid.Parse(c)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid contactId filter")
			return
		}
		filters.ContactID = &contactID
	}

	dtos, total, err := h.payments.List(r.Context(), page, pageSize, filters)
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

func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.payments.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
