package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/oakline-furniture/trade-api/internal/domain"
	"github.com/oakline-furniture/trade-api/internal/repository"
	"github.com/oakline-furniture/trade-api/internal/service"
	"go.uber.org/zap"
)

type DocumentHandler struct {
	documents *service.DerivedDocumentService
	payments  *service.PaymentService
	sequences *service.SequenceService
	logger    *zap.Logger
}

func NewDocumentHandler(
	documents *service.DerivedDocumentService,
	payments *service.PaymentService,
	sequences *service.SequenceService,
	logger *zap.Logger,
) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		payments:  payments,
		sequences: sequences,
		logger:    logger,
	}
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	dto, err := h.documents.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)

	filters := &repository.DocumentFilters{}
	if d := r.URL.Query().Get("direction"); d != "" {
		direction := domain.OrderDirection(d)
		if !direction.IsValid() {
			respondWithError(w, http.StatusBadRequest, "invalid direction filter")
			return
		}
		filters.Direction = &direction
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.DocumentStatus(s)
		if !status.IsValid() {
			respondWithError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		filters.Status = &status
	}
	if c := r.URL.Query().Get("contactId"); c != "" {
		contactID, err := uuid.Parse(c)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid contactId filter")
			return
		}
		filters.ContactID = &contactID
	}

	dtos, total, err := h.documents.List(r.Context(), page, pageSize, filters)
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

func (h *DocumentHandler) Post(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	dto, err := h.documents.Post(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

func (h *DocumentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	dto, err := h.documents.Cancel(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// ListPayments returns the document's payment history
func (h *DocumentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	dtos, err := h.payments.ListByDocument(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dtos)
}

// ListSequences exposes the sequence counters for operators
func (h *DocumentHandler) ListSequences(w http.ResponseWriter, r *http.Request) {
	sequences, err := h.sequences.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sequences)
}
