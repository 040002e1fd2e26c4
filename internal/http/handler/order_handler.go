package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/oakline-furniture/trade-api/internal/domain"
	"github.com/oakline-furniture/trade-api/internal/repository"
	"github.com/oakline-furniture/trade-api/internal/service"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders    *service.OrderService
	documents *service.DerivedDocumentService
	logger    *zap.Logger
}

func NewOrderHandler(orders *service.OrderService, documents *service.DerivedDocumentService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, documents: documents, logger: logger}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dto, err := h.orders.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	dto, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)

	filters := &repository.OrderFilters{}
	if d := r.URL.Query().Get("direction"); d != "" {
		direction := domain.OrderDirection(d)
		if !direction.IsValid() {
			respondWithError(w, http.StatusBadRequest, "invalid direction filter")
			return
		}
		filters.Direction = &direction
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.OrderStatus(s)
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

	dtos, total, err := h.orders.List(r.Context(), page, pageSize, filters)
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

func (h *OrderHandler) UpdateLines(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req domain.UpdateOrderLinesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dto, err := h.orders.UpdateLines(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

func (h *OrderHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	dto, err := h.orders.Send(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

func (h *OrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	// Body is optional: an empty body confirms with a draft document
	req := &domain.ConfirmOrderRequest{}
	if r.ContentLength > 0 {
		if !decodeAndValidate(w, r, req) {
			return
		}
	}

	dto, err := h.orders.Confirm(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	dto, err := h.orders.Cancel(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

// GetDocument returns the invoice or bill derived from the order
func (h *OrderHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	dto, err := h.documents.GetBySourceOrder(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto)
}
