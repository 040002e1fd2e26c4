package handler

import (
	"net/http"

	"github.com/oakline-furniture/trade-api/internal/domain"
	"github.com/oakline-furniture/trade-api/internal/repository"
	"github.com/oakline-furniture/trade-api/internal/service"
	"go.uber.org/zap"
)

type ContactHandler struct {
	contacts *service.ContactService
	logger   *zap.Logger
}

func NewContactHandler(contacts *service.ContactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{contacts: contacts, logger: logger}
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateContactRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dto, err := h.contacts.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto)
}

func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	dto, err := h.contacts.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)

	filters := &repository.ContactFilters{
		Search: r.URL.Query().Get("search"),
		Tag:    r.URL.Query().Get("tag"),
	}
	if t := r.URL.Query().Get("type"); t != "" {
		contactType := domain.ContactType(t)
		if !contactType.IsValid() {
			respondWithError(w, http.StatusBadRequest, "invalid contact type filter")
			return
		}
		filters.Type = &contactType
	}

	dtos, total, err := h.contacts.List(r.Context(), page, pageSize, filters)
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

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req domain.UpdateContactRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dto, err := h.contacts.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto)
}

func (h *ContactHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.contacts.Archive(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
