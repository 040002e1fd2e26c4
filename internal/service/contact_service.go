package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/oakline-furniture/trade-api/internal/domain"
	"github.com/oakline-furniture/trade-api/internal/mapper"
	"github.com/oakline-furniture/trade-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ContactService struct {
	contactRepo *repository.ContactRepository
	logger      *zap.Logger
}

func NewContactService(contactRepo *repository.ContactRepository, logger *zap.Logger) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
		logger:      logger,
	}
}

func (s *ContactService) Create(ctx context.Context, req *domain.CreateContactRequest) (*domain.ContactDTO, error) {
	if !req.Type.IsValid() {
		return nil, fmt.Errorf("%w: invalid contact type %q", ErrValidation, req.Type)
	}

	contact := &domain.Contact{
		Code:            req.Code,
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Address:         req.Address,
		City:            req.City,
		Country:         req.Country,
		Type:            req.Type,
		CreditTermsDays: req.CreditTermsDays,
		Tags:            domain.TagList(req.Tags),
		Notes:           req.Notes,
		IsActive:        true,
	}

	if err := s.contactRepo.Create(ctx, contact); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: contact code %q already exists", ErrConflict, req.Code)
		}
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	dto := mapper.ToContactDTO(contact)
	return &dto, nil
}

func (s *ContactService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContactDTO, error) {
	contact, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contact %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	dto := mapper.ToContactDTO(contact)
	return &dto, nil
}

func (s *ContactService) List(ctx context.Context, page, pageSize int, filters *repository.ContactFilters) ([]domain.ContactDTO, int64, error) {
	contacts, total, err := s.contactRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contacts: %w", err)
	}

	dtos := make([]domain.ContactDTO, len(contacts))
	for i := range contacts {
		dtos[i] = mapper.ToContactDTO(&contacts[i])
	}

	return dtos, total, nil
}

func (s *ContactService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateContactRequest) (*domain.ContactDTO, error) {
	contact, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contact %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	if !req.Type.IsValid() {
		return nil, fmt.Errorf("%w: invalid contact type %q", ErrValidation, req.Type)
	}

	contact.Name = req.Name
	contact.Email = req.Email
	contact.Phone = req.Phone
	contact.Address = req.Address
	contact.City = req.City
	contact.Country = req.Country
	contact.Type = req.Type
	contact.CreditTermsDays = req.CreditTermsDays
	contact.Tags = domain.TagList(req.Tags)
	contact.Notes = req.Notes

	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	dto := mapper.ToContactDTO(contact)
	return &dto, nil
}

// Archive soft-deletes a contact. Contacts referenced by documents are never
// hard-deleted; they just stop appearing in listings.
func (s *ContactService) Archive(ctx context.Context, id uuid.UUID) error {
	if _, err := s.contactRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: contact %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to get contact: %w", err)
	}

	if err := s.contactRepo.Archive(ctx, id); err != nil {
		return fmt.Errorf("failed to archive contact: %w", err)
	}

	s.logger.Info("contact archived", zap.String("contactID", id.String()))
	return nil
}
