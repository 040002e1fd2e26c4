package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/oakline-furniture/trade-api/internal/domain"
	"github.com/oakline-furniture/trade-api/internal/mapper"
	"github.com/oakline-furniture/trade-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RuleService manages auto-analytical rules and resolves the cost center for
// an order line.
//
// Resolution order:
//  1. an explicit account on the line always wins (user override)
//  2. the most specific matching rule among confirmed auto-apply rules;
//     ties go to the most recently updated rule, then the lowest id
//  3. the product's own default analytical account
//  4. nil — the line stays unassigned
//
// Resolution runs at order create/update time only; rule changes are never
// applied retroactively to existing lines.
type RuleService struct {
	ruleRepo    *repository.RuleRepository
	accountRepo *repository.AnalyticalAccountRepository
	contactRepo *repository.ContactRepository
	productRepo *repository.ProductRepository
	logger      *zap.Logger
}

func NewRuleService(
	ruleRepo *repository.RuleRepository,
	accountRepo *repository.AnalyticalAccountRepository,
	contactRepo *repository.ContactRepository,
	productRepo *repository.ProductRepository,
	logger *zap.Logger,
) *RuleService {
	return &RuleService{
		ruleRepo:    ruleRepo,
		accountRepo: accountRepo,
		contactRepo: contactRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

func (s *RuleService) Create(ctx context.Context, req *domain.CreateRuleRequest) (*domain.RuleDTO, error) {
	if req.PartnerID == nil && req.PartnerTag == nil && req.ProductCategory == nil && req.ProductID == nil {
		return nil, fmt.Errorf("%w: rule needs at least one match field", ErrValidation)
	}

	account, err := s.accountRepo.GetByID(ctx, req.AnalyticalAccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: analytical account %s", ErrNotFound, req.AnalyticalAccountID)
		}
		return nil, fmt.Errorf("failed to get analytical account: %w", err)
	}
	if account.Status == domain.AccountStatusArchived {
		return nil, fmt.Errorf("%w: analytical account %s is archived", ErrValidation, account.Code)
	}

	rule := &domain.AutoAnalyticalRule{
		Name:                req.Name,
		PartnerID:           req.PartnerID,
		PartnerTag:          req.PartnerTag,
		ProductCategoryKey:  req.ProductCategory,
		ProductID:           req.ProductID,
		AnalyticalAccountID: req.AnalyticalAccountID,
		AutoApply:           req.AutoApply,
		Status:              domain.AccountStatusConfirmed,
		RuleStatus:          domain.RuleStatusDraft,
	}

	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create rule: %w", err)
	}

	dto := mapper.ToRuleDTO(rule)
	return &dto, nil
}

func (s *RuleService) GetByID(ctx context.Context, id uuid.UUID) (*domain.RuleDTO, error) {
	rule, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: rule %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}

	dto := mapper.ToRuleDTO(rule)
	return &dto, nil
}

func (s *RuleService) List(ctx context.Context, ruleStatus *domain.RuleStatus) ([]domain.RuleDTO, error) {
	rules, err := s.ruleRepo.List(ctx, ruleStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}

	dtos := make([]domain.RuleDTO, len(rules))
	for i := range rules {
		dtos[i] = mapper.ToRuleDTO(&rules[i])
	}

	return dtos, nil
}

// Confirm moves a rule from DRAFT into the resolution candidate pool
func (s *RuleService) Confirm(ctx context.Context, id uuid.UUID) (*domain.RuleDTO, error) {
	rule, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: rule %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}

	if rule.RuleStatus != domain.RuleStatusDraft {
		return nil, fmt.Errorf("%w: rule is %s, only draft rules can be confirmed", ErrInvalidState, rule.RuleStatus)
	}

	rule.RuleStatus = domain.RuleStatusConfirm
	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to confirm rule: %w", err)
	}

	dto := mapper.ToRuleDTO(rule)
	return &dto, nil
}

// Cancel takes a rule out of the candidate pool permanently
func (s *RuleService) Cancel(ctx context.Context, id uuid.UUID) (*domain.RuleDTO, error) {
	rule, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: rule %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}

	if rule.RuleStatus == domain.RuleStatusCancelled {
		return nil, fmt.Errorf("%w: rule is already cancelled", ErrInvalidState)
	}

	rule.RuleStatus = domain.RuleStatusCancelled
	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to cancel rule: %w", err)
	}

	dto := mapper.ToRuleDTO(rule)
	return &dto, nil
}

// ResolveForLine picks the analytical account for a line. The explicit
// account passes through untouched.
func (s *RuleService) ResolveForLine(ctx context.Context, contact *domain.Contact, product *domain.Product, explicit *uuid.UUID) (*uuid.UUID, error) {
	if explicit != nil {
		return explicit, nil
	}

	candidates, err := s.ruleRepo.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rule candidates: %w", err)
	}

	categoryKey := product.CategoryKey()
	tags := []string(contact.Tags)

	var matches []domain.AutoAnalyticalRule
	for i := range candidates {
		if candidates[i].Matches(contact.ID, tags, categoryKey, product.ID) {
			matches = append(matches, candidates[i])
		}
	}

	if len(matches) > 0 {
		// Candidates arrive ordered by updated_at desc, id asc; a stable
		// sort on specificity keeps that as the tie-break
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].Specificity() > matches[j].Specificity()
		})
		accountID := matches[0].AnalyticalAccountID
		return &accountID, nil
	}

	if product.AnalyticalAccountID != nil {
		return product.AnalyticalAccountID, nil
	}
	return nil, nil
}

// Resolve answers a what-if query from the API: which account would a line
// with these attributes get.
func (s *RuleService) Resolve(ctx context.Context, req *domain.ResolveAccountRequest) (*domain.ResolveAccountResponse, error) {
	contact, err := s.contactRepo.GetByID(ctx, req.ContactID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contact %s", ErrNotFound, req.ContactID)
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, req.ProductID)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	accountID, err := s.ResolveForLine(ctx, contact, product, req.AnalyticalAccountID)
	if err != nil {
		return nil, err
	}

	return &domain.ResolveAccountResponse{AnalyticalAccountID: accountID}, nil
}
