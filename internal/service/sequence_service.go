package service

import (
	"context"
	"fmt"

	"github.com/oakline-furniture/trade-api/internal/domain"
	"github.com/oakline-furniture/trade-api/internal/repository"
	"go.uber.org/zap"
)

// SequenceService issues formatted document numbers.
//
// Format: {PREFIX}-{zero-padded counter}
// Example: PO-00001, INV-00007
//
// Every document type draws from its own counter. Issuance is a single
// atomic increment at the storage layer, so concurrent callers never see
// the same number twice.
type SequenceService struct {
	repo   *repository.SequenceRepository
	logger *zap.Logger
}

// NewSequenceService creates a new SequenceService
func NewSequenceService(repo *repository.SequenceRepository, logger *zap.Logger) *SequenceService {
	return &SequenceService{
		repo:   repo,
		logger: logger,
	}
}

// NextValue issues the next number for a document type
func (s *SequenceService) NextValue(ctx context.Context, seqType domain.SequenceType) (string, error) {
	seq, err := s.repo.Next(ctx, seqType)
	if err != nil {
		s.logger.Error("failed to issue sequence number",
			zap.String("sequenceType", string(seqType)),
			zap.Error(err))
		return "", fmt.Errorf("failed to issue number for %s: %w", seqType, err)
	}

	number := fmt.Sprintf("%s-%0*d", seq.Prefix, seq.Padding, seq.NextNumber)

	s.logger.Debug("issued document number",
		zap.String("number", number),
		zap.String("sequenceType", string(seqType)),
		zap.Int64("counter", seq.NextNumber))

	return number, nil
}

// List returns all sequence counters
func (s *SequenceService) List(ctx context.Context) ([]domain.DocumentSequence, error) {
	return s.repo.List(ctx)
}
