package jobs

import (
	"context"
	"time"

	"github.com/oakline-furniture/trade-api/internal/service"
	"go.uber.org/zap"
)

// Confirmation never fails when document generation does; the sweep exists
// so those orders still get their invoice or bill without operator action.
const documentRetryBatchSize = 100

// DocumentRetryJob re-runs derived-document generation for confirmed orders
// that are still missing one.
type DocumentRetryJob struct {
	documents *service.DerivedDocumentService
	logger    *zap.Logger
}

func NewDocumentRetryJob(documents *service.DerivedDocumentService, logger *zap.Logger) *DocumentRetryJob {
	return &DocumentRetryJob{
		documents: documents,
		logger:    logger,
	}
}

// Run executes one sweep
func (j *DocumentRetryJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	created, err := j.documents.GenerateMissing(ctx, documentRetryBatchSize)
	if err != nil {
		j.logger.Error("document retry sweep failed", zap.Error(err))
		return
	}
	if created > 0 {
		j.logger.Info("document retry sweep generated documents",
			zap.Int("created", created))
	}
}
