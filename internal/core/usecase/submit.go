package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/kiriman-ayam/internal/core/domain"
	"github.com/kirillkom/kiriman-ayam/internal/core/ports"
)

type SubmitBatchUseCase struct {
	repo  ports.BatchRepository
	queue ports.MessageQueue
	now   func() time.Time
}

func NewSubmitBatchUseCase(repo ports.BatchRepository, queue ports.MessageQueue) *SubmitBatchUseCase {
	return &SubmitBatchUseCase{
		repo:  repo,
		queue: queue,
		now:   time.Now,
	}
}

func (uc *SubmitBatchUseCase) Submit(ctx context.Context, in domain.NewBatch) (*domain.ShipmentBatch, error) {
	normalized := in.Normalize()
	if err := normalized.Validate(); err != nil {
		return nil, err
	}

	batch := normalized.Seal(uc.now())
	if err := uc.repo.Create(ctx, &batch); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}

	// The batch is stored at this point; a lost event only skips the archive copy.
	if uc.queue != nil {
		if err := uc.queue.PublishBatchSubmitted(ctx, batch.ID); err != nil {
			slog.Warn("batch_event_publish_failed", "batch_id", batch.ID, "error", err.Error())
		}
	}

	return &batch, nil
}
