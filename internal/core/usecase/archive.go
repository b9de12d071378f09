package usecase

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/kirillkom/kiriman-ayam/internal/core/ports"
)

const archivePrefix = "exports"

type ArchiveBatchUseCase struct {
	repo     ports.BatchRepository
	renderer ports.WorkbookRenderer
	storage  ports.ObjectStorage

	now        func() time.Time
	observeLag func(time.Duration)
}

func NewArchiveBatchUseCase(
	repo ports.BatchRepository,
	renderer ports.WorkbookRenderer,
	storage ports.ObjectStorage,
) *ArchiveBatchUseCase {
	return &ArchiveBatchUseCase{
		repo:     repo,
		renderer: renderer,
		storage:  storage,
		now:      time.Now,
	}
}

// WithLagObserver reports the delay between a batch's creation and the start of its archiving.
func (uc *ArchiveBatchUseCase) WithLagObserver(fn func(time.Duration)) *ArchiveBatchUseCase {
	uc.observeLag = fn
	return uc
}

// ArchiveByID is idempotent: the key depends only on the stored batch.
func (uc *ArchiveBatchUseCase) ArchiveByID(ctx context.Context, batchID int64) error {
	batch, err := uc.repo.GetByID(ctx, batchID)
	if err != nil {
		return fmt.Errorf("load batch: %w", err)
	}
	if uc.observeLag != nil {
		uc.observeLag(uc.now().Sub(batch.CreatedAt))
	}

	file, err := renderDetail(uc.renderer, *batch)
	if err != nil {
		return err
	}

	if err := uc.storage.Save(ctx, ArchiveKey(batchID, file.Name), bytes.NewReader(file.Content)); err != nil {
		return fmt.Errorf("save archive: %w", err)
	}
	return nil
}

func ArchiveKey(batchID int64, fileName string) string {
	return path.Join(archivePrefix, strconv.FormatInt(batchID, 10), fileName)
}
