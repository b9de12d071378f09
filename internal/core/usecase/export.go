package usecase

import (
	"bytes"
	"context"
	"fmt"

	"github.com/kirillkom/kiriman-ayam/internal/core/domain"
	"github.com/kirillkom/kiriman-ayam/internal/core/ports"
)

type ExportUseCase struct {
	repo     ports.BatchRepository
	renderer ports.WorkbookRenderer
}

func NewExportUseCase(repo ports.BatchRepository, renderer ports.WorkbookRenderer) *ExportUseCase {
	return &ExportUseCase{repo: repo, renderer: renderer}
}

func (uc *ExportUseCase) ExportDetail(ctx context.Context, id int64) (*domain.ExportFile, error) {
	batch, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return renderDetail(uc.renderer, *batch)
}

func renderDetail(renderer ports.WorkbookRenderer, batch domain.ShipmentBatch) (*domain.ExportFile, error) {
	var buf bytes.Buffer
	if err := renderer.RenderDetail(&buf, batch); err != nil {
		return nil, fmt.Errorf("render detail workbook: %w", err)
	}
	return &domain.ExportFile{
		Name:    domain.DetailExportName(batch.ShipmentName, batch.PONumber, batch.CreatedAt),
		Content: buf.Bytes(),
	}, nil
}
