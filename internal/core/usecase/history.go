package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/kiriman-ayam/internal/core/domain"
	"github.com/kirillkom/kiriman-ayam/internal/core/ports"
)

type HistoryUseCase struct {
	repo        ports.BatchRepository
	recentLimit int
	pageSize    int
}

func NewHistoryUseCase(repo ports.BatchRepository, recentLimit, pageSize int) *HistoryUseCase {
	if recentLimit <= 0 {
		recentLimit = domain.DefaultHistoryLimit
	}
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	return &HistoryUseCase{
		repo:        repo,
		recentLimit: recentLimit,
		pageSize:    pageSize,
	}
}

func (uc *HistoryUseCase) Recent(ctx context.Context) ([]domain.ShipmentBatch, error) {
	batches, err := uc.repo.ListRecent(ctx, uc.recentLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent batches: %w", err)
	}
	return batches, nil
}

// Search counts the matches first so an out-of-range page is clamped before the page query.
func (uc *HistoryUseCase) Search(ctx context.Context, filter domain.BatchFilter, page int) (domain.Page[domain.ShipmentBatch], error) {
	total, err := uc.repo.Count(ctx, filter)
	if err != nil {
		return domain.Page[domain.ShipmentBatch]{}, fmt.Errorf("count batches: %w", err)
	}

	totalPages := domain.PageCount(total, uc.pageSize)
	page = domain.ClampPage(page, totalPages)
	result := domain.Page[domain.ShipmentBatch]{
		Items:      []domain.ShipmentBatch{},
		Page:       page,
		PageSize:   uc.pageSize,
		TotalPages: totalPages,
		TotalItems: total,
	}
	if total == 0 {
		return result, nil
	}

	items, err := uc.repo.Search(ctx, filter, uc.pageSize, (page-1)*uc.pageSize)
	if err != nil {
		return domain.Page[domain.ShipmentBatch]{}, fmt.Errorf("search batches: %w", err)
	}
	result.Items = items
	return result, nil
}

func (uc *HistoryUseCase) Detail(ctx context.Context, id int64) (*domain.BatchDetail, error) {
	batch, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}
	detail := domain.NewBatchDetail(*batch)
	return &detail, nil
}
