package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/kiriman-ayam/internal/core/domain"
	"github.com/kirillkom/kiriman-ayam/internal/core/ports"
)

type CatalogUseCase struct {
	catalog ports.ShipmentCatalog
}

func NewCatalogUseCase(catalog ports.ShipmentCatalog) *CatalogUseCase {
	return &CatalogUseCase{catalog: catalog}
}

func (uc *CatalogUseCase) ListShipmentNames(ctx context.Context) ([]domain.ShipmentName, error) {
	names, err := uc.catalog.ListShipmentNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shipment names: %w", err)
	}
	domain.SortShipmentNames(names)
	return names, nil
}
