package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kirillkom/kiriman-ayam/internal/core/domain"
)

type ShipmentRepository struct {
	db *sql.DB
}

func NewShipmentRepository(db *sql.DB) *ShipmentRepository {
	return &ShipmentRepository{db: db}
}

func (r *ShipmentRepository) ListShipmentNames(ctx context.Context) ([]domain.ShipmentName, error) {
	query, args, err := psql.Select("id", "name").
		From("shipment_names").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list shipment names: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("list shipment names", err)
	}
	defer rows.Close()

	out := make([]domain.ShipmentName, 0)
	for rows.Next() {
		var name domain.ShipmentName
		if err := rows.Scan(&name.ID, &name.Name); err != nil {
			return nil, wrapDBError("scan shipment name", err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("list shipment names", err)
	}
	return out, nil
}
