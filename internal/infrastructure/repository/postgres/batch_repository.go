package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/kirillkom/kiriman-ayam/internal/core/domain"
)

const batchesTable = "shipment_batches"

var batchColumns = []string{
	"id", "shipment_name", "po_number", "readings", "reading_count", "mean", "max_value", "min_value", "created_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type BatchRepository struct {
	db *sql.DB
}

func NewBatchRepository(db *sql.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

func (r *BatchRepository) Create(ctx context.Context, batch *domain.ShipmentBatch) error {
	query, args, err := psql.Insert(batchesTable).
		Columns(batchColumns[1:]...).
		Values(
			batch.ShipmentName, batch.PONumber, domain.EncodeReadings(batch.Readings),
			batch.Count, batch.Mean, batch.Max, batch.Min, batch.CreatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert batch: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&batch.ID); err != nil {
		return wrapDBError("insert batch", err)
	}
	return nil
}

func (r *BatchRepository) GetByID(ctx context.Context, id int64) (*domain.ShipmentBatch, error) {
	query, args, err := psql.Select(batchColumns...).
		From(batchesTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get batch: %w", err)
	}

	batch, err := scanBatch(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrBatchNotFound, "get batch", fmt.Errorf("id=%d", id))
		}
		return nil, wrapDBError("scan batch", err)
	}
	return batch, nil
}

func (r *BatchRepository) ListRecent(ctx context.Context, limit int) ([]domain.ShipmentBatch, error) {
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}
	query, args, err := psql.Select(batchColumns...).
		From(batchesTable).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list batches: %w", err)
	}
	return r.queryBatches(ctx, "list batches", query, args)
}

func (r *BatchRepository) Count(ctx context.Context, filter domain.BatchFilter) (int, error) {
	query, args, err := applyBatchFilter(psql.Select("COUNT(*)").From(batchesTable), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count batches: %w", err)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, wrapDBError("count batches", err)
	}
	return total, nil
}

// Search returns one page of matches, newest first.
func (r *BatchRepository) Search(ctx context.Context, filter domain.BatchFilter, limit, offset int) ([]domain.ShipmentBatch, error) {
	if limit <= 0 {
		limit = domain.DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	query, args, err := applyBatchFilter(psql.Select(batchColumns...).From(batchesTable), filter).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search batches: %w", err)
	}
	return r.queryBatches(ctx, "search batches", query, args)
}

func (r *BatchRepository) queryBatches(ctx context.Context, operation, query string, args []any) ([]domain.ShipmentBatch, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError(operation, err)
	}
	defer rows.Close()

	out := make([]domain.ShipmentBatch, 0)
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, wrapDBError(operation, err)
		}
		out = append(out, *batch)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(operation, err)
	}
	return out, nil
}

func applyBatchFilter(b squirrel.SelectBuilder, filter domain.BatchFilter) squirrel.SelectBuilder {
	if filter.ShipmentName != "" {
		b = b.Where(squirrel.ILike{"shipment_name": containsPattern(filter.ShipmentName)})
	}
	if filter.PONumber != "" {
		b = b.Where(squirrel.ILike{"po_number": containsPattern(filter.PONumber)})
	}
	return b
}

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (*domain.ShipmentBatch, error) {
	var batch domain.ShipmentBatch
	var raw string
	err := row.Scan(
		&batch.ID, &batch.ShipmentName, &batch.PONumber, &raw,
		&batch.Count, &batch.Mean, &batch.Max, &batch.Min, &batch.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	readings, err := domain.ParseReadings(raw)
	if err != nil {
		return nil, fmt.Errorf("batch %d: %w", batch.ID, err)
	}
	batch.Readings = readings
	return &batch, nil
}
