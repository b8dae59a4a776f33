package database

import (
	"context"
	"fmt"

	"primetrade-server/internal/interfaces"
	"primetrade-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const itemColumns = "id, title, description, owner_id, created_at, updated_at"

var _ interfaces.ItemRepository = (*pgItemRepository)(nil)

type pgItemRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgItemRepository creates a new PostgreSQL-backed ItemRepository.
func NewPgItemRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.ItemRepository {
	return &pgItemRepository{
		db:     db,
		logger: logger.Named("PgItemRepo"),
	}
}

func (r *pgItemRepository) Create(ctx context.Context, item *models.Item) error {
	query := `INSERT INTO items (title, description, owner_id) VALUES ($1, NULLIF($2, ''), $3) RETURNING id, description, created_at, updated_at`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("ownerID", item.OwnerID.String()))

	if err := r.db.QueryRow(ctx, query, item.Title, item.Description, item.OwnerID).
		Scan(&item.ID, &item.Description, &item.CreatedAt, &item.UpdatedAt); err != nil {
		r.logger.Error("Failed to create item in postgres", zap.Error(err))
		return fmt.Errorf("failed to create item in postgres: %w", err)
	}
	return nil
}

func (r *pgItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	item := &models.Item{}
	if err := pgxscan.Get(ctx, r.db, item, query, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, models.ErrItemNotFound
		}
		r.logger.Error("Failed to get item from postgres", zap.Error(err), zap.String("itemID", id.String()))
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (r *pgItemRepository) List(ctx context.Context, params models.ListParams) ([]models.Item, int64, error) {
	q := buildListQuery("items", itemColumns, params)
	r.logger.Debug("Executing list query", zap.String("query", q.selectSQL), zap.Any("args", q.args))

	var total int64
	if err := r.db.QueryRow(ctx, q.countSQL, q.countArgs...).Scan(&total); err != nil {
		r.logger.Error("Failed to count items", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count items: %w", err)
	}

	items := make([]models.Item, 0)
	if err := pgxscan.Select(ctx, r.db, &items, q.selectSQL, q.args...); err != nil {
		r.logger.Error("Failed to list items", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list items: %w", err)
	}
	return items, total, nil
}

// Update applies the non-nil fields; an empty description is stored as NULL.
func (r *pgItemRepository) Update(ctx context.Context, id uuid.UUID, upd models.ItemUpdate) (*models.Item, error) {
	if upd.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	queryBase := "UPDATE items SET updated_at = NOW()"
	args := []any{}
	argID := 1
	if upd.Title != nil {
		queryBase += fmt.Sprintf(", title = $%d", argID)
		args = append(args, *upd.Title)
		argID++
	}
	if upd.Description != nil {
		queryBase += fmt.Sprintf(", description = NULLIF($%d, '')", argID)
		args = append(args, *upd.Description)
		argID++
	}
	query := queryBase + fmt.Sprintf(" WHERE id = $%d RETURNING %s", argID, itemColumns)
	args = append(args, id)

	item := &models.Item{}
	if err := pgxscan.Get(ctx, r.db, item, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, models.ErrItemNotFound
		}
		r.logger.Error("Failed to update item", zap.Error(err), zap.String("itemID", id.String()))
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return item, nil
}

func (r *pgItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete item", zap.Error(err), zap.String("itemID", id.String()))
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrItemNotFound
	}
	return nil
}
