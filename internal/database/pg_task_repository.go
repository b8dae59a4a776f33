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

const taskColumns = "id, title, description, status, owner_id, created_at, updated_at"

var _ interfaces.TaskRepository = (*pgTaskRepository)(nil)

type pgTaskRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgTaskRepository creates a new PostgreSQL-backed TaskRepository.
func NewPgTaskRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.TaskRepository {
	return &pgTaskRepository{
		db:     db,
		logger: logger.Named("PgTaskRepo"),
	}
}

func (r *pgTaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.Status == "" {
		task.Status = models.TaskStatusOpen
	}
	query := `INSERT INTO tasks (title, description, status, owner_id) VALUES ($1, NULLIF($2, ''), $3, $4) RETURNING id, description, created_at, updated_at`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("ownerID", task.OwnerID.String()))

	if err := r.db.QueryRow(ctx, query, task.Title, task.Description, string(task.Status), task.OwnerID).
		Scan(&task.ID, &task.Description, &task.CreatedAt, &task.UpdatedAt); err != nil {
		r.logger.Error("Failed to create task in postgres", zap.Error(err))
		return fmt.Errorf("failed to create task in postgres: %w", err)
	}
	return nil
}

func (r *pgTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task := &models.Task{}
	if err := pgxscan.Get(ctx, r.db, task, query, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, models.ErrTaskNotFound
		}
		r.logger.Error("Failed to get task from postgres", zap.Error(err), zap.String("taskID", id.String()))
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (r *pgTaskRepository) List(ctx context.Context, params models.ListParams) ([]models.Task, int64, error) {
	q := buildListQuery("tasks", taskColumns, params)
	r.logger.Debug("Executing list query", zap.String("query", q.selectSQL), zap.Any("args", q.args))

	var total int64
	if err := r.db.QueryRow(ctx, q.countSQL, q.countArgs...).Scan(&total); err != nil {
		r.logger.Error("Failed to count tasks", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	tasks := make([]models.Task, 0)
	if err := pgxscan.Select(ctx, r.db, &tasks, q.selectSQL, q.args...); err != nil {
		r.logger.Error("Failed to list tasks", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

func (r *pgTaskRepository) Update(ctx context.Context, id uuid.UUID, upd models.TaskUpdate) (*models.Task, error) {
	if upd.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	queryBase := "UPDATE tasks SET updated_at = NOW()"
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
	if upd.Status != nil {
		queryBase += fmt.Sprintf(", status = $%d", argID)
		args = append(args, string(*upd.Status))
		argID++
	}
	query := queryBase + fmt.Sprintf(" WHERE id = $%d RETURNING %s", argID, taskColumns)
	args = append(args, id)

	task := &models.Task{}
	if err := pgxscan.Get(ctx, r.db, task, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, models.ErrTaskNotFound
		}
		r.logger.Error("Failed to update task", zap.Error(err), zap.String("taskID", id.String()))
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

func (r *pgTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete task", zap.Error(err), zap.String("taskID", id.String()))
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrTaskNotFound
	}
	return nil
}
