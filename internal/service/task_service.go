package service

import (
	"context"
	"errors"
	"fmt"

	"primetrade-server/internal/interfaces"
	"primetrade-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskService is CRUD over tasks scoped by TaskPolicy.
type TaskService interface {
	Create(ctx context.Context, identity *models.Identity, title string, description *string, status *models.TaskStatus) (*models.Task, error)
	Get(ctx context.Context, identity *models.Identity, id uuid.UUID) (*models.Task, error)
	List(ctx context.Context, identity *models.Identity, params models.ListParams) (*models.TaskPage, error)
	Update(ctx context.Context, identity *models.Identity, id uuid.UUID, upd models.TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, identity *models.Identity, id uuid.UUID) error
}

var _ TaskService = (*taskServiceImpl)(nil)

type taskServiceImpl struct {
	repo   interfaces.TaskRepository
	policy ResourcePolicy
	logger *zap.Logger
}

func NewTaskService(repo interfaces.TaskRepository, logger *zap.Logger) TaskService {
	return &taskServiceImpl{
		repo:   repo,
		policy: TaskPolicy,
		logger: logger.Named("TaskService"),
	}
}

func validateStatus(status *models.TaskStatus) error {
	if status != nil && !status.IsValid() {
		return models.NewValidationError("status", "must be one of open, in_progress, done")
	}
	return nil
}

func (s *taskServiceImpl) Create(ctx context.Context, identity *models.Identity, title string, description *string, status *models.TaskStatus) (*models.Task, error) {
	title, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}
	if err := validateStatus(status); err != nil {
		return nil, err
	}
	task := &models.Task{
		Title:       title,
		Description: description,
		Status:      models.TaskStatusOpen,
		OwnerID:     identity.ID,
	}
	if status != nil {
		task.Status = *status
	}
	if err := s.repo.Create(ctx, task); err != nil {
		s.logger.Error("Failed to create task", zap.String("ownerID", identity.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	s.logger.Info("Task created", zap.String("taskID", task.ID.String()), zap.String("ownerID", identity.ID.String()))
	return task, nil
}

func (s *taskServiceImpl) load(ctx context.Context, identity *models.Identity, id uuid.UUID, allowed func(*models.Identity, uuid.UUID) bool) (*models.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrTaskNotFound) {
			return nil, err
		}
		s.logger.Error("Failed to load task", zap.String("taskID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if !allowed(identity, task.OwnerID) {
		return nil, models.ErrTaskNotFound
	}
	return task, nil
}

func (s *taskServiceImpl) Get(ctx context.Context, identity *models.Identity, id uuid.UUID) (*models.Task, error) {
	return s.load(ctx, identity, id, s.policy.CanView)
}

func (s *taskServiceImpl) List(ctx context.Context, identity *models.Identity, params models.ListParams) (*models.TaskPage, error) {
	params, err := normalizeListParams(params, true)
	if err != nil {
		return nil, err
	}
	params.OwnerID = s.policy.ListScope(identity)

	tasks, total, err := s.repo.List(ctx, params)
	if err != nil {
		s.logger.Error("Failed to list tasks", zap.String("userID", identity.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return &models.TaskPage{Data: tasks, Meta: models.NewPageMeta(params.Skip, params.Limit, total)}, nil
}

func (s *taskServiceImpl) Update(ctx context.Context, identity *models.Identity, id uuid.UUID, upd models.TaskUpdate) (*models.Task, error) {
	if upd.Title != nil {
		title, err := normalizeTitle(*upd.Title)
		if err != nil {
			return nil, err
		}
		upd.Title = &title
	}
	if err := validateStatus(upd.Status); err != nil {
		return nil, err
	}

	current, err := s.load(ctx, identity, id, s.policy.CanModify)
	if err != nil {
		return nil, err
	}
	if upd.IsEmpty() {
		return current, nil
	}

	updated, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, models.ErrTaskNotFound) {
			return nil, err
		}
		s.logger.Error("Failed to update task", zap.String("taskID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	s.logger.Info("Task updated", zap.String("taskID", id.String()), zap.String("userID", identity.ID.String()))
	return updated, nil
}

// Delete is owner-only: a task owned by someone else, admin included, is reported as not found.
func (s *taskServiceImpl) Delete(ctx context.Context, identity *models.Identity, id uuid.UUID) error {
	if err := s.policy.PreDeleteCheck(identity); err != nil {
		return err
	}
	if _, err := s.load(ctx, identity, id, s.policy.CanDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrTaskNotFound) {
			return err
		}
		s.logger.Error("Failed to delete task", zap.String("taskID", id.String()), zap.Error(err))
		return fmt.Errorf("failed to delete task: %w", err)
	}
	s.logger.Info("Task deleted", zap.String("taskID", id.String()), zap.String("userID", identity.ID.String()))
	return nil
}
