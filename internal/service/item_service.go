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

// ItemService is CRUD over items scoped by ItemPolicy.
type ItemService interface {
	Create(ctx context.Context, identity *models.Identity, title string, description *string) (*models.Item, error)
	Get(ctx context.Context, identity *models.Identity, id uuid.UUID) (*models.Item, error)
	List(ctx context.Context, identity *models.Identity, params models.ListParams) (*models.ItemPage, error)
	Update(ctx context.Context, identity *models.Identity, id uuid.UUID, upd models.ItemUpdate) (*models.Item, error)
	Delete(ctx context.Context, identity *models.Identity, id uuid.UUID) error
}

var _ ItemService = (*itemServiceImpl)(nil)

type itemServiceImpl struct {
	repo   interfaces.ItemRepository
	policy ResourcePolicy
	logger *zap.Logger
}

func NewItemService(repo interfaces.ItemRepository, logger *zap.Logger) ItemService {
	return &itemServiceImpl{
		repo:   repo,
		policy: ItemPolicy,
		logger: logger.Named("ItemService"),
	}
}

func (s *itemServiceImpl) Create(ctx context.Context, identity *models.Identity, title string, description *string) (*models.Item, error) {
	title, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}
	item := &models.Item{
		Title:       title,
		Description: description,
		OwnerID:     identity.ID,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		s.logger.Error("Failed to create item", zap.String("ownerID", identity.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	s.logger.Info("Item created", zap.String("itemID", item.ID.String()), zap.String("ownerID", identity.ID.String()))
	return item, nil
}

// load returns ErrItemNotFound both for a missing row and for a row the caller may not see.
func (s *itemServiceImpl) load(ctx context.Context, identity *models.Identity, id uuid.UUID, allowed func(*models.Identity, uuid.UUID) bool) (*models.Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrItemNotFound) {
			return nil, err
		}
		s.logger.Error("Failed to load item", zap.String("itemID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if !allowed(identity, item.OwnerID) {
		s.logger.Debug("Item hidden from caller", zap.String("itemID", id.String()), zap.String("userID", identity.ID.String()))
		return nil, models.ErrItemNotFound
	}
	return item, nil
}

func (s *itemServiceImpl) Get(ctx context.Context, identity *models.Identity, id uuid.UUID) (*models.Item, error) {
	return s.load(ctx, identity, id, s.policy.CanView)
}

func (s *itemServiceImpl) List(ctx context.Context, identity *models.Identity, params models.ListParams) (*models.ItemPage, error) {
	params, err := normalizeListParams(params, false)
	if err != nil {
		return nil, err
	}
	params.OwnerID = s.policy.ListScope(identity)

	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		s.logger.Error("Failed to list items", zap.String("userID", identity.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	if items == nil {
		items = []models.Item{}
	}
	return &models.ItemPage{Data: items, Meta: models.NewPageMeta(params.Skip, params.Limit, total)}, nil
}

func (s *itemServiceImpl) Update(ctx context.Context, identity *models.Identity, id uuid.UUID, upd models.ItemUpdate) (*models.Item, error) {
	if upd.Title != nil {
		title, err := normalizeTitle(*upd.Title)
		if err != nil {
			return nil, err
		}
		upd.Title = &title
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
		if errors.Is(err, models.ErrItemNotFound) {
			return nil, err
		}
		s.logger.Error("Failed to update item", zap.String("itemID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	s.logger.Info("Item updated", zap.String("itemID", id.String()), zap.String("userID", identity.ID.String()))
	return updated, nil
}

func (s *itemServiceImpl) Delete(ctx context.Context, identity *models.Identity, id uuid.UUID) error {
	if err := s.policy.PreDeleteCheck(identity); err != nil {
		s.logger.Warn("Item delete refused", zap.String("itemID", id.String()), zap.String("userID", identity.ID.String()))
		return err
	}
	if _, err := s.load(ctx, identity, id, s.policy.CanDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrItemNotFound) {
			return err
		}
		s.logger.Error("Failed to delete item", zap.String("itemID", id.String()), zap.Error(err))
		return fmt.Errorf("failed to delete item: %w", err)
	}
	s.logger.Info("Item deleted", zap.String("itemID", id.String()), zap.String("userID", identity.ID.String()))
	return nil
}
