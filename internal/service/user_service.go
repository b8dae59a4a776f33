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

// UserService covers the Profile Service and the admin user management endpoints.
type UserService interface {
	GetProfile(ctx context.Context, identity *models.Identity) (*models.User, error)
	UpdateProfile(ctx context.Context, identity *models.Identity, upd models.ProfileUpdate) (*models.User, error)
	ListUsers(ctx context.Context, identity *models.Identity, skip, limit int) (*models.UserPage, error)
	UpdateUserByAdmin(ctx context.Context, identity *models.Identity, id uuid.UUID, upd models.AdminUserUpdate) (*models.User, error)
}

var _ UserService = (*userServiceImpl)(nil)

type userServiceImpl struct {
	userRepo interfaces.UserRepository
	hasher   PasswordHasher
	events   interfaces.ActivityPublisher
	logger   *zap.Logger
}

// NewUserService creates the profile and admin user service. events may be nil.
func NewUserService(userRepo interfaces.UserRepository, hasher PasswordHasher, events interfaces.ActivityPublisher, logger *zap.Logger) UserService {
	return &userServiceImpl{
		userRepo: userRepo,
		hasher:   hasher,
		events:   events,
		logger:   logger.Named("UserService"),
	}
}

func (s *userServiceImpl) GetProfile(ctx context.Context, identity *models.Identity) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error("Failed to load profile", zap.String("userID", identity.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies a sparse change to the caller's own account.
// A blank full_name clears it; role and activation are not reachable from here.
func (s *userServiceImpl) UpdateProfile(ctx context.Context, identity *models.Identity, upd models.ProfileUpdate) (*models.User, error) {
	patch := models.UserUpdate{}
	if upd.FullName != nil {
		name := ""
		if n := normalizeFullName(upd.FullName); n != nil {
			name = *n
		}
		patch.FullName = &name
	}
	if upd.Password != nil {
		if *upd.Password == "" {
			return nil, models.NewValidationError("password", "must not be empty")
		}
		hashed, err := s.hasher.Hash(*upd.Password)
		if err != nil {
			s.logger.Error("Failed to hash new password", zap.String("userID", identity.ID.String()), zap.Error(err))
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		patch.HashedPassword = &hashed
	}

	if patch.IsEmpty() {
		return s.GetProfile(ctx, identity)
	}

	user, err := s.userRepo.UpdateUser(ctx, identity.ID, patch)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error("Failed to update profile", zap.String("userID", identity.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	reason := "profile"
	if patch.HashedPassword != nil {
		reason = "profile,password"
	}
	s.publish(ctx, models.NewActivityEvent(models.ActivityUserUpdated, &user.ID, user.Email, reason))
	s.logger.Info("Profile updated", zap.String("userID", user.ID.String()))
	return user, nil
}

func (s *userServiceImpl) ListUsers(ctx context.Context, identity *models.Identity, skip, limit int) (*models.UserPage, error) {
	if !identity.IsAdmin() {
		return nil, ErrAdminRequired
	}
	params, err := normalizeListParams(models.ListParams{Skip: skip, Limit: limit}, false)
	if err != nil {
		return nil, err
	}
	users, total, err := s.userRepo.ListUsers(ctx, params.Skip, params.Limit)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return &models.UserPage{Data: users, Meta: models.NewPageMeta(params.Skip, params.Limit, total)}, nil
}

// UpdateUserByAdmin changes role or activation of another account.
// Admins cannot demote or deactivate themselves.
func (s *userServiceImpl) UpdateUserByAdmin(ctx context.Context, identity *models.Identity, id uuid.UUID, upd models.AdminUserUpdate) (*models.User, error) {
	if !identity.IsAdmin() {
		return nil, ErrAdminRequired
	}
	if upd.Role != nil && !models.IsValidRole(*upd.Role) {
		return nil, models.NewValidationError("role", "must be one of admin, user")
	}
	if id == identity.ID {
		if upd.Role != nil && *upd.Role != models.RoleAdmin {
			return nil, models.NewValidationError("role", "admins cannot demote themselves")
		}
		if upd.IsActive != nil && !*upd.IsActive {
			return nil, models.NewValidationError("is_active", "admins cannot deactivate themselves")
		}
	}

	patch := models.UserUpdate{Role: upd.Role, IsActive: upd.IsActive}
	if patch.IsEmpty() {
		user, err := s.userRepo.GetUserByID(ctx, id)
		if err != nil && !errors.Is(err, models.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		return user, err
	}

	user, err := s.userRepo.UpdateUser(ctx, id, patch)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error("Failed to update user by admin", zap.String("targetID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	s.publish(ctx, models.NewActivityEvent(models.ActivityUserUpdated, &user.ID, user.Email, "admin:"+identity.ID.String()))
	s.logger.Info("User updated by admin",
		zap.String("targetID", id.String()),
		zap.String("adminID", identity.ID.String()),
		zap.String("role", user.Role),
		zap.Bool("isActive", user.IsActive))
	return user, nil
}

func (s *userServiceImpl) publish(ctx context.Context, event models.ActivityEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishActivity(ctx, event); err != nil {
		s.logger.Warn("Failed to publish activity event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}
