package service

import (
	"context"
	"errors"
	"fmt"

	"primetrade-server/internal/interfaces"
	"primetrade-server/internal/models"

	"go.uber.org/zap"
)

var _ AccessGuard = (*accessGuardImpl)(nil)

type accessGuardImpl struct {
	userRepo interfaces.UserRepository
	codec    TokenCodec
	logger   *zap.Logger
}

// NewAccessGuard creates the guard used by protected routes.
func NewAccessGuard(userRepo interfaces.UserRepository, codec TokenCodec, logger *zap.Logger) AccessGuard {
	return &accessGuardImpl{
		userRepo: userRepo,
		codec:    codec,
		logger:   logger.Named("AccessGuard"),
	}
}

// Resolve decodes the token and re-reads the subject from storage.
// Every rejection wraps ErrCouldNotValidateCredentials; the inner cause is kept for logs and metrics only.
func (g *accessGuardImpl) Resolve(ctx context.Context, tokenString string) (*models.Identity, error) {
	claims, err := g.codec.Decode(tokenString)
	if err != nil {
		g.logger.Debug("Token rejected", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", models.ErrCouldNotValidateCredentials, err)
	}

	user, err := g.userRepo.GetUserByEmail(ctx, NormalizeEmail(claims.Subject))
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			g.logger.Info("Token subject no longer exists", zap.String("sub", claims.Subject))
			return nil, fmt.Errorf("%w: %w", models.ErrCouldNotValidateCredentials, err)
		}
		g.logger.Error("Failed to load token subject", zap.String("sub", claims.Subject), zap.Error(err))
		return nil, fmt.Errorf("failed to load user for token: %w", err)
	}

	if !user.IsActive {
		g.logger.Info("Token subject is inactive", zap.String("userID", user.ID.String()))
		return nil, fmt.Errorf("%w: %w", models.ErrCouldNotValidateCredentials, models.ErrUserInactive)
	}

	// Роль всегда берется из БД, claim в токене может устареть
	if claims.Role != user.Role {
		g.logger.Debug("Stale role claim ignored",
			zap.String("userID", user.ID.String()),
			zap.String("tokenRole", claims.Role),
			zap.String("currentRole", user.Role))
	}

	return models.IdentityFromUser(user), nil
}

// RequireRole passes the identity through when it holds role.
func (g *accessGuardImpl) RequireRole(identity *models.Identity, role string) (*models.Identity, error) {
	if identity == nil {
		return nil, models.ErrCouldNotValidateCredentials
	}
	if identity.Role != role {
		g.logger.Warn("Role check failed",
			zap.String("userID", identity.ID.String()),
			zap.String("required", role),
			zap.String("actual", identity.Role))
		return nil, fmt.Errorf("%s %w", role, models.ErrForbidden)
	}
	return identity, nil
}
