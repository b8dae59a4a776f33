package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"primetrade-server/internal/interfaces"
	"primetrade-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Compile-time check to ensure authServiceImpl implements AuthService
var _ AuthService = (*authServiceImpl)(nil)

const tokenTypeBearer = "bearer"

// authServiceImpl is the Authenticator: credentials in, bearer token out.
type authServiceImpl struct {
	userRepo    interfaces.UserRepository
	hasher      PasswordHasher
	codec       TokenCodec
	events      interfaces.ActivityPublisher
	logger      *zap.Logger
	dummyDigest string
}

// NewAuthService creates a new Authenticator. events may be nil.
func NewAuthService(userRepo interfaces.UserRepository, hasher PasswordHasher, codec TokenCodec, events interfaces.ActivityPublisher, logger *zap.Logger) AuthService {
	// Хеш-заглушка для выравнивания времени ответа при неизвестном email
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		logger.Warn("Failed to precompute dummy password digest", zap.Error(err))
	}
	return &authServiceImpl{
		userRepo:    userRepo,
		hasher:      hasher,
		codec:       codec,
		events:      events,
		logger:      logger.Named("AuthService"),
		dummyDigest: dummy,
	}
}

// NormalizeEmail lower-cases and trims an email before any comparison or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return models.NewValidationError("email", "must not be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return models.NewValidationError("email", "must be a valid email address")
	}
	return nil
}

// normalizeFullName trims the name; blank names are stored as NULL.
func normalizeFullName(fullName *string) *string {
	if fullName == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*fullName)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Register creates a new user with role "user".
func (s *authServiceImpl) Register(ctx context.Context, email, password string, fullName *string) (*models.User, error) {
	email = NormalizeEmail(email)
	log := s.logger.With(zap.String("email", email))
	log.Info("Registering new user")

	if err := validateEmail(email); err != nil {
		log.Warn("Registration attempt with invalid email format")
		return nil, err
	}
	if password == "" {
		log.Warn("Registration attempt with empty password")
		return nil, models.NewValidationError("password", "must not be empty")
	}

	existing, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, models.ErrUserNotFound) {
		log.Error("Error checking existing email during registration", zap.Error(err))
		return nil, fmt.Errorf("error checking existing email: %w", err)
	}
	if existing != nil {
		log.Warn("Registration attempt for existing email")
		return nil, models.ErrEmailAlreadyRegistered
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		log.Error("Failed to hash password during registration", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:          email,
		HashedPassword: hashed,
		FullName:       normalizeFullName(fullName),
		Role:           models.RoleUser,
		IsActive:       true,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		// Гонка двух регистраций: уникальный индекс отдает ErrEmailAlreadyRegistered
		if errors.Is(err, models.ErrEmailAlreadyRegistered) {
			log.Warn("Concurrent registration for the same email")
			return nil, err
		}
		log.Error("Failed to create user via repository", zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.publish(ctx, models.NewActivityEvent(models.ActivityUserRegistered, &user.ID, email, ""))
	log.Info("User registered successfully", zap.String("userID", user.ID.String()))
	return user, nil
}

// Login verifies credentials and issues an access token.
// Unknown email, wrong password and inactive account are indistinguishable to the caller.
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*models.AccessToken, error) {
	email = NormalizeEmail(email)
	log := s.logger.With(zap.String("email", email))
	log.Info("Login attempt")

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			s.hasher.Verify(password, s.dummyDigest)
			s.loginFailed(ctx, nil, email, "user not found")
			return nil, models.ErrInvalidCredentials
		}
		log.Error("Login failed: error getting user from repository", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		s.loginFailed(ctx, &user.ID, email, "invalid password")
		return nil, models.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.loginFailed(ctx, &user.ID, email, "user inactive")
		return nil, models.ErrInvalidCredentials
	}

	token, err := s.codec.Encode(models.TokenClaims{Subject: user.Email, Role: user.Role})
	if err != nil {
		log.Error("Failed to issue access token", zap.Error(err), zap.String("userID", user.ID.String()))
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.publish(ctx, models.NewActivityEvent(models.ActivityLoginSucceeded, &user.ID, email, ""))
	log.Info("User logged in successfully", zap.String("userID", user.ID.String()))
	return &models.AccessToken{AccessToken: token, TokenType: tokenTypeBearer}, nil
}

// SeedAdmin makes sure an active admin account exists for email.
// An existing account is promoted and re-activated; its password is left as is.
func (s *authServiceImpl) SeedAdmin(ctx context.Context, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)
	log := s.logger.With(zap.String("email", email))

	if err := validateEmail(email); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == models.RoleAdmin && existing.IsActive {
			log.Debug("Admin account already present")
			return existing, nil
		}
		role, active := models.RoleAdmin, true
		updated, err := s.userRepo.UpdateUser(ctx, existing.ID, models.UserUpdate{Role: &role, IsActive: &active})
		if err != nil {
			return nil, fmt.Errorf("failed to promote admin: %w", err)
		}
		log.Info("Existing account promoted to admin", zap.String("userID", updated.ID.String()))
		return updated, nil
	case !errors.Is(err, models.ErrUserNotFound):
		return nil, fmt.Errorf("error checking admin account: %w", err)
	}

	if password == "" {
		return nil, models.NewValidationError("password", "must not be empty")
	}
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin := &models.User{
		Email:          email,
		HashedPassword: hashed,
		Role:           models.RoleAdmin,
		IsActive:       true,
	}
	if err := s.userRepo.CreateUser(ctx, admin); err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	log.Info("Admin account created", zap.String("userID", admin.ID.String()))
	return admin, nil
}

func (s *authServiceImpl) loginFailed(ctx context.Context, userID *uuid.UUID, email, reason string) {
	s.logger.Warn("Login failed", zap.String("email", email), zap.String("reason", reason))
	s.publish(ctx, models.NewActivityEvent(models.ActivityLoginFailed, userID, email, reason))
}

// publish is best-effort: broker failures never fail the request.
func (s *authServiceImpl) publish(ctx context.Context, event models.ActivityEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishActivity(ctx, event); err != nil {
		s.logger.Warn("Failed to publish activity event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}
