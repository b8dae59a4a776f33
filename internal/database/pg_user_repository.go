package database

import (
	"context"
	"errors"
	"fmt"

	"primetrade-server/internal/interfaces"
	"primetrade-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const (
	uniqueViolationCode = "23505"
	usersEmailKey       = "users_email_key"

	userColumns = "id, email, hashed_password, full_name, role, is_active, created_at, updated_at"
)

// Compile-time check to ensure pgUserRepository implements UserRepository
var _ interfaces.UserRepository = (*pgUserRepository)(nil)

type pgUserRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgUserRepository creates a new PostgreSQL-backed UserRepository.
func NewPgUserRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.UserRepository {
	return &pgUserRepository{
		db:     db,
		logger: logger.Named("PgUserRepo"),
	}
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode && pgErr.ConstraintName == constraint
}

// CreateUser inserts a new user into the database.
func (r *pgUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (email, hashed_password, full_name, role, is_active)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`
	r.logger.Debug("Executing query", zap.String("query", query), zap.String("email", user.Email))

	err := r.db.QueryRow(ctx, query, user.Email, user.HashedPassword, user.FullName, user.Role, user.IsActive).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, usersEmailKey) {
			r.logger.Warn("Attempted to create duplicate user by email", zap.String("email", user.Email))
			return models.ErrEmailAlreadyRegistered
		}
		r.logger.Error("Failed to create user in postgres", zap.Error(err), zap.String("email", user.Email))
		return fmt.Errorf("failed to create user in postgres: %w", err)
	}
	r.logger.Info("User created successfully", zap.String("userID", user.ID.String()), zap.String("email", user.Email))
	return nil
}

func (r *pgUserRepository) getOne(ctx context.Context, field string, arg any) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + field + ` = $1`
	r.logger.Debug("Executing query", zap.String("query", query), zap.Any(field, arg))

	user := &models.User{}
	if err := pgxscan.Get(ctx, r.db, user, query, arg); err != nil {
		if pgxscan.NotFound(err) {
			r.logger.Debug("User not found", zap.String("by", field), zap.Any("value", arg))
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user from postgres", zap.String("by", field), zap.Error(err))
		return nil, fmt.Errorf("failed to get user by %s from postgres: %w", field, err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their normalized email.
func (r *pgUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email", email)
}

// GetUserByID retrieves a user by their ID.
func (r *pgUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, "id", id)
}

// UpdateUser обновляет только переданные (не nil) поля и возвращает новую запись.
// Пустой full_name сохраняется как NULL.
func (r *pgUserRepository) UpdateUser(ctx context.Context, id uuid.UUID, upd models.UserUpdate) (*models.User, error) {
	if upd.IsEmpty() {
		return r.GetUserByID(ctx, id)
	}

	queryBase := "UPDATE users SET updated_at = NOW()"
	args := []any{}
	argID := 1

	if upd.FullName != nil {
		queryBase += fmt.Sprintf(", full_name = NULLIF($%d, '')", argID)
		args = append(args, *upd.FullName)
		argID++
	}
	if upd.HashedPassword != nil {
		queryBase += fmt.Sprintf(", hashed_password = $%d", argID)
		args = append(args, *upd.HashedPassword)
		argID++
	}
	if upd.Role != nil {
		queryBase += fmt.Sprintf(", role = $%d", argID)
		args = append(args, *upd.Role)
		argID++
	}
	if upd.IsActive != nil {
		queryBase += fmt.Sprintf(", is_active = $%d", argID)
		args = append(args, *upd.IsActive)
		argID++
	}

	query := queryBase + fmt.Sprintf(" WHERE id = $%d RETURNING %s", argID, userColumns)
	args = append(args, id)
	r.logger.Debug("Executing update user query", zap.String("query", query), zap.String("userID", id.String()))

	user := &models.User{}
	if err := pgxscan.Get(ctx, r.db, user, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			r.logger.Warn("Attempted to update non-existent user", zap.String("userID", id.String()))
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to update user fields in postgres", zap.Error(err), zap.String("userID", id.String()))
		return nil, fmt.Errorf("failed to update user fields: %w", err)
	}

	r.logger.Info("User fields updated successfully", zap.String("userID", id.String()))
	return user, nil
}

// ListUsers returns a page of users ordered by creation time and the total count.
func (r *pgUserRepository) ListUsers(ctx context.Context, skip, limit int) ([]models.User, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		r.logger.Error("Failed to count users", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC, id ASC LIMIT $1 OFFSET $2`
	r.logger.Debug("Executing query", zap.String("query", query), zap.Int("limit", limit), zap.Int("skip", skip))

	users := make([]models.User, 0)
	if err := pgxscan.Select(ctx, r.db, &users, query, limit, skip); err != nil {
		r.logger.Error("Failed to query users from postgres", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to query users: %w", err)
	}
	return users, total, nil
}
