package interfaces

import (
	"context"

	"primetrade-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository defines the Credential Store.
type UserRepository interface {
	// CreateUser inserts a new user and fills in ID and timestamps.
	// Returns models.ErrEmailAlreadyRegistered on a unique violation.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns models.ErrUserNotFound if the user does not exist.
	// The email is expected to be normalized by the caller.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns models.ErrUserNotFound if the user does not exist.
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// UpdateUser applies only the non-nil fields of upd and returns the new row.
	UpdateUser(ctx context.Context, id uuid.UUID, upd models.UserUpdate) (*models.User, error)

	// ListUsers returns a page of users ordered by creation time and the total count.
	ListUsers(ctx context.Context, skip, limit int) ([]models.User, int64, error)
}

// ItemRepository persists items.
type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	// GetByID returns models.ErrItemNotFound if the item does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	List(ctx context.Context, params models.ListParams) ([]models.Item, int64, error)
	Update(ctx context.Context, id uuid.UUID, upd models.ItemUpdate) (*models.Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TaskRepository persists tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	// GetByID returns models.ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	List(ctx context.Context, params models.ListParams) ([]models.Task, int64, error)
	Update(ctx context.Context, id uuid.UUID, upd models.TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ActivityPublisher sends authentication activity events to a broker.
type ActivityPublisher interface {
	PublishActivity(ctx context.Context, event models.ActivityEvent) error
}
