package mocks

import (
	"context"

	"primetrade-server/internal/interfaces"
	"primetrade-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

var (
	_ interfaces.UserRepository    = (*UserRepository)(nil)
	_ interfaces.ItemRepository    = (*ItemRepository)(nil)
	_ interfaces.TaskRepository    = (*TaskRepository)(nil)
	_ interfaces.ActivityPublisher = (*ActivityPublisher)(nil)
)

// Mock UserRepository
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *UserRepository) UpdateUser(ctx context.Context, id uuid.UUID, upd models.UserUpdate) (*models.User, error) {
	args := m.Called(ctx, id, upd)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *UserRepository) ListUsers(ctx context.Context, skip, limit int) ([]models.User, int64, error) {
	args := m.Called(ctx, skip, limit)
	users, _ := args.Get(0).([]models.User)
	return users, args.Get(1).(int64), args.Error(2)
}

// Mock ItemRepository
type ItemRepository struct {
	mock.Mock
}

func (m *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	args := m.Called(ctx, id)
	it, _ := args.Get(0).(*models.Item)
	return it, args.Error(1)
}

func (m *ItemRepository) List(ctx context.Context, params models.ListParams) ([]models.Item, int64, error) {
	args := m.Called(ctx, params)
	items, _ := args.Get(0).([]models.Item)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ItemRepository) Update(ctx context.Context, id uuid.UUID, upd models.ItemUpdate) (*models.Item, error) {
	args := m.Called(ctx, id, upd)
	it, _ := args.Get(0).(*models.Item)
	return it, args.Error(1)
}

func (m *ItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock TaskRepository
type TaskRepository struct {
	mock.Mock
}

func (m *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*models.Task)
	return t, args.Error(1)
}

func (m *TaskRepository) List(ctx context.Context, params models.ListParams) ([]models.Task, int64, error) {
	args := m.Called(ctx, params)
	tasks, _ := args.Get(0).([]models.Task)
	return tasks, args.Get(1).(int64), args.Error(2)
}

func (m *TaskRepository) Update(ctx context.Context, id uuid.UUID, upd models.TaskUpdate) (*models.Task, error) {
	args := m.Called(ctx, id, upd)
	t, _ := args.Get(0).(*models.Task)
	return t, args.Error(1)
}

func (m *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock ActivityPublisher
type ActivityPublisher struct {
	mock.Mock
}

func (m *ActivityPublisher) PublishActivity(ctx context.Context, event models.ActivityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
