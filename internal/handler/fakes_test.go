package handler

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"primetrade-server/internal/interfaces"
	"primetrade-server/internal/models"

	"github.com/google/uuid"
)

// In-memory repositories: enough of the storage contract for HTTP tests.

type memUserRepo struct {
	mu    sync.Mutex
	users []*models.User
}

var _ interfaces.UserRepository = (*memUserRepo)(nil)

func (r *memUserRepo) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return models.ErrEmailAlreadyRegistered
		}
	}
	now := time.Now().UTC()
	user.ID, user.CreatedAt, user.UpdatedAt = uuid.New(), now, now
	cp := *user
	r.users = append(r.users, &cp)
	return nil
}

func (r *memUserRepo) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (r *memUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *memUserRepo) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *memUserRepo) UpdateUser(_ context.Context, id uuid.UUID, upd models.UserUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID != id {
			continue
		}
		if upd.FullName != nil {
			if *upd.FullName == "" {
				u.FullName = nil
			} else {
				name := *upd.FullName
				u.FullName = &name
			}
		}
		if upd.HashedPassword != nil {
			u.HashedPassword = *upd.HashedPassword
		}
		if upd.Role != nil {
			u.Role = *upd.Role
		}
		if upd.IsActive != nil {
			u.IsActive = *upd.IsActive
		}
		u.UpdatedAt = time.Now().UTC()
		cp := *u
		return &cp, nil
	}
	return nil, models.ErrUserNotFound
}

func (r *memUserRepo) ListUsers(_ context.Context, skip, limit int) ([]models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0)
	for i, u := range r.users {
		if i >= skip && len(out) < limit {
			out = append(out, *u)
		}
	}
	return out, int64(len(r.users)), nil
}

// ownedRow is the common shape of items and tasks for filtering.
type ownedRow struct {
	seq         int
	id          uuid.UUID
	title       string
	description *string
	status      models.TaskStatus
	ownerID     uuid.UUID
}

func matches(row ownedRow, p models.ListParams) bool {
	if p.OwnerID != nil && row.ownerID != *p.OwnerID {
		return false
	}
	if p.Status != nil && row.status != *p.Status {
		return false
	}
	if p.Query != "" {
		q := strings.ToLower(p.Query)
		desc := ""
		if row.description != nil {
			desc = *row.description
		}
		if !strings.Contains(strings.ToLower(row.title), q) && !strings.Contains(strings.ToLower(desc), q) {
			return false
		}
	}
	return true
}

// pageRows applies filter, ordering and paging and returns the selected ids.
func pageRows(rows []ownedRow, p models.ListParams) ([]uuid.UUID, int64) {
	var filtered []ownedRow
	for _, row := range rows {
		if matches(row, p) {
			filtered = append(filtered, row)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		switch p.Sort {
		case models.SortCreatedAsc, models.SortUpdatedAsc:
			return filtered[i].seq < filtered[j].seq
		case models.SortTitleAsc:
			return strings.ToLower(filtered[i].title) < strings.ToLower(filtered[j].title)
		case models.SortTitleDesc:
			return strings.ToLower(filtered[i].title) > strings.ToLower(filtered[j].title)
		}
		return filtered[i].seq > filtered[j].seq
	})
	ids := make([]uuid.UUID, 0)
	for i, row := range filtered {
		if i >= p.Skip && len(ids) < p.Limit {
			ids = append(ids, row.id)
		}
	}
	return ids, int64(len(filtered))
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

type memItemRepo struct {
	mu    sync.Mutex
	seq   int
	items map[uuid.UUID]*models.Item
	order map[uuid.UUID]int
}

var _ interfaces.ItemRepository = (*memItemRepo)(nil)

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{items: map[uuid.UUID]*models.Item{}, order: map[uuid.UUID]int{}}
}

func (r *memItemRepo) Create(_ context.Context, item *models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	item.ID, item.CreatedAt, item.UpdatedAt = uuid.New(), now, now
	item.Description = emptyToNil(item.Description)
	cp := *item
	r.seq++
	r.items[item.ID], r.order[item.ID] = &cp, r.seq
	return nil
}

func (r *memItemRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, models.ErrItemNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *memItemRepo) List(_ context.Context, p models.ListParams) ([]models.Item, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := make([]ownedRow, 0, len(r.items))
	for id, item := range r.items {
		rows = append(rows, ownedRow{seq: r.order[id], id: id, title: item.Title, description: item.Description, ownerID: item.OwnerID})
	}
	ids, total := pageRows(rows, p)
	out := make([]models.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.items[id])
	}
	return out, total, nil
}

func (r *memItemRepo) Update(_ context.Context, id uuid.UUID, upd models.ItemUpdate) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, models.ErrItemNotFound
	}
	if upd.Title != nil {
		item.Title = *upd.Title
	}
	if upd.Description != nil {
		item.Description = emptyToNil(upd.Description)
	}
	item.UpdatedAt = time.Now().UTC()
	cp := *item
	return &cp, nil
}

func (r *memItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return models.ErrItemNotFound
	}
	delete(r.items, id)
	return nil
}

type memTaskRepo struct {
	mu    sync.Mutex
	seq   int
	tasks map[uuid.UUID]*models.Task
	order map[uuid.UUID]int
}

var _ interfaces.TaskRepository = (*memTaskRepo)(nil)

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: map[uuid.UUID]*models.Task{}, order: map[uuid.UUID]int{}}
}

func (r *memTaskRepo) Create(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	task.ID, task.CreatedAt, task.UpdatedAt = uuid.New(), now, now
	task.Description = emptyToNil(task.Description)
	if task.Status == "" {
		task.Status = models.TaskStatusOpen
	}
	cp := *task
	r.seq++
	r.tasks[task.ID], r.order[task.ID] = &cp, r.seq
	return nil
}

func (r *memTaskRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, models.ErrTaskNotFound
	}
	cp := *task
	return &cp, nil
}

func (r *memTaskRepo) List(_ context.Context, p models.ListParams) ([]models.Task, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := make([]ownedRow, 0, len(r.tasks))
	for id, task := range r.tasks {
		rows = append(rows, ownedRow{seq: r.order[id], id: id, title: task.Title, description: task.Description, status: task.Status, ownerID: task.OwnerID})
	}
	ids, total := pageRows(rows, p)
	out := make([]models.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.tasks[id])
	}
	return out, total, nil
}

func (r *memTaskRepo) Update(_ context.Context, id uuid.UUID, upd models.TaskUpdate) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, models.ErrTaskNotFound
	}
	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		task.Description = emptyToNil(upd.Description)
	}
	if upd.Status != nil {
		task.Status = *upd.Status
	}
	task.UpdatedAt = time.Now().UTC()
	cp := *task
	return &cp, nil
}

func (r *memTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return models.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}
