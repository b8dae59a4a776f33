package models

import "github.com/google/uuid"

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// SortOrder selects the ordering of a list query.
type SortOrder string

const (
	SortCreatedDesc SortOrder = "created_desc"
	SortCreatedAsc  SortOrder = "created_asc"
	SortUpdatedDesc SortOrder = "updated_desc"
	SortUpdatedAsc  SortOrder = "updated_asc"
	SortTitleAsc    SortOrder = "title_asc"
	SortTitleDesc   SortOrder = "title_desc"
)

// ParseSortOrder returns the default order for an empty string.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(s) {
	case "":
		return SortCreatedDesc, true
	case SortCreatedDesc, SortCreatedAsc, SortUpdatedDesc, SortUpdatedAsc, SortTitleAsc, SortTitleDesc:
		return SortOrder(s), true
	}
	return "", false
}

// ListParams describes a filtered, paginated list request.
// OwnerID == nil means no owner scoping (admin view).
type ListParams struct {
	Skip    int
	Limit   int
	Query   string
	Status  *TaskStatus
	Sort    SortOrder
	OwnerID *uuid.UUID
}

// PageMeta is the pagination block of a list response.
// Total is the full filtered count, not the page size.
type PageMeta struct {
	Skip  int   `json:"skip"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// NewPageMeta derives the 1-based page number from skip and limit.
func NewPageMeta(skip, limit int, total int64) PageMeta {
	page := 1
	if limit > 0 {
		page = skip/limit + 1
	}
	return PageMeta{Skip: skip, Page: page, Limit: limit, Total: total}
}

// ItemPage is a page of items.
type ItemPage struct {
	Data []Item   `json:"data"`
	Meta PageMeta `json:"meta"`
}

// TaskPage is a page of tasks.
type TaskPage struct {
	Data []Task   `json:"data"`
	Meta PageMeta `json:"meta"`
}

// UserPage is a page of users (admin listing).
type UserPage struct {
	Data []User   `json:"data"`
	Meta PageMeta `json:"meta"`
}
