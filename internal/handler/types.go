package handler

import "primetrade-server/internal/models"

type registerRequest struct {
	Email    string  `json:"email" binding:"required"`
	Password string  `json:"password" binding:"required"`
	FullName *string `json:"full_name"`
}

// tokenRequest - OAuth2 password form: username carries the email.
type tokenRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type updateProfileRequest struct {
	FullName *string `json:"full_name"`
	Password *string `json:"password"`
}

type createItemRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
}

type updateItemRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type createTaskRequest struct {
	Title       string             `json:"title" binding:"required"`
	Description *string            `json:"description"`
	Status      *models.TaskStatus `json:"status"`
}

type updateTaskRequest struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Status      *models.TaskStatus `json:"status"`
}

type adminUpdateUserRequest struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// listQuery - параметры пагинации и фильтрации списков.
type listQuery struct {
	Skip   *int   `form:"skip" binding:"omitempty,min=0"`
	Page   *int   `form:"page" binding:"omitempty,min=1"`
	Limit  *int   `form:"limit" binding:"omitempty,min=1,max=100"`
	Q      string `form:"q"`
	Status string `form:"status"`
	Sort   string `form:"sort"`
}
