package handler

import (
	"net/http"

	"primetrade-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) getProfile(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	user, err := h.users.GetProfile(c.Request.Context(), identity)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) updateProfile(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, bindingError(err))
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), identity, models.ProfileUpdate{
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) listUsers(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	params, err := parseListParams(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	// Список пользователей поддерживает только пагинацию.
	var unsupported []models.FieldError
	for _, f := range []struct {
		name string
		set  bool
	}{{"q", params.Query != ""}, {"sort", params.Sort != ""}, {"status", params.Status != nil}} {
		if f.set {
			unsupported = append(unsupported, models.FieldError{Field: f.name, Message: "not supported for users"})
		}
	}
	if len(unsupported) > 0 {
		handleServiceError(c, &models.ValidationError{Fields: unsupported})
		return
	}
	page, err := h.users.ListUsers(c.Request.Context(), identity, params.Skip, params.Limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) updateUser(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handleServiceError(c, models.ErrUserNotFound)
		return
	}
	var req adminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, bindingError(err))
		return
	}

	user, err := h.users.UpdateUserByAdmin(c.Request.Context(), identity, id, models.AdminUserUpdate{
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
