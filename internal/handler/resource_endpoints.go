package handler

import (
	"net/http"

	"primetrade-server/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	resourceItem = "item"
	resourceTask = "task"
)

// --- Items ---

func (h *Handler) createItem(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, bindingError(err))
		return
	}

	item, err := h.items.Create(c.Request.Context(), identity, req.Title, req.Description)
	observeResource(resourceItem, "create", err)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) listItems(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	params, err := parseListParams(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	page, err := h.items.List(c.Request.Context(), identity, params)
	observeResource(resourceItem, "list", err)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) getItem(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, models.ErrItemNotFound)
	if !ok {
		return
	}
	item, err := h.items.Get(c.Request.Context(), identity, id)
	observeResource(resourceItem, "get", err)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) updateItem(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, models.ErrItemNotFound)
	if !ok {
		return
	}
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, bindingError(err))
		return
	}

	item, err := h.items.Update(c.Request.Context(), identity, id, models.ItemUpdate{
		Title:       req.Title,
		Description: req.Description,
	})
	observeResource(resourceItem, "update", err)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) deleteItem(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, models.ErrItemNotFound)
	if !ok {
		return
	}
	err := h.items.Delete(c.Request.Context(), identity, id)
	observeResource(resourceItem, "delete", err)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Msg: "deleted"})
}

// --- Tasks ---

func (h *Handler) createTask(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, bindingError(err))
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), identity, req.Title, req.Description, req.Status)
	observeResource(resourceTask, "create", err)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *Handler) listTasks(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	params, err := parseListParams(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	page, err := h.tasks.List(c.Request.Context(), identity, params)
	observeResource(resourceTask, "list", err)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) getTask(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, models.ErrTaskNotFound)
	if !ok {
		return
	}
	task, err := h.tasks.Get(c.Request.Context(), identity, id)
	observeResource(resourceTask, "get", err)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) updateTask(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, models.ErrTaskNotFound)
	if !ok {
		return
	}
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, bindingError(err))
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), identity, id, models.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	observeResource(resourceTask, "update", err)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) deleteTask(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, models.ErrTaskNotFound)
	if !ok {
		return
	}
	err := h.tasks.Delete(c.Request.Context(), identity, id)
	observeResource(resourceTask, "delete", err)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
