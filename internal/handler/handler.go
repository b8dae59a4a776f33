package handler

import (
	"math"
	"net/http"

	"primetrade-server/internal/models"
	"primetrade-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler exposes the HTTP API under /api/v1.
type Handler struct {
	authService service.AuthService
	guard       service.AccessGuard
	users       service.UserService
	items       service.ItemService
	tasks       service.TaskService
	logger      *zap.Logger
}

func NewHandler(
	authService service.AuthService,
	guard service.AccessGuard,
	users service.UserService,
	items service.ItemService,
	tasks service.TaskService,
	logger *zap.Logger,
) *Handler {
	registerValidator()
	return &Handler{
		authService: authService,
		guard:       guard,
		users:       users,
		items:       items,
		tasks:       tasks,
		logger:      logger.Named("Handler"),
	}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api/v1")

	api.GET("/health", h.health)
	api.HEAD("/health", h.health)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/token", h.token)
		authGroup.GET("/me", h.AuthMiddleware(), h.getMe)
	}

	protected := api.Group("")
	protected.Use(h.AuthMiddleware())
	{
		protected.GET("/profile/", h.getProfile)
		protected.PUT("/profile/", h.updateProfile)

		items := protected.Group("/items")
		items.POST("/", h.createItem)
		items.GET("/", h.listItems)
		items.GET("/:id", h.getItem)
		items.PUT("/:id", h.updateItem)
		items.DELETE("/:id", h.RequireRoleMiddleware(models.RoleAdmin), h.deleteItem)

		tasks := protected.Group("/tasks")
		tasks.POST("/", h.createTask)
		tasks.GET("/", h.listTasks)
		tasks.GET("/:id", h.getTask)
		tasks.PUT("/:id", h.updateTask)
		tasks.DELETE("/:id", h.deleteTask)

		admin := protected.Group("/admin")
		admin.Use(h.RequireRoleMiddleware(models.RoleAdmin))
		admin.GET("/users", h.listUsers)
		admin.PUT("/users/:id", h.updateUser)
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseIDParam - невалидный UUID неотличим от отсутствующей записи.
func parseIDParam(c *gin.Context, notFound error) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handleServiceError(c, notFound)
		return uuid.Nil, false
	}
	return id, true
}

// parseListParams binds skip/page/limit/q/status/sort. Range checks on
// limit and the sort/status vocabularies are left to the services.
func parseListParams(c *gin.Context) (models.ListParams, error) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return models.ListParams{}, bindingError(err)
	}
	if q.Skip != nil && q.Page != nil {
		return models.ListParams{}, models.NewValidationError("page", "use either skip or page, not both")
	}

	params := models.ListParams{Query: q.Q, Sort: models.SortOrder(q.Sort)}
	if q.Limit != nil {
		params.Limit = *q.Limit
	}
	if q.Skip != nil {
		params.Skip = *q.Skip
	}
	if q.Page != nil {
		limit := params.Limit
		if limit == 0 {
			limit = models.DefaultPageLimit
		}
		if *q.Page-1 > math.MaxInt/limit {
			return models.ListParams{}, models.NewValidationError("page", "is too large")
		}
		params.Skip = (*q.Page - 1) * limit
	}
	if q.Status != "" {
		status := models.TaskStatus(q.Status)
		params.Status = &status
	}
	return params, nil
}
