package handler

import (
	"net/http"

	"primetrade-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, bindingError(err))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	registrationsTotal.Inc()
	c.JSON(http.StatusCreated, models.MessageResponse{Msg: "user created", ID: user.ID.String()})
}

// token - форма OAuth2 password grant (application/x-www-form-urlencoded).
func (h *Handler) token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindWith(&req, binding.FormPost); err != nil {
		handleServiceError(c, bindingError(err))
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if models.IsAuthError(err) {
			loginsTotal.WithLabelValues("failure").Inc()
		} else {
			loginsTotal.WithLabelValues("error").Inc()
		}
		handleServiceError(c, err)
		return
	}

	loginsTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, token)
}

func (h *Handler) getMe(c *gin.Context) {
	identity, ok := mustIdentity(c)
	if !ok {
		return
	}
	h.logger.Debug("Handling /me request", zap.String("userID", identity.ID.String()))
	c.JSON(http.StatusOK, identity)
}
