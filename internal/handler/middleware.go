package handler

import (
	"errors"
	"strings"

	"primetrade-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware resolves the bearer token to a live identity and stores it
// in both the gin and request contexts.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			h.logger.Debug("Authorization header missing", zap.String("path", c.Request.URL.Path))
			tokenVerificationsTotal.WithLabelValues("failure", "missing").Inc()
			handleServiceError(c, models.ErrCouldNotValidateCredentials)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			h.logger.Warn("Invalid Authorization header format")
			tokenVerificationsTotal.WithLabelValues("failure", "scheme").Inc()
			handleServiceError(c, models.ErrCouldNotValidateCredentials)
			return
		}

		identity, err := h.guard.Resolve(c.Request.Context(), parts[1])
		if err != nil {
			reason := verificationReason(err)
			h.logger.Warn("Bearer token rejected", zap.String("reason", reason), zap.Error(err))
			tokenVerificationsTotal.WithLabelValues("failure", reason).Inc()
			handleServiceError(c, err)
			return
		}

		tokenVerificationsTotal.WithLabelValues("success", "").Inc()
		c.Set(models.GinIdentityKey, identity)
		c.Request = c.Request.WithContext(models.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

// RequireRoleMiddleware must run after AuthMiddleware.
func (h *Handler) RequireRoleMiddleware(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, _ := getIdentity(c)
		if _, err := h.guard.RequireRole(identity, role); err != nil {
			h.logger.Warn("Role check failed", zap.String("required", role), zap.Error(err))
			handleServiceError(c, err)
			return
		}
		c.Next()
	}
}

func verificationReason(err error) string {
	switch {
	case errors.Is(err, models.ErrTokenExpired):
		return "expired"
	case errors.Is(err, models.ErrTokenSignatureInvalid):
		return "signature"
	case errors.Is(err, models.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, models.ErrUserInactive):
		return "inactive"
	case errors.Is(err, models.ErrUserNotFound):
		return "unknown_user"
	case models.IsAuthError(err):
		return "rejected"
	}
	return "error"
}

// getIdentity достает identity, положенную AuthMiddleware.
func getIdentity(c *gin.Context) (*models.Identity, bool) {
	v, ok := c.Get(models.GinIdentityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*models.Identity)
	return identity, ok && identity != nil
}

// mustIdentity aborts with the uniform 401 when no identity is present.
func mustIdentity(c *gin.Context) (*models.Identity, bool) {
	identity, ok := getIdentity(c)
	if !ok {
		zap.L().Error("Identity missing from context, AuthMiddleware not applied?", zap.String("path", c.FullPath()))
		handleServiceError(c, models.ErrCouldNotValidateCredentials)
		return nil, false
	}
	return identity, true
}
