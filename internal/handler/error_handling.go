package handler

import (
	"errors"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"primetrade-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const unauthorizedDetail = "Could not validate credentials"

func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var errResp models.ErrorResponse

	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		statusCode = http.StatusUnprocessableEntity
		errResp = models.ErrorResponse{Code: models.ErrCodeValidation, Detail: "Validation error", Fields: validationErr.Fields}
	case errors.Is(err, models.ErrValidation):
		statusCode = http.StatusUnprocessableEntity
		errResp = models.ErrorResponse{Code: models.ErrCodeValidation, Detail: "Validation error"}
	// Auth раньше NotFound: guard оборачивает ErrUserNotFound в ErrCouldNotValidateCredentials.
	case models.IsAuthError(err):
		statusCode = http.StatusUnauthorized
		errResp = models.ErrorResponse{Code: models.ErrCodeUnauthorized, Detail: unauthorizedDetail}
		c.Header("WWW-Authenticate", "Bearer")
	case errors.Is(err, models.ErrForbidden):
		statusCode = http.StatusForbidden
		errResp = models.ErrorResponse{Code: models.ErrCodeForbidden, Detail: capitalize(err.Error())}
	case errors.Is(err, models.ErrEmailAlreadyRegistered):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Code: models.ErrCodeEmailAlreadyRegistered, Detail: "Email already registered"}
	case models.IsNotFound(err):
		statusCode = http.StatusNotFound
		errResp = models.ErrorResponse{Code: models.ErrCodeNotFound, Detail: notFoundDetail(err)}
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err), zap.String("path", c.Request.URL.Path))
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Code: models.ErrCodeInternal, Detail: "An unexpected internal error occurred"}
	}

	c.AbortWithStatusJSON(statusCode, errResp)
}

func notFoundDetail(err error) string {
	switch {
	case errors.Is(err, models.ErrItemNotFound):
		return "Item not found"
	case errors.Is(err, models.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, models.ErrUserNotFound):
		return "User not found"
	}
	return "Not found"
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
