package models

// Error codes carried in ErrorResponse.Code.
const (
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeEmailAlreadyRegistered = "EMAIL_ALREADY_REGISTERED"
	ErrCodeUnauthorized           = "UNAUTHORIZED"
	ErrCodeForbidden              = "FORBIDDEN"
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeInternal               = "INTERNAL_ERROR"
)

// ErrorResponse - стандартная структура для ответа об ошибке в формате JSON.
type ErrorResponse struct {
	Code   string       `json:"code"`
	Detail string       `json:"detail"`
	Fields []FieldError `json:"fields,omitempty"`
}

// MessageResponse is a short acknowledgement body.
type MessageResponse struct {
	Msg string `json:"msg"`
	ID  string `json:"id,omitempty"`
}
