package serverutils

import "github.com/gofiber/fiber/v2"

// AppError is the error shape the service layer returns and the
// error-handler middleware knows how to render.
type AppError struct {
	Code    string
	Message string
	Status  int
}

func (e *AppError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: message,
		Status:  fiber.StatusNotFound,
	}
}

func NewRateLimitError(message string) *AppError {
	return &AppError{
		Code:    "TOO_MANY_REQUESTS",
		Message: message,
		Status:  fiber.StatusTooManyRequests,
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Code:    "INTERNAL_SERVER_ERROR",
		Message: message,
		Status:  fiber.StatusInternalServerError,
	}
}

func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    "BAD_REQUEST",
		Message: message,
		Status:  fiber.StatusBadRequest,
	}
}
