package handler

import (
	"errors"
	"net/http"

	"novel-relay/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// APIError - тело ответа об ошибке.
type APIError struct {
	Message string `json:"message"`
}

// handleServiceError переводит ошибки сервисов в HTTP-ответ.
func handleServiceError(c echo.Context, err error) error {
	var statusCode int
	var apiErr APIError
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, models.ErrUnauthorized),
		errors.Is(err, models.ErrTokenInvalid),
		errors.Is(err, models.ErrTokenExpired),
		errors.Is(err, models.ErrTokenMalformed):
		statusCode = http.StatusUnauthorized
		apiErr = APIError{Message: "Unauthorized"}
	case errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrInvalidInput), errors.As(err, &validationErrs):
		statusCode = http.StatusBadRequest
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrForbidden):
		statusCode = http.StatusForbidden
		apiErr = APIError{Message: "Forbidden"}
	case errors.Is(err, models.ErrInvalidTransition), errors.Is(err, models.ErrAlreadyMerged):
		statusCode = http.StatusConflict
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, models.ErrConflict):
		statusCode = http.StatusConflict
		apiErr = APIError{Message: "Story was modified concurrently, please retry"}
	default:
		statusCode = http.StatusInternalServerError
		apiErr = APIError{Message: "Internal server error"}
	}
	return c.JSON(statusCode, apiErr)
}
