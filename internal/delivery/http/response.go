package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"tradeacademy/internal/domain"
)

// Response represents a standardized API response
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// SuccessResponse sends a success response
func SuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{
		Status: "success",
		Data:   data,
	})
}

// SuccessMessageResponse sends a success response with a message
func SuccessMessageResponse(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, Response{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// CreatedResponse sends a 201 Created response
func CreatedResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Response{
		Status: "success",
		Data:   data,
	})
}

// ErrorResponse sends an error response
func ErrorResponse(c echo.Context, statusCode int, message string, err interface{}) error {
	return c.JSON(statusCode, Response{
		Status:  "error",
		Message: message,
		Error:   err,
	})
}

// BadRequestResponse sends a 400 Bad Request response
func BadRequestResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusBadRequest, message, nil)
}

// UnauthorizedResponse sends a 401 Unauthorized response
func UnauthorizedResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusUnauthorized, message, nil)
}

// ForbiddenResponse sends a 403 Forbidden response
func ForbiddenResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusForbidden, message, nil)
}

// NotFoundResponse sends a 404 Not Found response
func NotFoundResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusNotFound, message, nil)
}

// ConflictResponse sends a 409 Conflict response
func ConflictResponse(c echo.Context, message string) error {
	return ErrorResponse(c, http.StatusConflict, message, nil)
}

// InternalServerErrorResponse sends a 500 Internal Server Error response
func InternalServerErrorResponse(c echo.Context, message string, err error) error {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	return ErrorResponse(c, http.StatusInternalServerError, message, errMsg)
}

// DomainErrorResponse maps order lifecycle errors to HTTP responses so
// every handler rejects the same failure the same way.
func DomainErrorResponse(c echo.Context, err error) error {
	var missing *domain.MissingFieldError
	switch {
	case errors.As(err, &missing):
		return BadRequestResponse(c, fmt.Sprintf("Missing or invalid required field: %s", missing.Field))
	case errors.Is(err, domain.ErrInvalidOrderType):
		return BadRequestResponse(c, "Unknown order type")
	case errors.Is(err, domain.ErrInsufficientBalance):
		return ErrorResponse(c, http.StatusBadRequest, "Insufficient simulator balance to cover this order", err.Error())
	case errors.Is(err, domain.ErrDailyLimitExceeded):
		return ForbiddenResponse(c, "Daily trade limit reached. Upgrade your membership for unlimited trades")
	case errors.Is(err, domain.ErrNotOrderOwner):
		return ForbiddenResponse(c, "You do not own this order")
	case errors.Is(err, domain.ErrOrderNotFound):
		return NotFoundResponse(c, "Order not found")
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return ConflictResponse(c, "Order is not in a state that allows this action")
	}
	return InternalServerErrorResponse(c, "Request failed", err)
}
