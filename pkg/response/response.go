package response

import (
	"errors"
	"net/http"

	"github.com/gamassss/utm-tracker/internal/domain"
	"github.com/gamassss/utm-tracker/internal/logger"
	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

func JSON(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data)
}

func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorResponse{Error: message})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

func InternalServerError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, message)
}

// FromError maps the domain error taxonomy to a status code. Storage errors
// are logged with their cause and answered with fallback, which keeps driver
// messages out of the response body.
func FromError(c *gin.Context, err error, fallback string) {
	var vErr *domain.ValidationError
	var nfErr *domain.NotFoundError
	var sErr *domain.StorageError

	switch {
	case errors.As(err, &vErr):
		BadRequest(c, vErr.Message)
	case errors.As(err, &nfErr):
		NotFound(c, nfErr.Error())
	case errors.As(err, &sErr):
		logger.FromContext(c.Request.Context()).Error(fallback, "op", sErr.Op, "error", sErr.Err)
		_ = c.Error(err)
		InternalServerError(c, fallback)
	default:
		logger.FromContext(c.Request.Context()).Error(fallback, "error", err)
		_ = c.Error(err)
		InternalServerError(c, fallback)
	}
}
