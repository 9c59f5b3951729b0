package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roadcare/roadcare-backend-go/internal/errs"
)

// Response represents a standard API response
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Detail  string      `json:"detail,omitempty"`
}

// Success sends a successful response
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error sends an error response with optional detail
func Error(c *gin.Context, code int, message string, err error) {
	resp := Response{
		Code:    code,
		Message: message,
	}
	if err != nil {
		resp.Detail = err.Error()
	}
	c.JSON(code, resp)
}

// FromError maps a typed service error to the right HTTP status. Retryable
// infrastructure failures come back as 503 so callers know to back off.
func FromError(c *gin.Context, err error) {
	switch {
	case errs.IsValidation(err):
		Error(c, http.StatusBadRequest, "Invalid request", err)
	case errs.IsNotFound(err):
		Error(c, http.StatusNotFound, "Not found", err)
	case errs.IsRetryable(err):
		Error(c, http.StatusServiceUnavailable, "Temporarily unavailable", err)
	default:
		Error(c, http.StatusInternalServerError, "Internal error", err)
	}
}
