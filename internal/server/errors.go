package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	keydomain "github.com/smallbiznis/keyforge/internal/key/domain"
	"gorm.io/gorm"
)

// statusResponse is the envelope for create/deactivate confirmations and for
// every failure.
type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

var ErrInvalidRequest = errors.New("invalid_request")

// ErrorHandlingMiddleware turns errors accumulated on the context into the
// wire contract: not-found is 404, everything else is 400 carrying the raw
// error text.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, statusResponse{
			Success: false,
			Message: lastErr.Err.Error(),
		})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) int {
	if isNotFoundError(err) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func isNotFoundError(err error) bool {
	return errors.Is(err, keydomain.ErrNotFound) ||
		errors.Is(err, gorm.ErrRecordNotFound)
}
