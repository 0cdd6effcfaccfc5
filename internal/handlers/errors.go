package handlers

import (
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"

	"todo-manager/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

// handleServiceError writes the HTTP response for an error returned by a
// service. Unknown errors are logged and reported as a generic 500.
func handleServiceError(c *gin.Context, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch svcErr.Code {
	case services.CodeUnauthenticated:
		status = http.StatusUnauthorized
	case services.CodeRateLimited:
		status = http.StatusTooManyRequests
		seconds := int(math.Ceil(svcErr.RetryAfter.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		c.Header("Retry-After", strconv.Itoa(seconds))
	case services.CodeNotFound:
		status = http.StatusNotFound
	case services.CodeForbidden:
		status = http.StatusForbidden
	case services.CodeInvalidArgument:
		status = http.StatusBadRequest
	}

	c.JSON(status, gin.H{
		"error": svcErr.Message,
		"code":  svcErr.Code,
	})
}

// userID is set by the auth middleware. Services reject an empty value.
func userID(c *gin.Context) string {
	return c.GetString("user_id")
}

func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.FromString(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
		return 0, false
	}
	return limit, true
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
