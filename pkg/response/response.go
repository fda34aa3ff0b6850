package response

import (
	"log"
	"net/http"
	"os"

	"ajil.mn/jobmarket/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// GetUserType retrieves the authenticated user's type from the context.
func GetUserType(c *gin.Context) string {
	return c.GetString("user_type")
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
		if os.Getenv("APP_ENV") == "production" {
			c.JSON(code, gin.H{"error": "internal server error"})
			return
		}
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
