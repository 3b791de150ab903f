package util

import (
	"github.com/gin-gonic/gin"
	"github.com/quillhq/quill/backend/internal/models"
)

// CurrentUser extracts the authenticated user from the Gin context.
// Returns the user and true if the session middleware resolved one,
// or nil and false for an anonymous request. Handlers behind the
// login gate can rely on true; public handlers branch on the flag.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	user, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	userPtr, ok := user.(*models.User)
	if !ok {
		return nil, false
	}
	return userPtr, true
}

// CurrentUserID extracts the authenticated user's ID from the Gin context
func CurrentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", false
	}
	userIDStr, ok := userID.(string)
	if !ok {
		return "", false
	}
	return userIDStr, true
}
