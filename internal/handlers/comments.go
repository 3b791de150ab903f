package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quillhq/quill/backend/internal/database"
	"github.com/quillhq/quill/backend/internal/logger"
	"github.com/quillhq/quill/backend/internal/metrics"
	"github.com/quillhq/quill/backend/internal/models"
	"github.com/quillhq/quill/backend/internal/util"
)

// CommentForm renders the post page with its comment form. Reached only by
// signed-in visitors; the login gate redirects everyone else before this runs.
func (h *Handlers) CommentForm(c *gin.Context) {
	h.PostDetail(c)
}

// AddComment attaches a comment to the post and returns to its detail page
func (h *Handlers) AddComment(c *gin.Context) {
	post, ok := h.findPost(c)
	if !ok {
		return
	}

	user, ok := util.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/auth/login")
		return
	}

	text := c.PostForm("text")
	if text == "" {
		// Empty submissions fall back to the post page with a field message
		var postsCount int64
		database.DB.Model(&models.Post{}).Where("author_id = ?", post.AuthorID).Count(&postsCount)
		h.render(c, http.StatusOK, "post.html", gin.H{
			"Post":       post,
			"PostsCount": postsCount,
			"Errors":     map[string]string{"Text": "This field is required."},
		})
		return
	}

	comment := models.Comment{
		PostID:   post.ID,
		AuthorID: user.ID,
		Text:     text,
	}

	if err := database.DB.Create(&comment).Error; err != nil {
		logger.ErrorWithFields("Failed to create comment", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	metrics.Get().CommentsCreatedTotal.Inc()
	logger.InfoWithFields("Comment created",
		logger.WithUserID(user.ID),
		logger.WithPostID(post.ID),
	)

	c.Redirect(http.StatusFound, postDetailPath(post))
}
