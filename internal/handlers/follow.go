package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quillhq/quill/backend/internal/database"
	"github.com/quillhq/quill/backend/internal/logger"
	"github.com/quillhq/quill/backend/internal/metrics"
	"github.com/quillhq/quill/backend/internal/models"
	"github.com/quillhq/quill/backend/internal/pagination"
	"github.com/quillhq/quill/backend/internal/util"
	"go.uber.org/zap"
)

// FollowAuthor creates a follow edge toward the named author. Following
// yourself and following someone twice are both silent no-ops; either way
// the browser lands back on the profile.
func (h *Handlers) FollowAuthor(c *gin.Context) {
	author, ok := h.findAuthor(c)
	if !ok {
		return
	}

	user, ok := util.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/auth/login")
		return
	}

	if user.ID != author.ID {
		// Insert-if-absent keyed on the pair; the unique index makes
		// concurrent duplicates converge to one row
		var edge models.Follow
		err := database.DB.
			Where(models.Follow{FollowerID: user.ID, AuthorID: author.ID}).
			FirstOrCreate(&edge).Error
		if err != nil {
			logger.ErrorWithFields("Failed to create follow edge", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		metrics.Get().FollowEdgesTotal.WithLabelValues("follow").Inc()
		logger.InfoWithFields("Follow created",
			logger.WithUserID(user.ID),
			zap.String("author_id", author.ID),
		)
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/u/%s", author.Username))
}

// UnfollowAuthor removes the follow edge if one exists. Zero rows deleted
// is still success.
func (h *Handlers) UnfollowAuthor(c *gin.Context) {
	author, ok := h.findAuthor(c)
	if !ok {
		return
	}

	user, ok := util.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/auth/login")
		return
	}

	result := database.DB.
		Where("follower_id = ? AND author_id = ?", user.ID, author.ID).
		Delete(&models.Follow{})
	if result.Error != nil {
		logger.ErrorWithFields("Failed to delete follow edge", result.Error)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	if result.RowsAffected > 0 {
		metrics.Get().FollowEdgesTotal.WithLabelValues("unfollow").Inc()
		logger.InfoWithFields("Follow removed",
			logger.WithUserID(user.ID),
			zap.String("author_id", author.ID),
		)
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/u/%s", author.Username))
}

// Feed renders the posts of every author the viewer follows, newest first.
// The query runs live on every request, so a fresh post from a followed
// author shows up immediately.
func (h *Handlers) Feed(c *gin.Context) {
	user, ok := util.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/auth/login")
		return
	}

	followed := database.DB.Model(&models.Follow{}).
		Select("author_id").
		Where("follower_id = ?", user.ID)

	var total int64
	if err := database.DB.Model(&models.Post{}).Where("author_id IN (?)", followed).Count(&total).Error; err != nil {
		logger.ErrorWithFields("Failed to count feed posts", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	page := pagination.Paginate(total, pageSizeListing, util.ParseInt(c.Query("page"), 1))

	var posts []models.Post
	err := database.DB.
		Preload("Author").Preload("Group").
		Where("author_id IN (?)", followed).
		Order("published_at DESC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&posts).Error
	if err != nil {
		logger.ErrorWithFields("Failed to load feed posts", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	h.render(c, http.StatusOK, "follow.html", gin.H{
		"Posts": posts,
		"Page":  page,
	})
}
