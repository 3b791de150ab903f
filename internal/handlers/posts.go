package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quillhq/quill/backend/internal/database"
	"github.com/quillhq/quill/backend/internal/logger"
	"github.com/quillhq/quill/backend/internal/metrics"
	"github.com/quillhq/quill/backend/internal/models"
	"github.com/quillhq/quill/backend/internal/pagination"
	"github.com/quillhq/quill/backend/internal/storage"
	"github.com/quillhq/quill/backend/internal/util"
	"github.com/quillhq/quill/backend/internal/validation"
	"gorm.io/gorm"
)

// maxImageBytes caps how much of an attachment we read into memory
const maxImageBytes = 20 << 20

// Index renders the global post listing, newest first
func (h *Handlers) Index(c *gin.Context) {
	var total int64
	if err := database.DB.Model(&models.Post{}).Count(&total).Error; err != nil {
		logger.ErrorWithFields("Failed to count posts", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	page := pagination.Paginate(total, pageSizeListing, util.ParseInt(c.Query("page"), 1))

	var posts []models.Post
	err := database.DB.
		Preload("Author").Preload("Group").
		Order("published_at DESC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&posts).Error
	if err != nil {
		logger.ErrorWithFields("Failed to load posts", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	h.render(c, http.StatusOK, "index.html", gin.H{
		"Posts": posts,
		"Page":  page,
	})
}

// GroupPosts renders one group's post listing, resolved by slug
func (h *Handlers) GroupPosts(c *gin.Context) {
	var group models.Group
	err := database.DB.Where("slug = ?", c.Param("slug")).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		h.renderNotFound(c)
		return
	} else if err != nil {
		logger.ErrorWithFields("Failed to load group", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	var total int64
	if err := database.DB.Model(&models.Post{}).Where("group_id = ?", group.ID).Count(&total).Error; err != nil {
		logger.ErrorWithFields("Failed to count group posts", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	page := pagination.Paginate(total, pageSizeListing, util.ParseInt(c.Query("page"), 1))

	var posts []models.Post
	err = database.DB.
		Preload("Author").Preload("Group").
		Where("group_id = ?", group.ID).
		Order("published_at DESC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&posts).Error
	if err != nil {
		logger.ErrorWithFields("Failed to load group posts", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	h.render(c, http.StatusOK, "group.html", gin.H{
		"Group": group,
		"Posts": posts,
		"Page":  page,
	})
}

// Profile renders an author's page with their posts and follow state
func (h *Handlers) Profile(c *gin.Context) {
	author, ok := h.findAuthor(c)
	if !ok {
		return
	}

	var total int64
	if err := database.DB.Model(&models.Post{}).Where("author_id = ?", author.ID).Count(&total).Error; err != nil {
		logger.ErrorWithFields("Failed to count author posts", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	page := pagination.Paginate(total, pageSizeProfile, util.ParseInt(c.Query("page"), 1))

	var posts []models.Post
	err := database.DB.
		Preload("Author").Preload("Group").
		Where("author_id = ?", author.ID).
		Order("published_at DESC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&posts).Error
	if err != nil {
		logger.ErrorWithFields("Failed to load author posts", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	// Follow state only matters for a signed-in viewer
	following := false
	if viewer, ok := util.CurrentUser(c); ok {
		var edges int64
		database.DB.Model(&models.Follow{}).
			Where("follower_id = ? AND author_id = ?", viewer.ID, author.ID).
			Count(&edges)
		following = edges > 0
	}

	h.render(c, http.StatusOK, "profile.html", gin.H{
		"Author":     author,
		"Posts":      posts,
		"Page":       page,
		"PostsCount": total,
		"Following":  following,
	})
}

// PostDetail renders a single post with its comments and comment form
func (h *Handlers) PostDetail(c *gin.Context) {
	post, ok := h.findPost(c)
	if !ok {
		return
	}

	var postsCount int64
	database.DB.Model(&models.Post{}).Where("author_id = ?", post.AuthorID).Count(&postsCount)

	h.render(c, http.StatusOK, "post.html", gin.H{
		"Post":       post,
		"PostsCount": postsCount,
	})
}

// NewPostForm renders the empty authoring form
func (h *Handlers) NewPostForm(c *gin.Context) {
	h.render(c, http.StatusOK, "post_form.html", gin.H{
		"Groups":        h.loadGroups(),
		"IsEdit":        false,
		"Text":          "",
		"SelectedGroup": "",
	})
}

// CreatePost persists a new post authored by the session identity. The
// author is never taken from the form.
func (h *Handlers) CreatePost(c *gin.Context) {
	user, ok := util.CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/auth/login")
		return
	}

	text := c.PostForm("text")
	groupID := c.PostForm("group")

	formErrors := map[string]string{}
	if text == "" {
		formErrors["Text"] = "This field is required."
	}

	group, err := h.resolveGroup(groupID)
	if err != nil {
		formErrors["Group"] = "Unknown group."
	}

	imageURL, imageErr := h.storeImage(c, user.ID)
	if imageErr != nil {
		formErrors["Image"] = imageErr.Error()
	}

	if len(formErrors) > 0 {
		h.render(c, http.StatusOK, "post_form.html", gin.H{
			"Groups":        h.loadGroups(),
			"IsEdit":        false,
			"Errors":        formErrors,
			"Text":          text,
			"SelectedGroup": groupID,
		})
		return
	}

	post := models.Post{
		Text:     text,
		AuthorID: user.ID,
		ImageURL: imageURL,
	}
	if group != nil {
		post.GroupID = &group.ID
	}

	if err := database.DB.Create(&post).Error; err != nil {
		logger.ErrorWithFields("Failed to create post", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	metrics.Get().PostsCreatedTotal.
		WithLabelValues(boolLabel(imageURL != ""), boolLabel(group != nil)).Inc()
	logger.InfoWithFields("Post created",
		logger.WithUserID(user.ID),
		logger.WithPostID(post.ID),
	)

	c.Redirect(http.StatusFound, "/")
}

// EditPostForm renders the authoring form pre-filled with the post.
// Non-owners are sent back to the post detail page untouched.
func (h *Handlers) EditPostForm(c *gin.Context) {
	post, ok := h.findPost(c)
	if !ok {
		return
	}

	user, _ := util.CurrentUser(c)
	if user == nil || user.ID != post.AuthorID {
		c.Redirect(http.StatusFound, postDetailPath(post))
		return
	}

	selectedGroup := ""
	if post.GroupID != nil {
		selectedGroup = *post.GroupID
	}

	h.render(c, http.StatusOK, "post_form.html", gin.H{
		"Groups":        h.loadGroups(),
		"IsEdit":        true,
		"Post":          post,
		"Text":          post.Text,
		"SelectedGroup": selectedGroup,
	})
}

// UpdatePost applies an owner's edit and redirects to the post detail page.
// The author column is never part of the update.
func (h *Handlers) UpdatePost(c *gin.Context) {
	post, ok := h.findPost(c)
	if !ok {
		return
	}

	user, _ := util.CurrentUser(c)
	if user == nil || user.ID != post.AuthorID {
		c.Redirect(http.StatusFound, postDetailPath(post))
		return
	}

	text := c.PostForm("text")
	groupID := c.PostForm("group")

	formErrors := map[string]string{}
	if text == "" {
		formErrors["Text"] = "This field is required."
	}

	group, err := h.resolveGroup(groupID)
	if err != nil {
		formErrors["Group"] = "Unknown group."
	}

	imageURL, imageErr := h.storeImage(c, user.ID)
	if imageErr != nil {
		formErrors["Image"] = imageErr.Error()
	}

	if len(formErrors) > 0 {
		h.render(c, http.StatusOK, "post_form.html", gin.H{
			"Groups":        h.loadGroups(),
			"IsEdit":        true,
			"Post":          post,
			"Errors":        formErrors,
			"Text":          text,
			"SelectedGroup": groupID,
		})
		return
	}

	updates := map[string]interface{}{
		"text":     text,
		"group_id": nil,
	}
	if group != nil {
		updates["group_id"] = group.ID
	}
	if imageURL != "" {
		updates["image_url"] = imageURL
	}

	if err := database.DB.Model(post).Updates(updates).Error; err != nil {
		logger.ErrorWithFields("Failed to update post", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	logger.InfoWithFields("Post updated",
		logger.WithUserID(user.ID),
		logger.WithPostID(post.ID),
	)

	c.Redirect(http.StatusFound, postDetailPath(post))
}

// findAuthor resolves the :username route param, rendering 404 on a miss
func (h *Handlers) findAuthor(c *gin.Context) (*models.User, bool) {
	var author models.User
	err := database.DB.Where("username = ?", c.Param("username")).First(&author).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		h.renderNotFound(c)
		return nil, false
	} else if err != nil {
		logger.ErrorWithFields("Failed to load author", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return nil, false
	}
	return &author, true
}

// findPost resolves the (:username, :post_id) pair, rendering 404 when the
// post does not exist or belongs to a different author
func (h *Handlers) findPost(c *gin.Context) (*models.Post, bool) {
	author, ok := h.findAuthor(c)
	if !ok {
		return nil, false
	}

	var post models.Post
	err := database.DB.
		Preload("Author").Preload("Group").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC")
		}).
		Preload("Comments.Author").
		Where("id = ? AND author_id = ?", c.Param("post_id"), author.ID).
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		h.renderNotFound(c)
		return nil, false
	} else if err != nil {
		logger.ErrorWithFields("Failed to load post", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return nil, false
	}
	return &post, true
}

// resolveGroup looks up an optional group selection from the form
func (h *Handlers) resolveGroup(groupID string) (*models.Group, error) {
	if groupID == "" {
		return nil, nil
	}
	var group models.Group
	if err := database.DB.Where("id = ?", groupID).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// loadGroups lists all groups for the authoring form's select box
func (h *Handlers) loadGroups() []models.Group {
	var groups []models.Group
	if err := database.DB.Order("title ASC").Find(&groups).Error; err != nil {
		logger.ErrorWithFields("Failed to load groups", err)
	}
	return groups
}

// storeImage validates and stores an optional image attachment, returning
// its public URL. No file in the form is not an error.
func (h *Handlers) storeImage(c *gin.Context, userID string) (string, error) {
	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", fmt.Errorf("could not read the uploaded file")
	}

	if err := validation.ValidateImageFilename(header.Filename); err != nil {
		metrics.Get().ImageRejectionsTotal.Inc()
		return "", err
	}

	data, err := readUpload(header)
	if err != nil {
		logger.ErrorWithFields("Failed to read upload", err)
		return "", fmt.Errorf("could not read the uploaded file")
	}

	result, err := h.uploader.Upload(c.Request.Context(), data, userID, header.Filename)
	if err != nil {
		logger.ErrorWithFields("Failed to store image", err)
		return "", fmt.Errorf("could not store the uploaded file")
	}

	metrics.Get().ImageUploadsTotal.WithLabelValues(uploaderLabel(h.uploader)).Inc()
	return result.URL, nil
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(io.LimitReader(file, maxImageBytes))
}

func postDetailPath(post *models.Post) string {
	return fmt.Sprintf("/u/%s/%s", post.Author.Username, post.ID)
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func uploaderLabel(u interface{}) string {
	switch u.(type) {
	case *storage.S3Uploader:
		return "s3"
	case *storage.LocalUploader:
		return "local"
	default:
		return "other"
	}
}
