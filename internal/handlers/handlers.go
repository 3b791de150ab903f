// Package handlers contains the HTTP handlers for all page and form routes.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quillhq/quill/backend/internal/auth"
	"github.com/quillhq/quill/backend/internal/storage"
	"github.com/quillhq/quill/backend/internal/util"
)

// Page sizes for listing views. Profile pages show fewer posts because the
// sidebar carries author details.
const (
	pageSizeListing = 10
	pageSizeProfile = 5
)

// Handlers holds dependencies for HTTP handlers
type Handlers struct {
	authService *auth.Service
	uploader    storage.Uploader
}

// NewHandlers creates a new handlers instance
func NewHandlers(authService *auth.Service, uploader storage.Uploader) *Handlers {
	return &Handlers{
		authService: authService,
		uploader:    uploader,
	}
}

// render writes an HTML page, injecting the current user so every template
// can show the right navigation state.
func (h *Handlers) render(c *gin.Context, status int, template string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if user, ok := util.CurrentUser(c); ok {
		data["User"] = user
	}
	c.HTML(status, template, data)
}

// renderNotFound renders the 404 page carrying the attempted path
func (h *Handlers) renderNotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "404.html", gin.H{
		"Path": c.Request.URL.Path,
	})
}

// NotFound handles requests that match no route
func (h *Handlers) NotFound(c *gin.Context) {
	h.renderNotFound(c)
}

// Recovery renders the 500 page after a panic. Detail stays in the logs.
func (h *Handlers) Recovery(c *gin.Context, _ any) {
	h.render(c, http.StatusInternalServerError, "500.html", gin.H{})
}
