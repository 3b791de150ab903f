package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/quillhq/quill/backend/internal/auth"
	"github.com/quillhq/quill/backend/internal/database"
	"github.com/quillhq/quill/backend/internal/middleware"
)

// RegisterRoutes attaches every route to the engine. The session loader
// runs globally so public pages can still show who is signed in; the
// login gate wraps only the routes that mutate or personalize.
func (h *Handlers) RegisterRoutes(r *gin.Engine) {
	r.Use(auth.LoadUser(h.authService))

	requireLogin := auth.RequireLogin()
	authLimiter := middleware.RedisRateLimitMiddleware(10, time.Minute)

	// Listings and detail pages
	r.GET("/", h.Index)
	r.GET("/group/:slug", h.GroupPosts)
	r.GET("/u/:username", h.Profile)
	r.GET("/u/:username/follow", requireLogin, h.FollowAuthor)
	r.GET("/u/:username/unfollow", requireLogin, h.UnfollowAuthor)
	r.GET("/u/:username/:post_id", h.PostDetail)

	// Authoring
	r.GET("/new", requireLogin, h.NewPostForm)
	r.POST("/new", requireLogin, h.CreatePost)
	r.GET("/u/:username/:post_id/edit", requireLogin, h.EditPostForm)
	r.POST("/u/:username/:post_id/edit", requireLogin, h.UpdatePost)

	// Comments
	r.GET("/u/:username/:post_id/comment", requireLogin, h.CommentForm)
	r.POST("/u/:username/:post_id/comment", requireLogin, h.AddComment)

	// Personalized feed
	r.GET("/follow", requireLogin, h.Feed)

	// Accounts
	r.GET("/auth/signup", h.SignupForm)
	r.POST("/auth/signup", authLimiter, h.Signup)
	r.GET("/auth/login", h.LoginForm)
	r.POST("/auth/login", authLimiter, h.Login)
	r.GET("/auth/logout", h.Logout)

	// Operational endpoints
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(h.NotFound)
}

// Health reports process and database liveness
func (h *Handlers) Health(c *gin.Context) {
	if err := database.Health(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "degraded",
			"database": "unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "ok",
	})
}
