package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quillhq/quill/backend/internal/auth"
	"github.com/quillhq/quill/backend/internal/logger"
	"github.com/quillhq/quill/backend/internal/models"
)

// SignupForm renders the registration page
func (h *Handlers) SignupForm(c *gin.Context) {
	h.render(c, http.StatusOK, "signup.html", gin.H{
		"Email":    "",
		"Username": "",
	})
}

// Signup registers a new account and signs the visitor in
func (h *Handlers) Signup(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		h.render(c, http.StatusOK, "signup.html", gin.H{
			"Error":    "Please fill in all fields. Passwords need at least 8 characters.",
			"Email":    c.PostForm("email"),
			"Username": c.PostForm("username"),
		})
		return
	}

	user, err := h.authService.Register(req)
	if err != nil {
		msg := "Could not create the account."
		switch {
		case errors.Is(err, auth.ErrUserExists):
			msg = "An account with that email already exists."
		case errors.Is(err, auth.ErrUsernameExists):
			msg = "That username is already taken."
		default:
			logger.ErrorWithFields("Signup failed", err)
		}
		h.render(c, http.StatusOK, "signup.html", gin.H{
			"Error":    msg,
			"Email":    req.Email,
			"Username": req.Username,
		})
		return
	}

	logger.InfoWithFields("User registered", logger.WithUserID(user.ID))
	h.startSession(c, user)
}

// LoginForm renders the login page
func (h *Handlers) LoginForm(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", gin.H{
		"Next":     c.Query("next"),
		"Username": "",
	})
}

// Login authenticates a returning visitor
func (h *Handlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.render(c, http.StatusOK, "login.html", gin.H{
			"Error":    "Both fields are required.",
			"Username": c.PostForm("username"),
			"Next":     c.PostForm("next"),
		})
		return
	}

	user, err := h.authService.Authenticate(req)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			logger.ErrorWithFields("Login failed", err)
		}
		h.render(c, http.StatusOK, "login.html", gin.H{
			"Error":    "Invalid username or password.",
			"Username": req.Username,
			"Next":     c.PostForm("next"),
		})
		return
	}

	logger.InfoWithFields("User logged in", logger.WithUserID(user.ID))
	h.startSession(c, user)
}

// Logout clears the session cookie
func (h *Handlers) Logout(c *gin.Context) {
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

// startSession sets the session cookie and redirects to the page the
// visitor originally asked for, or the index.
func (h *Handlers) startSession(c *gin.Context, user *models.User) {
	token, err := h.authService.GenerateToken(user)
	if err != nil {
		logger.ErrorWithFields("Failed to sign session token", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.SetCookie(auth.SessionCookie, token, int(auth.SessionTTL.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusFound, safeNext(c.PostForm("next")))
}

// safeNext keeps post-login redirects on this site
func safeNext(next string) string {
	if next == "" {
		return "/"
	}
	decoded, err := url.QueryUnescape(next)
	if err != nil {
		return "/"
	}
	if !strings.HasPrefix(decoded, "/") || strings.HasPrefix(decoded, "//") {
		return "/"
	}
	return decoded
}
