package auth

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

// LoadUser reads the session cookie, if any, and stores the current user on
// the gin context. It never blocks the request: anonymous visitors and
// visitors with stale cookies pass through with no user set.
func LoadUser(service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(SessionCookie)
		if err != nil || cookie == "" {
			c.Next()
			return
		}

		user, err := service.ValidateToken(cookie)
		if err != nil {
			// Stale or forged cookie, drop it
			c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
			c.Next()
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// RequireLogin redirects anonymous visitors to the login page, carrying the
// attempted URL so login can send them back. Protected content is never
// rendered for an anonymous request.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get("user"); !exists {
			next := url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, "/auth/login?next="+next)
			c.Abort()
			return
		}
		c.Next()
	}
}
