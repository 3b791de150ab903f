package handlers

import (
	"net/http"
	"net/url"

	"github.com/quillhq/quill/backend/internal/auth"
	"github.com/quillhq/quill/backend/internal/database"
	"github.com/quillhq/quill/backend/internal/models"
)

func (s *HandlersSuite) TestSignupCreatesAccountAndSignsIn() {
	w := s.postForm("/auth/signup", nil, url.Values{
		"email":    {"alice@example.com"},
		"username": {"alice"},
		"password": {"hunter2hunter2"},
	})
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/", w.Header().Get("Location"))

	var user models.User
	s.Require().NoError(database.DB.First(&user).Error)
	s.Equal("alice", user.Username)

	cookieSet := false
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == auth.SessionCookie && cookie.Value != "" {
			cookieSet = true
		}
	}
	s.True(cookieSet, "session cookie should be set after signup")
}

func (s *HandlersSuite) TestSignupDuplicateUsernameRerenders() {
	s.createUser("alice")

	w := s.postForm("/auth/signup", nil, url.Values{
		"email":    {"fresh@example.com"},
		"username": {"alice"},
		"password": {"hunter2hunter2"},
	})
	s.Equal(http.StatusOK, w.Code)
	s.Contains(readBody(w), "already taken")
}

func (s *HandlersSuite) TestLoginAndRedirectToNext() {
	w := s.postForm("/auth/signup", nil, url.Values{
		"email":    {"alice@example.com"},
		"username": {"alice"},
		"password": {"hunter2hunter2"},
	})
	s.Equal(http.StatusFound, w.Code)

	w = s.postForm("/auth/login", nil, url.Values{
		"username": {"alice"},
		"password": {"hunter2hunter2"},
		"next":     {"/new"},
	})
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/new", w.Header().Get("Location"))
}

func (s *HandlersSuite) TestLoginBadPasswordRerenders() {
	s.postForm("/auth/signup", nil, url.Values{
		"email":    {"alice@example.com"},
		"username": {"alice"},
		"password": {"hunter2hunter2"},
	})

	w := s.postForm("/auth/login", nil, url.Values{
		"username": {"alice"},
		"password": {"wrong-password"},
	})
	s.Equal(http.StatusOK, w.Code)
	s.Contains(readBody(w), "Invalid username or password.")
}

func (s *HandlersSuite) TestLoginRejectsOffsiteNext() {
	s.postForm("/auth/signup", nil, url.Values{
		"email":    {"alice@example.com"},
		"username": {"alice"},
		"password": {"hunter2hunter2"},
	})

	w := s.postForm("/auth/login", nil, url.Values{
		"username": {"alice"},
		"password": {"hunter2hunter2"},
		"next":     {"https://evil.example.com/"},
	})
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/", w.Header().Get("Location"))
}

func (s *HandlersSuite) TestLogoutClearsCookie() {
	alice := s.createUser("alice")

	w := s.get("/auth/logout", alice)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/", w.Header().Get("Location"))

	cleared := false
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == auth.SessionCookie && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	s.True(cleared, "session cookie should be expired on logout")
}

func (s *HandlersSuite) TestProtectedRedirectCarriesNext() {
	w := s.get("/new", nil)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/auth/login?next=%2Fnew", w.Header().Get("Location"))
}
