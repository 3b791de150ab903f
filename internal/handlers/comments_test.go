package handlers

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/quillhq/quill/backend/internal/database"
	"github.com/quillhq/quill/backend/internal/models"
)

func (s *HandlersSuite) TestCommentFormRequiresLogin() {
	alice := s.createUser("alice")
	post := s.createPost(alice, "commentable")

	w := s.get(fmt.Sprintf("/u/alice/%s/comment", post.ID), nil)
	s.Equal(http.StatusFound, w.Code)
	s.Contains(w.Header().Get("Location"), "/auth/login")
	s.NotContains(readBody(w), "commentable")
}

func (s *HandlersSuite) TestCommentFormRendersPostWhenAuthed() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")
	post := s.createPost(alice, "commentable")

	w := s.get(fmt.Sprintf("/u/alice/%s/comment", post.ID), bob)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(readBody(w), "commentable")
}

func (s *HandlersSuite) TestAddCommentAppearsOnDetailPage() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")
	post := s.createPost(alice, "discuss this")

	w := s.postForm(fmt.Sprintf("/u/alice/%s/comment", post.ID), bob, url.Values{
		"text": {"a thoughtful reply"},
	})
	s.Equal(http.StatusFound, w.Code)
	s.Equal(fmt.Sprintf("/u/alice/%s", post.ID), w.Header().Get("Location"))

	var comment models.Comment
	s.Require().NoError(database.DB.First(&comment).Error)
	s.Equal(bob.ID, comment.AuthorID)
	s.Equal(post.ID, comment.PostID)

	body := readBody(s.get(fmt.Sprintf("/u/alice/%s", post.ID), nil))
	s.Contains(body, "a thoughtful reply")
	s.Contains(body, "bob")
}

func (s *HandlersSuite) TestAddCommentRequiresLogin() {
	alice := s.createUser("alice")
	post := s.createPost(alice, "no drive-by comments")

	w := s.postForm(fmt.Sprintf("/u/alice/%s/comment", post.ID), nil, url.Values{
		"text": {"anonymous spam"},
	})
	s.Equal(http.StatusFound, w.Code)
	s.Contains(w.Header().Get("Location"), "/auth/login")

	var count int64
	database.DB.Model(&models.Comment{}).Count(&count)
	s.Zero(count)
}

func (s *HandlersSuite) TestAddEmptyCommentCreatesNothing() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")
	post := s.createPost(alice, "needs substance")

	w := s.postForm(fmt.Sprintf("/u/alice/%s/comment", post.ID), bob, url.Values{"text": {""}})
	s.Equal(http.StatusOK, w.Code)
	s.Contains(readBody(w), "This field is required.")

	var count int64
	database.DB.Model(&models.Comment{}).Count(&count)
	s.Zero(count)
}

func (s *HandlersSuite) TestAddCommentToMissingPostIs404() {
	s.createUser("alice")
	bob := s.createUser("bob")

	w := s.postForm("/u/alice/not-a-post-id/comment", bob, url.Values{"text": {"hello"}})
	s.Equal(http.StatusNotFound, w.Code)
}
