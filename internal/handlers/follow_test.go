package handlers

import (
	"net/http"

	"github.com/quillhq/quill/backend/internal/database"
	"github.com/quillhq/quill/backend/internal/models"
)

func (s *HandlersSuite) followCount() int64 {
	var count int64
	database.DB.Model(&models.Follow{}).Count(&count)
	return count
}

func (s *HandlersSuite) TestFollowThenUnfollowIsNetZero() {
	s.createUser("alice")
	bob := s.createUser("bob")

	w := s.get("/u/alice/follow", bob)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/u/alice", w.Header().Get("Location"))
	s.Equal(int64(1), s.followCount())

	w = s.get("/u/alice/unfollow", bob)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/u/alice", w.Header().Get("Location"))
	s.Equal(int64(0), s.followCount())
}

func (s *HandlersSuite) TestFollowIsIdempotent() {
	s.createUser("alice")
	bob := s.createUser("bob")

	s.get("/u/alice/follow", bob)
	s.get("/u/alice/follow", bob)
	s.get("/u/alice/follow", bob)

	s.Equal(int64(1), s.followCount())
}

func (s *HandlersSuite) TestUnfollowWithoutEdgeIsNoOp() {
	s.createUser("alice")
	bob := s.createUser("bob")

	w := s.get("/u/alice/unfollow", bob)
	s.Equal(http.StatusFound, w.Code)
	s.Equal(int64(0), s.followCount())
}

func (s *HandlersSuite) TestSelfFollowIsSkipped() {
	alice := s.createUser("alice")

	w := s.get("/u/alice/follow", alice)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/u/alice", w.Header().Get("Location"))
	s.Equal(int64(0), s.followCount())
}

func (s *HandlersSuite) TestFollowUnknownUserIs404() {
	bob := s.createUser("bob")

	w := s.get("/u/nobody/follow", bob)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlersSuite) TestFollowRequiresLogin() {
	s.createUser("alice")

	w := s.get("/u/alice/follow", nil)
	s.Equal(http.StatusFound, w.Code)
	s.Contains(w.Header().Get("Location"), "/auth/login")
	s.Equal(int64(0), s.followCount())
}

func (s *HandlersSuite) TestFeedShowsOnlyFollowedAuthors() {
	alice := s.createUser("alice")
	carol := s.createUser("carol")
	bob := s.createUser("bob")
	s.createPost(alice, "from alice")
	s.createPost(carol, "from carol")

	s.get("/u/alice/follow", bob)

	body := readBody(s.get("/follow", bob))
	s.Contains(body, "from alice")
	s.NotContains(body, "from carol")
}

func (s *HandlersSuite) TestFeedIsLive() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")
	s.get("/u/alice/follow", bob)

	body := readBody(s.get("/follow", bob))
	s.NotContains(body, "fresh off the press")

	// A new post from a followed author shows up on the very next request
	s.createPost(alice, "fresh off the press")
	body = readBody(s.get("/follow", bob))
	s.Contains(body, "fresh off the press")
}

func (s *HandlersSuite) TestFeedRequiresLogin() {
	w := s.get("/follow", nil)
	s.Equal(http.StatusFound, w.Code)
	s.Contains(w.Header().Get("Location"), "/auth/login")
}

func (s *HandlersSuite) TestProfileShowsFollowState() {
	s.createUser("alice")
	bob := s.createUser("bob")

	body := readBody(s.get("/u/alice", bob))
	s.Contains(body, "/u/alice/follow")

	s.get("/u/alice/follow", bob)

	body = readBody(s.get("/u/alice", bob))
	s.Contains(body, "/u/alice/unfollow")
}
