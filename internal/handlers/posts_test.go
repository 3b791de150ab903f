package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/quillhq/quill/backend/internal/database"
	"github.com/quillhq/quill/backend/internal/models"
)

func (s *HandlersSuite) TestIndexListsPosts() {
	author := s.createUser("alice")
	s.createPost(author, "hello world")

	w := s.get("/", nil)
	s.Equal(http.StatusOK, w.Code)
	body := readBody(w)
	s.Contains(body, "hello world")
	s.Contains(body, "alice")
}

func (s *HandlersSuite) TestIndexPageSizeIsTen() {
	author := s.createUser("alice")
	for i := 0; i < 13; i++ {
		post := s.createPost(author, fmt.Sprintf("post number %d", i))
		// Spread timestamps so ordering is deterministic
		database.DB.Model(post).Update("published_at", time.Now().UTC().Add(time.Duration(i)*time.Second))
	}

	body := readBody(s.get("/", nil))
	s.Equal(10, strings.Count(body, "post-card"))

	body = readBody(s.get("/?page=2", nil))
	s.Equal(3, strings.Count(body, "post-card"))
}

func (s *HandlersSuite) TestIndexNewestFirst() {
	author := s.createUser("alice")
	older := s.createPost(author, "the older post")
	newer := s.createPost(author, "the newer post")
	database.DB.Model(older).Update("published_at", time.Now().UTC().Add(-time.Hour))
	database.DB.Model(newer).Update("published_at", time.Now().UTC())

	body := readBody(s.get("/", nil))
	s.Less(strings.Index(body, "the newer post"), strings.Index(body, "the older post"))
}

func (s *HandlersSuite) TestIndexOutOfRangePageClamps() {
	author := s.createUser("alice")
	s.createPost(author, "only post")

	w := s.get("/?page=999", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(readBody(w), "only post")
}

func (s *HandlersSuite) TestGroupPageFiltersBySlug() {
	author := s.createUser("alice")
	group := s.createGroup("golang")
	inGroup := s.createPost(author, "grouped post")
	s.createPost(author, "ungrouped post")
	database.DB.Model(inGroup).Update("group_id", group.ID)

	body := readBody(s.get("/group/golang", nil))
	s.Contains(body, "grouped post")
	s.NotContains(body, "ungrouped post")
}

func (s *HandlersSuite) TestGroupPageUnknownSlugIs404() {
	w := s.get("/group/missing", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Contains(readBody(w), "/group/missing")
}

func (s *HandlersSuite) TestProfilePageSizeIsFiveWithCount() {
	author := s.createUser("alice")
	for i := 0; i < 7; i++ {
		post := s.createPost(author, fmt.Sprintf("profile post %d", i))
		database.DB.Model(post).Update("published_at", time.Now().UTC().Add(time.Duration(i)*time.Second))
	}

	body := readBody(s.get("/u/alice", nil))
	s.Equal(5, strings.Count(body, "post-card"))
	s.Contains(body, "7 posts")
}

func (s *HandlersSuite) TestProfileUnknownUserIs404() {
	w := s.get("/u/nobody", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlersSuite) TestPostDetailShowsPost() {
	author := s.createUser("alice")
	post := s.createPost(author, "a detailed post")

	w := s.get(fmt.Sprintf("/u/alice/%s", post.ID), nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(readBody(w), "a detailed post")
}

func (s *HandlersSuite) TestPostDetailWrongAuthorIs404() {
	alice := s.createUser("alice")
	s.createUser("bob")
	post := s.createPost(alice, "alice's post")

	w := s.get(fmt.Sprintf("/u/bob/%s", post.ID), nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlersSuite) TestNewPostRequiresLogin() {
	w := s.get("/new", nil)
	s.Equal(http.StatusFound, w.Code)
	s.Contains(w.Header().Get("Location"), "/auth/login")

	w = s.postForm("/new", nil, url.Values{"text": {"drive-by post"}})
	s.Equal(http.StatusFound, w.Code)
	s.Contains(w.Header().Get("Location"), "/auth/login")

	var count int64
	database.DB.Model(&models.Post{}).Count(&count)
	s.Zero(count)
}

func (s *HandlersSuite) TestCreatePost() {
	author := s.createUser("alice")

	w := s.postForm("/new", author, url.Values{"text": {"my first post"}})
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/", w.Header().Get("Location"))

	var post models.Post
	s.Require().NoError(database.DB.First(&post).Error)
	s.Equal("my first post", post.Text)
	s.Equal(author.ID, post.AuthorID)
	s.Nil(post.GroupID)
	s.False(post.PublishedAt.IsZero())
}

func (s *HandlersSuite) TestCreatePostInGroup() {
	author := s.createUser("alice")
	group := s.createGroup("golang")

	w := s.postForm("/new", author, url.Values{
		"text":  {"grouped"},
		"group": {group.ID},
	})
	s.Equal(http.StatusFound, w.Code)

	var post models.Post
	s.Require().NoError(database.DB.First(&post).Error)
	s.Require().NotNil(post.GroupID)
	s.Equal(group.ID, *post.GroupID)
}

func (s *HandlersSuite) TestCreatePostEmptyTextRerendersForm() {
	author := s.createUser("alice")

	w := s.postForm("/new", author, url.Values{"text": {""}})
	s.Equal(http.StatusOK, w.Code)
	s.Contains(readBody(w), "This field is required.")

	var count int64
	database.DB.Model(&models.Post{}).Count(&count)
	s.Zero(count)
}

func (s *HandlersSuite) TestCreatePostWithImage() {
	author := s.createUser("alice")

	w := s.postMultipart("/new", author, map[string]string{"text": "with image"}, "pic.gif", tinyGIF)
	s.Equal(http.StatusFound, w.Code)

	var post models.Post
	s.Require().NoError(database.DB.First(&post).Error)
	s.Contains(post.ImageURL, "/media/")
	s.True(strings.HasSuffix(post.ImageURL, ".gif"))
}

func (s *HandlersSuite) TestCreatePostRejectsNonImageExtension() {
	author := s.createUser("alice")

	w := s.postMultipart("/new", author, map[string]string{"text": "has bad file"}, "notes.txt", []byte("plain text"))
	s.Equal(http.StatusOK, w.Code)
	body := readBody(w)
	s.Contains(body, "txt")

	var count int64
	database.DB.Model(&models.Post{}).Count(&count)
	s.Zero(count)
}

func (s *HandlersSuite) TestImageURLAppearsOnAllListings() {
	author := s.createUser("alice")
	group := s.createGroup("golang")

	w := s.postMultipart("/new", author, map[string]string{
		"text":  "illustrated",
		"group": group.ID,
	}, "pic.gif", tinyGIF)
	s.Equal(http.StatusFound, w.Code)

	var post models.Post
	s.Require().NoError(database.DB.First(&post).Error)
	s.Require().NotEmpty(post.ImageURL)

	for _, path := range []string{
		"/",
		"/group/golang",
		"/u/alice",
		fmt.Sprintf("/u/alice/%s", post.ID),
	} {
		body := readBody(s.get(path, nil))
		s.Contains(body, post.ImageURL, "image missing on %s", path)
	}
}

func (s *HandlersSuite) TestOwnerCanEditPost() {
	author := s.createUser("alice")
	post := s.createPost(author, "original text")

	w := s.postForm(fmt.Sprintf("/u/alice/%s/edit", post.ID), author, url.Values{"text": {"edited text"}})
	s.Equal(http.StatusFound, w.Code)
	s.Equal(fmt.Sprintf("/u/alice/%s", post.ID), w.Header().Get("Location"))

	var reloaded models.Post
	s.Require().NoError(database.DB.First(&reloaded, "id = ?", post.ID).Error)
	s.Equal("edited text", reloaded.Text)
	s.Equal(author.ID, reloaded.AuthorID)
}

func (s *HandlersSuite) TestNonOwnerEditRedirectsWithoutChange() {
	alice := s.createUser("alice")
	mallory := s.createUser("mallory")
	group := s.createGroup("golang")
	post := s.createPost(alice, "untouchable")
	database.DB.Model(post).Update("group_id", group.ID)

	// GET form
	w := s.get(fmt.Sprintf("/u/alice/%s/edit", post.ID), mallory)
	s.Equal(http.StatusFound, w.Code)
	s.Equal(fmt.Sprintf("/u/alice/%s", post.ID), w.Header().Get("Location"))

	// POST edit
	w = s.postForm(fmt.Sprintf("/u/alice/%s/edit", post.ID), mallory, url.Values{"text": {"hijacked"}})
	s.Equal(http.StatusFound, w.Code)
	s.Equal(fmt.Sprintf("/u/alice/%s", post.ID), w.Header().Get("Location"))

	var reloaded models.Post
	s.Require().NoError(database.DB.First(&reloaded, "id = ?", post.ID).Error)
	s.Equal("untouchable", reloaded.Text)
	s.Equal(alice.ID, reloaded.AuthorID)
	s.Require().NotNil(reloaded.GroupID)
	s.Equal(group.ID, *reloaded.GroupID)
}

func (s *HandlersSuite) TestEditRequiresLogin() {
	alice := s.createUser("alice")
	post := s.createPost(alice, "private draft")

	w := s.get(fmt.Sprintf("/u/alice/%s/edit", post.ID), nil)
	s.Equal(http.StatusFound, w.Code)
	s.Contains(w.Header().Get("Location"), "/auth/login")
}
