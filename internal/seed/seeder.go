// Package seed fills a development database with plausible fake data.
package seed

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/quillhq/quill/backend/internal/database"
	"github.com/quillhq/quill/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Options controls how much data the seeder creates
type Options struct {
	Users           int
	Groups          int
	PostsPerUser    int
	CommentsPerPost int
	FollowsPerUser  int
	Password        string // shared password for all seeded accounts
}

// DefaultOptions returns a small but browsable data set
func DefaultOptions() Options {
	return Options{
		Users:           12,
		Groups:          4,
		PostsPerUser:    8,
		CommentsPerPost: 2,
		FollowsPerUser:  3,
		Password:        "password123",
	}
}

// Run populates the database with fake users, groups, posts, comments and
// follow edges. Idempotency is not a goal; run it against a fresh database.
func Run(opts Options) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	users := make([]models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		username := fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), i)
		user := models.User{
			Username:     username,
			Email:        fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
			DisplayName:  gofakeit.Name(),
			PasswordHash: string(hashed),
		}
		if err := database.DB.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		users = append(users, user)
	}

	groups := make([]models.Group, 0, opts.Groups)
	for i := 0; i < opts.Groups; i++ {
		title := gofakeit.BookTitle()
		group := models.Group{
			Title:       title,
			Slug:        fmt.Sprintf("%s-%d", slugify(title), i),
			Description: gofakeit.Sentence(12),
		}
		if err := database.DB.Create(&group).Error; err != nil {
			return fmt.Errorf("failed to seed group: %w", err)
		}
		groups = append(groups, group)
	}

	for _, user := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			post := models.Post{
				Text:     gofakeit.Paragraph(1, 3, 12, " "),
				AuthorID: user.ID,
			}
			// Roughly half the posts land in a group
			if len(groups) > 0 && gofakeit.Bool() {
				g := groups[gofakeit.Number(0, len(groups)-1)]
				post.GroupID = &g.ID
			}
			if err := database.DB.Create(&post).Error; err != nil {
				return fmt.Errorf("failed to seed post: %w", err)
			}

			for j := 0; j < opts.CommentsPerPost; j++ {
				commenter := users[gofakeit.Number(0, len(users)-1)]
				comment := models.Comment{
					PostID:   post.ID,
					AuthorID: commenter.ID,
					Text:     gofakeit.Sentence(10),
				}
				if err := database.DB.Create(&comment).Error; err != nil {
					return fmt.Errorf("failed to seed comment: %w", err)
				}
			}
		}
	}

	for _, user := range users {
		for i := 0; i < opts.FollowsPerUser; i++ {
			target := users[gofakeit.Number(0, len(users)-1)]
			if target.ID == user.ID {
				continue
			}
			var edge models.Follow
			err := database.DB.
				Where(models.Follow{FollowerID: user.ID, AuthorID: target.ID}).
				FirstOrCreate(&edge).Error
			if err != nil {
				return fmt.Errorf("failed to seed follow: %w", err)
			}
		}
	}

	return nil
}

func slugify(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
