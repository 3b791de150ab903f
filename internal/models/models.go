package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a Quill author account with native auth
type User struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Username    string `gorm:"uniqueIndex;not null" json:"username"`
	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName string `json:"display_name"`

	PasswordHash string `gorm:"type:text;not null" json:"-"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Group is a topic collection of posts, addressed by its URL slug
type Group struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	Posts []Post `gorm:"foreignKey:GroupID" json:"-"`

	// GORM fields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Post is an authored entry, optionally grouped and optionally illustrated.
// AuthorID is set once at creation and never reassigned by any workflow.
type Post struct {
	ID   string `gorm:"primaryKey;type:uuid" json:"id"`
	Text string `gorm:"type:text;not null" json:"text"`

	PublishedAt time.Time `gorm:"not null;index" json:"published_at"`

	AuthorID string `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	GroupID *string `gorm:"type:uuid;index" json:"group_id,omitempty"`
	Group   *Group  `gorm:"foreignKey:GroupID" json:"group,omitempty"`

	// Public URL of the uploaded attachment, empty when the post has no image
	ImageURL string `json:"image_url"`

	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Comment is attached to exactly one post; immutable after creation
type Comment struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	PostID string `gorm:"not null;index" json:"post_id"`
	Post   Post   `gorm:"foreignKey:PostID" json:"-"`

	AuthorID string `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	Text string `gorm:"type:text;not null" json:"text"`

	// GORM fields
	CreatedAt time.Time `json:"created_at"`
}

// Follow is a directed edge: the follower's feed includes the author's posts.
// The composite unique index guarantees at most one row per ordered pair,
// which is what makes concurrent duplicate follow requests converge.
type Follow struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	FollowerID string `gorm:"not null;index;uniqueIndex:idx_follows_follower_author" json:"follower_id"`
	Follower   User   `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`

	AuthorID string `gorm:"not null;index;uniqueIndex:idx_follows_follower_author" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	// GORM fields
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate hooks for GORM
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = generateUUID()
	}
	return nil
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = generateUUID()
	}
	return nil
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	if p.PublishedAt.IsZero() {
		p.PublishedAt = time.Now().UTC()
	}
	return nil
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = generateUUID()
	}
	return nil
}

// Helper function for UUID generation
func generateUUID() string {
	return uuid.New().String()
}
