package creations

import (
	"time"

	"github.com/lib/pq"
)

// Type is the kind of artifact a creation holds.
type Type string

const (
	TypeArticle      Type = "article"
	TypeBlogTitle    Type = "blog-title"
	TypeImage        Type = "image"
	TypeResumeReview Type = "resume-review"
)

// Valid reports whether t is a known creation type.
func (t Type) Valid() bool {
	switch t {
	case TypeArticle, TypeBlogTitle, TypeImage, TypeResumeReview:
		return true
	}
	return false
}

// Creation is one persisted generation result. Content is text for
// article, blog-title and resume-review, and a URL for image.
type Creation struct {
	ID        string
	UserID    string
	Prompt    string
	Content   string
	Type      Type
	Publish   bool
	Likes     pq.StringArray
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LikedBy reports whether userID is in the like set.
func (c Creation) LikedBy(userID string) bool {
	for _, id := range c.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
