// internal/domain/models/blog.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Blog tags form a closed vocabulary.
var BlogTags = []string{"Internship", "Job", "Guide", "Tech Article", "Story"}

// ValidBlogTag reports whether tag is in the closed vocabulary.
func ValidBlogTag(tag string) bool {
	for _, t := range BlogTags {
		if t == tag {
			return true
		}
	}
	return false
}

// Blog is an authored post, optionally badged with the author's club.
// IsDraft and IsPublished are intended to be mutually exclusive but the
// document does not enforce it; readers treat draft as the stronger flag.
type Blog struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title   string             `bson:"title" json:"title"`
	Content string             `bson:"content" json:"content"`
	Media   string             `bson:"media,omitempty" json:"media,omitempty"`

	Author    primitive.ObjectID  `bson:"author" json:"author"`
	ClubBadge *primitive.ObjectID `bson:"club_badge,omitempty" json:"club_badge,omitempty"`

	Tags          []string `bson:"tags,omitempty" json:"tags,omitempty"`
	AuthorComment string   `bson:"author_comment,omitempty" json:"author_comment,omitempty"`

	Upvotes   []primitive.ObjectID `bson:"upvotes" json:"upvotes"`
	Downvotes []primitive.ObjectID `bson:"downvotes" json:"downvotes"`
	ViewCount int                  `bson:"view_count" json:"view_count"`

	IsDraft     bool `bson:"is_draft" json:"is_draft"`
	IsPublished bool `bson:"is_published" json:"is_published"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
