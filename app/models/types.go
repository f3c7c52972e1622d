package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Post is the system-of-record entry for a shared photo.
type Post struct {
	ID          int        `json:"id" validate:"gte=0"`
	Title       string     `json:"title" validate:"required,max=40"`
	Description string     `json:"description" validate:"max=2000"`
	Tags        []*Tag     `json:"tags" validate:"-"`
	AuthorID    int        `json:"authorId,omitempty" validate:"gte=0"`
	Image       *Image     `json:"image,omitempty"`
	FolderIDs   []int      `json:"folderIds,omitempty" validate:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
	Comments    []*Comment `json:"comments,omitempty" validate:"-"`
}

// Comment represents a comment on a post.
type Comment struct {
	ID             int       `json:"id" validate:"gte=0"`
	PostID         int       `json:"postId" validate:"required,gt=0"`
	AuthorUsername string    `json:"authorUsername" validate:"required,min=2,max=30"`
	Text           string    `json:"text" validate:"required,min=1,max=500"`
	CreatedAt      time.Time `json:"createdAt"`
	Post           *Post     `json:"-" validate:"-"`
}

// Tag is a unique, named label attached to posts and preferred by users.
type Tag struct {
	ID   int    `json:"id" validate:"gte=0"`
	Name string `json:"name" validate:"required,min=1,max=30"`
}

// Folder is a user's named collection of posts. PostIDs is the membership
// list; every member post carries the folder id in its FolderIDs.
type Folder struct {
	ID          int       `json:"id" validate:"gte=0"`
	Title       string    `json:"title" validate:"required,max=40"`
	Description string    `json:"description" validate:"max=255"`
	OwnerID     int       `json:"ownerId" validate:"gt=0"`
	PostIDs     []int     `json:"postIds" validate:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Image is the reference to a post's uploaded media.
type Image struct {
	ID  int    `json:"id"`
	URL string `json:"url" validate:"required,url"`
}

// User is an account as seen by the feed: an identity and its preferred tags.
type User struct {
	ID            int       `json:"id" validate:"gte=0"`
	Username      string    `json:"username" validate:"required,min=2,max=30"`
	Email         string    `json:"email" validate:"required,email,max=30"`
	PasswordHash  string    `json:"-"`
	PreferredTags []*Tag    `json:"preferredTags" validate:"-"`
	CreatedAt     time.Time `json:"createdAt"`
}

// SearchDocument is the denormalised, full-text projection of a Post.
type SearchDocument struct {
	DocumentID  string   `json:"documentId"`
	PostID      int      `json:"postId"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}
