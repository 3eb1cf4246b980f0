// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// DefaultCoverImage is used when a post is published without a cover.
const DefaultCoverImage = "https://placehold.co/100"

// AnonymousAuthor is the byline for posts whose author has no display name.
const AnonymousAuthor = "Anonymous"

// MaxContentLength bounds post content, counted in runes.
const MaxContentLength = 500

// DefaultCategory is assigned when a post is published without one.
const DefaultCategory = "Other"

// Categories lists the accepted post categories in display order.
var Categories = []string{
	"IT", "Technology", "Sports", "Business", "Lifestyle", "Health",
	"Education", "Entertainment", "Travel", "Food", "Fashion", "News",
	"Science", "Politics", "Other",
}

// Post represents a blog post in Quilog.
//
// Likes and Comments are sets of ids held on the post itself. Relational
// backends keep them in join tables, so gorm ignores the slices.
type Post struct {
	ID          string    `gorm:"primaryKey;size:64" bson:"_id" json:"id"`
	Title       string    `gorm:"not null" bson:"title" json:"title"`
	Content     string    `gorm:"type:text;not null" bson:"content" json:"content"`
	Author      string    `bson:"author" json:"author"`
	Tags        string    `bson:"tags" json:"tags"`
	Category    string    `gorm:"index" bson:"category" json:"category"`
	PublishDate string    `bson:"publishDate" json:"publishDate"`
	CoverImage  string    `bson:"coverImage" json:"coverImage"`
	CreatedAt   time.Time `gorm:"index" bson:"createdAt" json:"createdAt"`
	UserID      string    `gorm:"index;size:128" bson:"userId" json:"userId"`
	UserName    string    `bson:"userName" json:"userName"`
	Likes       []string  `gorm:"-" bson:"likes" json:"likes"`
	Comments    []string  `gorm:"-" bson:"comments" json:"comments"`
}

// TableName keeps the document collection name for relational backends.
func (Post) TableName() string { return "blogs" }

// LikedBy reports whether userID is in the post's like set.
func (p *Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// Normalize replaces missing like and comment sets with empty ones.
func (p *Post) Normalize() {
	if p.Likes == nil {
		p.Likes = []string{}
	}
	if p.Comments == nil {
		p.Comments = []string{}
	}
}

// IsCategory reports whether name is one of Categories.
func IsCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// PostLike is the relational row backing one member of Post.Likes.
type PostLike struct {
	ID     uint   `gorm:"primaryKey"`
	PostID string `gorm:"size:64;not null;uniqueIndex:idx_post_likes_pair"`
	UserID string `gorm:"size:128;not null;uniqueIndex:idx_post_likes_pair"`
}

// TableName overrides the default table name.
func (PostLike) TableName() string { return "post_likes" }

// PostComment is the relational row backing one member of Post.Comments.
// The autoincrement ID records append order.
type PostComment struct {
	ID        uint   `gorm:"primaryKey"`
	PostID    string `gorm:"size:64;not null;uniqueIndex:idx_post_comments_pair"`
	CommentID string `gorm:"size:64;not null;uniqueIndex:idx_post_comments_pair"`
}

// TableName overrides the default table name.
func (PostComment) TableName() string { return "post_comments" }
