package models

import "time"

// Draft holds the unsaved fields of a post being written.
type Draft struct {
	Title       string    `json:"title,omitempty"`
	Content     string    `json:"content,omitempty"`
	Author      string    `json:"author,omitempty"`
	Tags        string    `json:"tags,omitempty"`
	Category    string    `json:"category,omitempty"`
	PublishDate string    `json:"publishDate,omitempty"`
	CoverImage  string    `json:"coverImage,omitempty"`
	SavedAt     time.Time `json:"savedAt"`
}
