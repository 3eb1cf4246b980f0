package models

import "time"

// Comment is a standalone comment document. It does not point back at its
// post; the post's Comments set is the only link.
type Comment struct {
	ID        string    `gorm:"primaryKey;size:64" bson:"_id" json:"id"`
	Text      string    `gorm:"type:text;not null" bson:"text" json:"text"`
	UserID    string    `gorm:"index;size:128" bson:"userId" json:"userId"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// TableName overrides the default table name.
func (Comment) TableName() string { return "comments" }
