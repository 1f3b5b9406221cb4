package models

import "time"

// MaxMessageLength bounds the text body of a message.
const MaxMessageLength = 140

// Message represents a short post (a "warble") authored by a user.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:varchar(140);not null" json:"text"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt time.Time `json:"created_at"`

	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// Liked indicates whether the current viewer liked this message (computed)
	Liked bool `gorm:"->" json:"liked"`
}
