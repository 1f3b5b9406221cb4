// Package models contains data structures for the application's domain models.
package models

import "time"

// DefaultImageURL is used for users who sign up without a profile image.
const DefaultImageURL = "/static/images/default-pic.png"

// DefaultHeaderImageURL is used for users without a custom header image.
const DefaultHeaderImageURL = "/static/images/warbler-hero.jpg"

// User represents a registered user.
// Users are hard-deleted; deleting a user removes their messages, their
// likes, likes on their messages, and every follow edge touching them.
type User struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Username       string `gorm:"unique;not null" json:"username"`
	Email          string `gorm:"unique;not null" json:"email"`
	Password       string `gorm:"not null" json:"-"`
	ImageURL       string `gorm:"not null;default:'/static/images/default-pic.png'" json:"image_url"`
	HeaderImageURL string `gorm:"not null;default:'/static/images/warbler-hero.jpg'" json:"header_image_url"`
	Bio            string `json:"bio"`
	Location       string `json:"location"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Messages []Message `gorm:"foreignKey:UserID" json:"messages,omitempty"`
}
