package models

import "time"

type Feedback struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:36;index" json:"user_id,omitempty"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Rating    int       `gorm:"not null;default:5" json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}
