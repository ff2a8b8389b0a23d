package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PublicID     string    `gorm:"size:36;uniqueIndex;not null" json:"public_id"`
	Username     string    `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	DisplayName  string    `gorm:"size:100;not null" json:"display_name"`
	Avatar       string    `gorm:"size:512" json:"avatar,omitempty"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
