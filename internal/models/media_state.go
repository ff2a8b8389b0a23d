package models

import "time"

// MediaStateRecord mirrors the latest playback state per party, one row each.
type MediaStateRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PartyCode string    `gorm:"size:6;uniqueIndex" json:"party_code"`
	Playing   bool      `gorm:"not null;default:false" json:"playing"`
	Position  float64   `gorm:"not null;default:0" json:"position"`
	Version   uint64    `gorm:"not null;default:0" json:"version"`
	MediaRef  string    `gorm:"size:512" json:"media_ref"`
	UpdatedAt time.Time `json:"updated_at"`
}
