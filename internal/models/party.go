package models

import "time"

// Party is the durable mirror of a live party. The registry is authoritative
// while the party is alive; this row exists for listings and history.
type Party struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Code      string     `gorm:"size:6;index" json:"code"`
	Name      string     `gorm:"size:200" json:"name"`
	CreatorID string     `gorm:"size:36;index" json:"creator_id"`
	MediaRef  string     `gorm:"size:512" json:"media_ref"`
	IsActive  bool       `gorm:"not null;default:true" json:"is_active"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// PartyMember mirrors a participant's membership in a party.
type PartyMember struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PartyCode   string     `gorm:"size:6;index" json:"party_code"`
	UserID      string     `gorm:"size:36;index" json:"user_id"`
	DisplayName string     `gorm:"size:100;not null" json:"display_name"`
	Avatar      string     `gorm:"size:512" json:"avatar,omitempty"`
	Role        string     `gorm:"size:10;not null;default:'member'" json:"role"`
	JoinedAt    time.Time  `json:"joined_at"`
	LeftAt      *time.Time `json:"left_at,omitempty"`
}
