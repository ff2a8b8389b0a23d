package models

import "time"

type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PartyCode  string    `gorm:"size:6;index:idx_party_seq" json:"party_code"`
	Seq        uint64    `gorm:"index:idx_party_seq" json:"seq"`
	SenderID   string    `gorm:"size:36;index" json:"sender_id"`
	SenderName string    `gorm:"size:100" json:"sender_name"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	SentAt     time.Time `json:"sent_at"`
}
