package services

import (
	"log"
	"time"

	"github.com/alok-bhadauria/WatchParty/internal/models"
	"github.com/alok-bhadauria/WatchParty/internal/party"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Mirror copies core state changes into Postgres. It implements party.Mirror:
// every hook enqueues and returns immediately, a single worker drains the
// queue, and when the queue is full the write is dropped. The in-memory engine
// never waits on the database.
type Mirror struct {
	db   *gorm.DB
	ops  chan func(db *gorm.DB)
	done chan struct{}
}

func NewMirror(db *gorm.DB) *Mirror {
	return &Mirror{
		db:   db,
		ops:  make(chan func(db *gorm.DB), 1024),
		done: make(chan struct{}),
	}
}

func (m *Mirror) Start() {
	go func() {
		defer close(m.done)
		for op := range m.ops {
			op(m.db)
		}
	}()
}

// Stop drains outstanding writes and stops the worker.
func (m *Mirror) Stop() {
	close(m.ops)
	<-m.done
}

func (m *Mirror) enqueue(op func(db *gorm.DB)) {
	select {
	case m.ops <- op:
	default:
		log.Println("mirror: queue full, dropping write")
	}
}

func (m *Mirror) PartyCreated(snap party.Snapshot, creatorID string) {
	m.enqueue(func(db *gorm.DB) {
		row := models.Party{
			Code:      snap.Code,
			Name:      snap.Name,
			CreatorID: creatorID,
			MediaRef:  snap.Media.MediaRef,
			IsActive:  true,
			CreatedAt: snap.CreatedAt,
		}
		if err := db.Create(&row).Error; err != nil {
			log.Printf("mirror: party create: %v", err)
		}
	})
}

func (m *Mirror) PartyClosed(code string) {
	m.enqueue(func(db *gorm.DB) {
		now := time.Now()
		err := db.Model(&models.Party{}).
			Where("code = ? AND is_active = ?", code, true).
			Updates(map[string]any{"is_active": false, "closed_at": now}).Error
		if err != nil {
			log.Printf("mirror: party close: %v", err)
		}
	})
}

func (m *Mirror) MemberJoined(code string, info party.MemberInfo) {
	m.enqueue(func(db *gorm.DB) {
		row := models.PartyMember{
			PartyCode:   code,
			UserID:      info.UserID,
			DisplayName: info.DisplayName,
			Avatar:      info.Avatar,
			Role:        string(info.Role),
			JoinedAt:    info.JoinedAt,
		}
		if err := db.Create(&row).Error; err != nil {
			log.Printf("mirror: member join: %v", err)
		}
	})
}

func (m *Mirror) MemberLeft(code string, userID string) {
	m.enqueue(func(db *gorm.DB) {
		now := time.Now()
		err := db.Model(&models.PartyMember{}).
			Where("party_code = ? AND user_id = ? AND left_at IS NULL", code, userID).
			Update("left_at", now).Error
		if err != nil {
			log.Printf("mirror: member leave: %v", err)
		}
	})
}

func (m *Mirror) MessagePosted(code string, msg party.Message) {
	m.enqueue(func(db *gorm.DB) {
		row := models.Message{
			PartyCode:  code,
			Seq:        msg.Seq,
			SenderID:   msg.SenderID,
			SenderName: msg.SenderName,
			Body:       msg.Body,
			SentAt:     msg.SentAt,
		}
		if err := db.Create(&row).Error; err != nil {
			log.Printf("mirror: message: %v", err)
		}
	})
}

func (m *Mirror) MediaUpdated(code string, st party.MediaState) {
	m.enqueue(func(db *gorm.DB) {
		row := models.MediaStateRecord{
			PartyCode: code,
			Playing:   st.Playing,
			Position:  st.Position,
			Version:   st.Version,
			MediaRef:  st.MediaRef,
			UpdatedAt: st.UpdatedAt,
		}
		err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "party_code"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"playing", "position", "version", "media_ref", "updated_at",
			}),
		}).Create(&row).Error
		if err != nil {
			log.Printf("mirror: media state: %v", err)
		}
	})
}
