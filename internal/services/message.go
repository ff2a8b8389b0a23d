package services

import (
	"github.com/alok-bhadauria/WatchParty/internal/models"
	"github.com/alok-bhadauria/WatchParty/internal/party"

	"gorm.io/gorm"
)

type MessageService struct {
	db *gorm.DB
}

func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{db: db}
}

// ListMessages pages through a party's mirrored chat history. beforeSeq = 0
// means "from the latest"; results come back oldest first.
func (s *MessageService) ListMessages(code string, beforeSeq uint64, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	q := s.db.Where("party_code = ?", party.NormalizeCode(code))
	if beforeSeq > 0 {
		q = q.Where("seq < ?", beforeSeq)
	}

	var rows []models.Message
	if err := q.Order("seq DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}
