package services

import (
	"errors"

	"github.com/alok-bhadauria/WatchParty/internal/models"
	"github.com/alok-bhadauria/WatchParty/internal/party"

	"gorm.io/gorm"
)

// PartyService reads the durable party mirror. Live parties are always served
// from the registry; these queries back the history endpoints and code lookups
// for parties that are no longer in memory.
type PartyService struct {
	db *gorm.DB
}

func NewPartyService(db *gorm.DB) *PartyService {
	return &PartyService{db: db}
}

func (s *PartyService) GetPartyRecord(code string) (*models.Party, error) {
	var row models.Party
	if err := s.db.Where("code = ?", party.NormalizeCode(code)).
		Order("created_at DESC").First(&row).Error; err != nil {
		return nil, errors.New("party not found")
	}
	return &row, nil
}

func (s *PartyService) ListHistory(creatorID string, limit int) ([]models.Party, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var rows []models.Party
	if err := s.db.Where("creator_id = ?", creatorID).
		Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *PartyService) GetMediaState(code string) (*models.MediaStateRecord, error) {
	var row models.MediaStateRecord
	if err := s.db.Where("party_code = ?", party.NormalizeCode(code)).
		First(&row).Error; err != nil {
		return nil, errors.New("media state not found")
	}
	return &row, nil
}

func (s *PartyService) ListMembers(code string) ([]models.PartyMember, error) {
	var rows []models.PartyMember
	if err := s.db.Where("party_code = ?", party.NormalizeCode(code)).
		Order("joined_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
