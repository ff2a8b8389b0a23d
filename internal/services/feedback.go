package services

import (
	"errors"

	"github.com/alok-bhadauria/WatchParty/internal/models"

	"gorm.io/gorm"
)

type FeedbackService struct {
	db *gorm.DB
}

func NewFeedbackService(db *gorm.DB) *FeedbackService {
	return &FeedbackService{db: db}
}

func (s *FeedbackService) Submit(userID, body string, rating int) (*models.Feedback, error) {
	if body == "" {
		return nil, errors.New("feedback body required")
	}
	if rating < 1 || rating > 5 {
		rating = 5
	}
	row := models.Feedback{
		UserID: userID,
		Body:   body,
		Rating: rating,
	}
	if err := s.db.Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *FeedbackService) List(limit int) ([]models.Feedback, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []models.Feedback
	if err := s.db.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
