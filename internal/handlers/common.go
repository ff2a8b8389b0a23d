package handlers

import "github.com/alok-bhadauria/WatchParty/internal/models"

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"operation successful"`
}

// Type aliases so swag can resolve models in annotations.
type User = models.User
type Party = models.Party
type Feedback = models.Feedback
type StoredMessage = models.Message
type MediaStateRecord = models.MediaStateRecord
type PartyMember = models.PartyMember
