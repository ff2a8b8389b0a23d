package handlers

import (
	"net/http"

	"github.com/alok-bhadauria/WatchParty/internal/party"
	"github.com/alok-bhadauria/WatchParty/internal/services"

	"github.com/gin-gonic/gin"
)

type MediaHandler struct {
	registry     *party.Registry
	partyService *services.PartyService
}

func NewMediaHandler(registry *party.Registry, partyService *services.PartyService) *MediaHandler {
	return &MediaHandler{registry: registry, partyService: partyService}
}

// GetMediaState godoc
// @Summary      Playback state for a party
// @Description  Live parties answer from the authoritative in-memory state; closed ones from the mirror. Mutations only happen through host websocket commands.
// @Tags         media
// @Produce      json
// @Param        code path string true "Party code"
// @Success      200 {object} MediaStateRecord
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/parties/{code}/media [get]
func (h *MediaHandler) GetMediaState(c *gin.Context) {
	code := c.Param("code")

	if sess, err := h.registry.Get(code); err == nil {
		if snap, err := sess.Snapshot(); err == nil {
			c.JSON(http.StatusOK, gin.H{"live": true, "state": snap.Media})
			return
		}
	}

	record, err := h.partyService.GetMediaState(code)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"live": false, "state": record})
}
