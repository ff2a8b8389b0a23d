package handlers

import (
	"errors"
	"net/http"

	"github.com/alok-bhadauria/WatchParty/internal/party"
	"github.com/alok-bhadauria/WatchParty/internal/services"

	"github.com/gin-gonic/gin"
)

type PartyHandler struct {
	registry     *party.Registry
	partyService *services.PartyService
	authService  *services.AuthService
}

func NewPartyHandler(registry *party.Registry, partyService *services.PartyService, authService *services.AuthService) *PartyHandler {
	return &PartyHandler{registry: registry, partyService: partyService, authService: authService}
}

type CreatePartyRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=200" example:"Friday movie night"`
	MediaRef string `json:"media_ref" example:"https://youtu.be/dQw4w9WgXcQ"`
}

// CreateParty godoc
// @Summary      Create a watch party
// @Description  Registers a live party with a fresh shareable code. The creator still joins over the websocket like everyone else.
// @Tags         parties
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreatePartyRequest true "Party data"
// @Success      201 {object} party.Snapshot
// @Failure      400 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /api/v1/parties [post]
func (h *PartyHandler) CreateParty(c *gin.Context) {
	userID := c.GetString("user_id")
	user, err := h.authService.GetUser(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
		return
	}

	var req CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	creator := party.Identity{
		UserID:      user.PublicID,
		DisplayName: user.DisplayName,
		Avatar:      user.Avatar,
	}
	sess, err := h.registry.Create(creator, req.Name, req.MediaRef)
	if err != nil {
		if errors.Is(err, party.ErrCapacityExceeded) {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	snap, err := sess.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// GetParty godoc
// @Summary      Get a party by code
// @Description  Returns the live snapshot; closed parties fall back to the durable mirror.
// @Tags         parties
// @Produce      json
// @Param        code path string true "Party code"
// @Success      200 {object} party.Snapshot
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/parties/{code} [get]
func (h *PartyHandler) GetParty(c *gin.Context) {
	code := c.Param("code")

	if sess, err := h.registry.Get(code); err == nil {
		if snap, err := sess.Snapshot(); err == nil {
			c.JSON(http.StatusOK, gin.H{"live": true, "party": snap})
			return
		}
	}

	record, err := h.partyService.GetPartyRecord(code)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "party not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"live": false, "party": record})
}

// ListParties godoc
// @Summary      List live parties
// @Tags         parties
// @Produce      json
// @Success      200 {array} party.Snapshot
// @Router       /api/v1/parties [get]
func (h *PartyHandler) ListParties(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.List())
}

// ListHistory godoc
// @Summary      List parties the user created
// @Tags         parties
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} Party
// @Router       /api/v1/parties/history [get]
func (h *PartyHandler) ListHistory(c *gin.Context) {
	userID := c.GetString("user_id")
	rows, err := h.partyService.ListHistory(userID, 50)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// ListMembers godoc
// @Summary      List party members
// @Description  Returns the live participant list; for closed parties the durable membership records, departures included.
// @Tags         parties
// @Produce      json
// @Param        code path string true "Party code"
// @Success      200 {array} PartyMember
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/parties/{code}/members [get]
func (h *PartyHandler) ListMembers(c *gin.Context) {
	code := c.Param("code")

	if sess, err := h.registry.Get(code); err == nil {
		if snap, err := sess.Snapshot(); err == nil {
			c.JSON(http.StatusOK, gin.H{"live": true, "members": snap.Members})
			return
		}
	}

	rows, err := h.partyService.ListMembers(code)
	if err != nil || len(rows) == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "party not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"live": false, "members": rows})
}

// CloseParty godoc
// @Summary      Close a party
// @Description  Only the current host may close a party; all participants are detached.
// @Tags         parties
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "Party code"
// @Success      200 {object} MessageResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/parties/{code}/close [post]
func (h *PartyHandler) CloseParty(c *gin.Context) {
	userID := c.GetString("user_id")
	sess, err := h.registry.Get(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}

	switch err := sess.CloseBy(userID); {
	case err == nil:
		c.JSON(http.StatusOK, MessageResponse{Message: "party closed"})
	case errors.Is(err, party.ErrNotAuthorized), errors.Is(err, party.ErrNotAMember):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	}
}
