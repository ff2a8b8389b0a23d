package handlers

import (
	"github.com/alok-bhadauria/WatchParty/internal/ws"

	"github.com/gin-gonic/gin"
)

type WSHandler struct {
	gateway *ws.Gateway
}

func NewWSHandler(gateway *ws.Gateway) *WSHandler {
	return &WSHandler{gateway: gateway}
}

// HandleWebSocket godoc
// @Summary      Party websocket
// @Description  Persistent event channel. The first frame must be a join carrying the party code and identity token; after that the connection carries play/pause/seek/change_media/chat/leave inbound and snapshot/media_update/member_update/chat_message/error outbound.
// @Tags         websocket
// @Router       /ws [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	h.gateway.Handle(c)
}
