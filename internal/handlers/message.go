package handlers

import (
	"net/http"
	"strconv"

	"github.com/alok-bhadauria/WatchParty/internal/services"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageService *services.MessageService
}

func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// ListMessages godoc
// @Summary      Chat history for a party
// @Description  Pages through the mirrored chat log, oldest first. Live delivery happens over the websocket; this is history only.
// @Tags         messages
// @Produce      json
// @Param        code path string true "Party code"
// @Param        before_seq query int false "Return messages with seq below this"
// @Param        limit query int false "Page size (default 50, max 200)"
// @Success      200 {array} StoredMessage
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/parties/{code}/messages [get]
func (h *MessageHandler) ListMessages(c *gin.Context) {
	beforeSeq, _ := strconv.ParseUint(c.Query("before_seq"), 10, 64)
	limit, _ := strconv.Atoi(c.Query("limit"))

	rows, err := h.messageService.ListMessages(c.Param("code"), beforeSeq, limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}
