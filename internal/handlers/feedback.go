package handlers

import (
	"net/http"

	"github.com/alok-bhadauria/WatchParty/internal/services"

	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	feedbackService *services.FeedbackService
}

func NewFeedbackHandler(feedbackService *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

type SubmitFeedbackRequest struct {
	Body   string `json:"body" binding:"required,min=1" example:"Sync works great"`
	Rating int    `json:"rating" binding:"omitempty,min=1,max=5" example:"5"`
}

// Submit godoc
// @Summary      Submit feedback
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        request body SubmitFeedbackRequest true "Feedback"
// @Success      201 {object} Feedback
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/feedback [post]
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	row, err := h.feedbackService.Submit(c.GetString("user_id"), req.Body, req.Rating)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, row)
}

// List godoc
// @Summary      List recent feedback
// @Tags         feedback
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} Feedback
// @Router       /api/v1/feedback [get]
func (h *FeedbackHandler) List(c *gin.Context) {
	rows, err := h.feedbackService.List(50)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}
