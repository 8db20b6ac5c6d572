package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mhagedorn/sprachtutor/internal/models"
	"github.com/mhagedorn/sprachtutor/internal/services"
)

type HistoryHandler struct {
	svc services.ConversationService
}

func NewHistoryHandler(svc services.ConversationService) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

func (h *HistoryHandler) List(c *gin.Context) {
	limit := 10
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	rows, err := h.svc.Recent(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if rows == nil {
		rows = []models.ConversationRecord{}
	}

	c.JSON(http.StatusOK, gin.H{"conversations": rows})
}
