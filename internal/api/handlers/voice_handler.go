package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mhagedorn/sprachtutor/internal/services"
	"github.com/mhagedorn/sprachtutor/internal/utils"
)

type VoiceChatHandler struct {
	svc services.VoiceChatService
	log *logrus.Logger
}

func NewVoiceChatHandler(svc services.VoiceChatService, log *logrus.Logger) *VoiceChatHandler {
	return &VoiceChatHandler{svc: svc, log: log}
}

type chatResponse struct {
	UserText  string  `json:"user_text"`
	ReplyText string  `json:"reply_text"`
	TTSURL    *string `json:"tts_url"`
	Topic     string  `json:"topic"`
}

func (h *VoiceChatHandler) Chat(c *gin.Context) {
	fh, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio file is required"})
		return
	}
	topic := c.DefaultPostForm("topic", services.DefaultTopic)

	f, err := fh.Open()
	if err != nil {
		h.log.WithError(err).Error("cannot open uploaded audio")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Processing failed: cannot read upload"})
		return
	}
	defer f.Close()

	res, err := h.svc.Chat(c.Request.Context(), f, topic)
	if err != nil {
		if utils.IsCode(err, utils.CodeInvalidArgument) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not transcribe audio"})
			return
		}

		// Full detail goes to the log; the client gets the safe message only.
		h.log.WithError(err).Error("voice chat request failed")
		msg := utils.Message(err)
		if msg == "" {
			msg = "internal error"
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Processing failed: " + msg})
		return
	}

	c.JSON(http.StatusOK, chatResponse{
		UserText:  res.UserText,
		ReplyText: res.ReplyText,
		TTSURL:    res.TTSURL,
		Topic:     res.Topic,
	})
}
