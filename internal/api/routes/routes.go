package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/mhagedorn/sprachtutor/internal/api/handlers"
)

type Deps struct {
	Voice   *handlers.VoiceChatHandler
	History *handlers.HistoryHandler
	Audio   *handlers.AudioHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Liveness
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Voice tutor backend is running!"})
	})

	api := r.Group("/api/v1")
	api.POST("/voice/chat", d.Voice.Chat)
	api.GET("/history", d.History.List)

	r.GET("/audio/:filename", d.Audio.Serve)
}
