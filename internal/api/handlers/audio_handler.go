package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

type AudioHandler struct {
	dir string
}

func NewAudioHandler(dir string) *AudioHandler {
	return &AudioHandler{dir: dir}
}

func (h *AudioHandler) Serve(c *gin.Context) {
	name := c.Param("filename")
	// Only bare file names; anything path-like is treated as absent.
	if name == "" || name != filepath.Base(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Audio file not found"})
		return
	}

	path := filepath.Join(h.dir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Audio file not found"})
		return
	}

	c.Header("Content-Type", "audio/wav")
	c.File(path)
}
