package handler

import (
	"time"

	"github.com/gin-gonic/gin"
)

// SystemHandler handles system-level API endpoints
type SystemHandler struct {
	BaseHandler
	startedAt time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler() *SystemHandler {
	return &SystemHandler{startedAt: time.Now()}
}

// SystemInfoResponse describes the running service
// @Description System information response
type SystemInfoResponse struct {
	Name    string `json:"name" example:"propman-backend"`
	Version string `json:"version" example:"1.0.0"`
	Uptime  string `json:"uptime" example:"72h3m0.5s"`
}

// Ping godoc
// @Summary      Ping the service
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, gin.H{"message": "pong"})
}

// GetSystemInfo godoc
// @Summary      Get system information
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=SystemInfoResponse}
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:    "propman-backend",
		Version: "1.0.0",
		Uptime:  time.Since(h.startedAt).String(),
	})
}
