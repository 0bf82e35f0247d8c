package handler

import (
	"net/http"
	"time"

	"roost/internal/service"

	"github.com/gin-gonic/gin"
)

// SweepHandler is the cron-secret-guarded trigger for the completion sweep,
// for deployments that drive it from an external scheduler instead of the
// built-in one.
type SweepHandler struct {
	svc *service.SweepService
}

func NewSweepHandler(svc *service.SweepService) *SweepHandler {
	return &SweepHandler{svc: svc}
}

func (h *SweepHandler) Run(c *gin.Context) {
	res, err := h.svc.Run(c.Request.Context(), time.Now())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sweep": res})
}
