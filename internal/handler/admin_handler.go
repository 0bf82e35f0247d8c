package handler

import (
	"net/http"
	"strconv"

	"roost/internal/domain"
	"roost/internal/repository"

	"github.com/gin-gonic/gin"
)

// AdminHandler manages the platform rate table. Edits apply to bookings
// created after the change; in-flight bookings keep their snapshot.
type AdminHandler struct {
	settings *repository.SettingRepository
}

func NewAdminHandler(settings *repository.SettingRepository) *AdminHandler {
	return &AdminHandler{settings: settings}
}

func (h *AdminHandler) ListSettings(c *gin.Context) {
	list, err := h.settings.GetAll()
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": list})
}

type updateSettingRequest struct {
	Value string `json:"value" binding:"required"`
}

func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	key := c.Param("key")
	if _, ok := domain.SettingDefaults[key]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown setting"})
		return
	}
	var req updateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validateSetting(key, req.Value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.settings.Set(key, req.Value); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": req.Value})
}

func validateSetting(key, value string) error {
	switch key {
	case domain.SettingPartnerPayoutThreshold:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 {
			return domain.ErrInvalidAmount
		}
	default:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 || f > 1 {
			return domain.ErrInvalidAmount
		}
	}
	return nil
}
