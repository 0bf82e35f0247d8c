package handler

import (
	"net/http"

	"roost/internal/middleware"
	"roost/internal/repository"

	"github.com/gin-gonic/gin"
)

// PartnerHandler issues and returns the partner's referral code.
type PartnerHandler struct {
	partners *repository.PartnerRepository
}

func NewPartnerHandler(partners *repository.PartnerRepository) *PartnerHandler {
	return &PartnerHandler{partners: partners}
}

func (h *PartnerHandler) GetCode(c *gin.Context) {
	code, err := h.partners.GetOrCreateCode(middleware.GetUserID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": code.Code})
}
