package handler

import (
	"net/http"
	"strconv"

	"roost/internal/service"

	"github.com/gin-gonic/gin"
)

// PayoutHandler exposes the admin payout surface: list who is owed what and
// trigger a disbursement run for one recipient.
type PayoutHandler struct {
	svc *service.PayoutService
}

func NewPayoutHandler(svc *service.PayoutService) *PayoutHandler {
	return &PayoutHandler{svc: svc}
}

func (h *PayoutHandler) ListPartnerBalances(c *gin.Context) {
	balances, err := h.svc.ListPartnerBalances()
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balances": balances})
}

func (h *PayoutHandler) PayoutPartner(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid partner id"})
		return
	}
	res, err := h.svc.PayoutPartner(c.Request.Context(), uint(id))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payout": res})
}

func (h *PayoutHandler) PayoutHost(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid host id"})
		return
	}
	res, err := h.svc.PayoutHost(c.Request.Context(), uint(id))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payout": res})
}
