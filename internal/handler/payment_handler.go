package handler

import (
	"net/http"

	"roost/internal/service"

	"github.com/gin-gonic/gin"
)

// PaymentHandler terminates the gateway's checkout callback. The endpoint is
// unauthenticated; the token is the credential and is verified against the
// gateway before anything changes.
type PaymentHandler struct {
	svc *service.BookingService
}

func NewPaymentHandler(svc *service.BookingService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

type callbackRequest struct {
	Token string `json:"token" form:"token" binding:"required"`
}

func (h *PaymentHandler) Callback(c *gin.Context) {
	var req callbackRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing checkout token"})
		return
	}
	b, err := h.svc.ConfirmPayment(c.Request.Context(), req.Token)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}
